// Copyright 2026 Anapaya Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package rpconfig describes the configuration of the rpki-metrics command.
package rpconfig

import (
	"io"
	"path/filepath"
	"time"

	"github.com/rpki-rp/validator/pkg/log"
	"github.com/rpki-rp/validator/pkg/private/serrors"
	"github.com/rpki-rp/validator/pkg/private/util"
	"github.com/rpki-rp/validator/private/config"
	"github.com/rpki-rp/validator/private/env"
)

const (
	// DefaultInterval is the default interval between validation runs in
	// serve mode.
	DefaultInterval = 10 * time.Minute
	// DefaultKeepRuns is the default number of runs kept in the history.
	DefaultKeepRuns = 1000
	// DefaultPruneInterval is the default interval between history prunes.
	DefaultPruneInterval = time.Hour
)

var _ config.Config = (*Config)(nil)

// Config is the rpki-metrics configuration.
type Config struct {
	General    env.General `toml:"general,omitempty"`
	Logging    log.Config  `toml:"log,omitempty"`
	Metrics    env.Metrics `toml:"metrics,omitempty"`
	Tracing    env.Tracing `toml:"tracing,omitempty"`
	Validation Validation  `toml:"validation,omitempty"`
	History    History     `toml:"history,omitempty"`
}

// InitDefaults initializes the default values for all parts of the config.
func (cfg *Config) InitDefaults() {
	config.InitAll(
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.Tracing,
		&cfg.Validation,
		&cfg.History,
	)
}

// Validate validates all parts of the config.
func (cfg *Config) Validate() error {
	return config.ValidateAll(
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.Tracing,
		&cfg.Validation,
		&cfg.History,
	)
}

// Sample generates a sample config file.
func (cfg *Config) Sample(dst io.Writer, path config.Path, _ config.CtxMap) {
	config.WriteSample(dst, path, config.CtxMap{config.ID: idSample},
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.Tracing,
		&cfg.Validation,
		&cfg.History,
	)
}

func (cfg *Config) ConfigName() string {
	return "rpki_metrics_config"
}

// Resolve returns p relative to the configured config directory. Absolute
// paths and empty paths are returned unchanged.
func (cfg *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || cfg.General.ConfigDir == "" {
		return p
	}
	return filepath.Join(cfg.General.ConfigDir, p)
}

var _ config.Config = (*Validation)(nil)

// Validation configures where the inputs of a run come from.
type Validation struct {
	// Report is the path to the run report written by the producers.
	Report string `toml:"report,omitempty"`
	// TALDir is the directory containing the trust anchor locators. If set,
	// the report must only name trust anchors found in this directory.
	TALDir string `toml:"tal_dir,omitempty"`
	// Strict makes the run command fail if rsync was incomplete.
	Strict bool `toml:"strict,omitempty"`
	// Parallelism bounds the number of trust anchors processed concurrently.
	// Zero means the number of CPUs.
	Parallelism int `toml:"parallelism,omitempty"`
	// Interval is the time between runs in serve mode.
	Interval util.DurWrap `toml:"interval,omitempty"`
}

func (cfg *Validation) InitDefaults() {
	if cfg.Interval.Duration == 0 {
		cfg.Interval.Duration = DefaultInterval
	}
}

func (cfg *Validation) Validate() error {
	if cfg.Report == "" {
		return serrors.New("validation.report must be set")
	}
	if cfg.Parallelism < 0 {
		return serrors.New("validation.parallelism must not be negative",
			"parallelism", cfg.Parallelism)
	}
	if cfg.Interval.Duration <= 0 {
		return serrors.New("validation.interval must be positive",
			"interval", cfg.Interval)
	}
	return nil
}

func (cfg *Validation) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, validationSample)
}

func (cfg *Validation) ConfigName() string {
	return "validation"
}

var _ config.Config = (*History)(nil)

// History configures the run history database.
type History struct {
	// Path is the path to the SQLite database. If empty, no history is kept.
	Path string `toml:"path,omitempty"`
	// KeepRuns is the number of most recent runs that are kept.
	KeepRuns int `toml:"keep_runs,omitempty"`
	// PruneInterval is the time between prunes in serve mode.
	PruneInterval util.DurWrap `toml:"prune_interval,omitempty"`
}

func (cfg *History) InitDefaults() {
	if cfg.KeepRuns == 0 {
		cfg.KeepRuns = DefaultKeepRuns
	}
	if cfg.PruneInterval.Duration == 0 {
		cfg.PruneInterval.Duration = DefaultPruneInterval
	}
}

func (cfg *History) Validate() error {
	if cfg.KeepRuns < 0 {
		return serrors.New("history.keep_runs must not be negative", "keep_runs", cfg.KeepRuns)
	}
	if cfg.PruneInterval.Duration <= 0 {
		return serrors.New("history.prune_interval must be positive",
			"prune_interval", cfg.PruneInterval)
	}
	return nil
}

func (cfg *History) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, historySample)
}

func (cfg *History) ConfigName() string {
	return "history"
}

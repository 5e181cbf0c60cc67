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

// Package env contains configuration blocks shared by all commands.
package env

import (
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"

	opentracing "github.com/opentracing/opentracing-go"
	jaeger "github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"

	"github.com/rpki-rp/validator/pkg/private/serrors"
	"github.com/rpki-rp/validator/private/config"
)

func init() {
	os.Setenv("TZ", "UTC")
}

var _ config.Config = (*General)(nil)

type General struct {
	// ID is the instance identifier. It is used as the service name for
	// tracing and in log context.
	ID string `toml:"id,omitempty"`
	// ConfigDir is the directory relative paths in the config are resolved
	// against.
	ConfigDir string `toml:"config_dir,omitempty"`
}

func (cfg *General) InitDefaults() {}

func (cfg *General) Validate() error {
	if cfg.ID == "" {
		return serrors.New("no instance id specified")
	}
	return cfg.checkDir()
}

func (cfg *General) checkDir() error {
	if cfg.ConfigDir == "" {
		return nil
	}
	info, err := os.Stat(cfg.ConfigDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return serrors.New("config_dir is not a directory", "dir", cfg.ConfigDir)
	}
	return nil
}

func (cfg *General) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	config.WriteString(dst, fmt.Sprintf(generalSample, ctx[config.ID]))
}

func (cfg *General) ConfigName() string {
	return "general"
}

var _ config.Config = (*Metrics)(nil)

type Metrics struct {
	config.NoDefaulter
	// Prometheus contains the address the HTTP surface (metrics, status,
	// summary) listens on. If not set, nothing is served.
	Prometheus string `toml:"prometheus,omitempty"`
	// Textfile is the path the run mode writes the metrics of the run to,
	// in the text exposition format of the node_exporter textfile collector.
	// If not set, no file is written.
	Textfile string `toml:"textfile,omitempty"`
}

func (cfg *Metrics) Validate() error {
	if cfg.Textfile != "" && filepath.Ext(cfg.Textfile) != ".prom" {
		return serrors.New("metrics.textfile must have the .prom extension",
			"textfile", cfg.Textfile)
	}
	return nil
}

func (cfg *Metrics) Sample(dst io.Writer, path config.Path, _ config.CtxMap) {
	config.WriteString(dst, metricsSample)
}

func (cfg *Metrics) ConfigName() string {
	return "metrics"
}

var _ config.Config = (*Tracing)(nil)

// Tracing contains configuration for tracing.
type Tracing struct {
	config.NoValidator
	// Enabled enables tracing for this service.
	Enabled bool `toml:"enabled,omitempty"`
	// Enable debug mode.
	Debug bool `toml:"debug,omitempty"`
	// Agent is the address of the local agent that handles the reported
	// traces. (default: localhost:6831)
	Agent string `toml:"agent,omitempty"`
}

func (cfg *Tracing) InitDefaults() {
	if cfg.Agent == "" {
		cfg.Agent = net.JoinHostPort(
			jaeger.DefaultUDPSpanServerHost,
			strconv.Itoa(jaeger.DefaultUDPSpanServerPort),
		)
	}
}

func (cfg *Tracing) Sample(dst io.Writer, path config.Path, _ config.CtxMap) {
	config.WriteString(dst, tracingSample)
}

func (cfg *Tracing) ConfigName() string {
	return "tracing"
}

// NewTracer creates a new Tracer for the given configuration. In case tracing
// is disabled this still returns noop-objects for convenience of the caller.
func (cfg *Tracing) NewTracer(id string) (opentracing.Tracer, io.Closer, error) {
	traceConfig := jaegercfg.Configuration{
		ServiceName: id,
		Disabled:    !cfg.Enabled,
		Reporter: &jaegercfg.ReporterConfig{
			LocalAgentHostPort: cfg.Agent,
		},
	}
	if cfg.Debug {
		traceConfig.Sampler = &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		}
	}
	bp := jaeger.NewBinaryPropagator(nil)
	return traceConfig.NewTracer(
		jaegercfg.Extractor(opentracing.Binary, bp),
		jaegercfg.Injector(opentracing.Binary, bp))
}

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

package log

import (
	"fmt"
	"io"

	"github.com/rpki-rp/validator/pkg/private/serrors"
	"github.com/rpki-rp/validator/private/config"
)

const (
	// DefaultConsoleLevel is the default log level for the console.
	DefaultConsoleLevel = "info"
	// DefaultStacktraceLevel is the default level from which stack traces are
	// attached to log entries.
	DefaultStacktraceLevel = "none"
)

var _ config.Config = (*Config)(nil)

// Config is the configuration for the logger.
type Config struct {
	Console ConsoleConfig `toml:"console,omitempty"`
}

// ConsoleConfig is the config for the console logger.
type ConsoleConfig struct {
	// Level of console logging (debug|info|error).
	Level string `toml:"level,omitempty"`
	// Format of the console logging (human|json).
	Format string `toml:"format,omitempty"`
	// StacktraceLevel sets from which level stack traces are attached
	// (debug|info|error|none).
	StacktraceLevel string `toml:"stacktrace_level,omitempty"`
	// DisableCaller stops annotating logs with the calling function's file
	// name and line number.
	DisableCaller bool `toml:"disable_caller,omitempty"`
}

// InitDefaults populates unset fields in cfg to their default values (if
// they have one).
func (c *Config) InitDefaults() {
	if c.Console.Level == "" {
		c.Console.Level = DefaultConsoleLevel
	}
	if c.Console.Format == "" {
		c.Console.Format = "human"
	}
	if c.Console.StacktraceLevel == "" {
		c.Console.StacktraceLevel = DefaultStacktraceLevel
	}
}

// Validate checks that the format is known. Levels are checked by Setup.
func (c *Config) Validate() error {
	switch c.Console.Format {
	case "human", "json":
	default:
		return serrors.New("unsupported log format", "format", c.Console.Format)
	}
	return nil
}

// Sample writes the sample logging configuration.
func (c *Config) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	config.WriteSample(dst, path, ctx,
		config.StringSampler{
			Text: fmt.Sprintf(consoleSample, DefaultConsoleLevel),
			Name: "console",
		},
	)
}

// ConfigName returns the name of the config block.
func (c *Config) ConfigName() string {
	return "log"
}

const consoleSample = `
# Console logging level (debug|info|error) (default %s)
level = "info"

# Console logging format (human|json) (default human)
format = "human"

# Level from which stack traces are added (debug|info|error|none) (default none)
stacktrace_level = "none"
`

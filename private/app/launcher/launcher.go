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

// Package launcher sets up the harness shared by all modes of an
// application: configuration loading, logging, metrics and signal handling.
package launcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/go-viper/mapstructure/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rpki-rp/validator/pkg/log"
	"github.com/rpki-rp/validator/pkg/private/prom"
	"github.com/rpki-rp/validator/pkg/private/serrors"
	"github.com/rpki-rp/validator/private/app"
	"github.com/rpki-rp/validator/private/app/command"
	libconfig "github.com/rpki-rp/validator/private/config"
	"github.com/rpki-rp/validator/private/env"
)

// Configuration keys used by the launcher.
const (
	cfgConfigFile                = "config"
	cfgLogConsoleLevel           = "log.console.level"
	cfgLogConsoleFormat          = "log.console.format"
	cfgLogConsoleStacktraceLevel = "log.console.stacktrace_level"
	cfgGeneralID                 = "general.id"
)

// EnvPrefix is the prefix of environment variables that override values of
// the config file, e.g., RPKI_METRICS_LOG_CONSOLE_LEVEL=debug or
// RPKI_METRICS_VALIDATION_STRICT=true.
const EnvPrefix = "RPKI_METRICS"

// Mode is a subcommand that runs with the loaded configuration.
type Mode struct {
	// Use is the one-line usage message of the subcommand.
	Use string
	// Short is the short description of the subcommand.
	Short string
	// Main is the logic of the mode. If Main returns an error, the
	// application exits with the exit code attached to it (see
	// app.WithExitCode), or 1 if there is none.
	Main func(ctx context.Context) error
}

// Application models an rpki-metrics style application.
type Application struct {
	// TOMLConfig holds the Go data structure for the application-specific
	// TOML configuration. It is loaded, defaulted and validated before a
	// mode's Main is called.
	TOMLConfig libconfig.Config

	// ShortName is the short name of the application. If empty, the
	// executable name is used.
	ShortName string

	// Modes are the subcommands of the application.
	Modes []Mode

	// Registerer is where the launcher registers its metrics. If nil, the
	// default registerer is used.
	Registerer prometheus.Registerer

	// ErrorWriter specifies where error output should be printed. If nil,
	// os.Stderr is used.
	ErrorWriter io.Writer

	// config contains the Viper configuration KV store.
	config *viper.Viper
}

// Run sets up the harness, executes the subcommand given by os.Args and exits
// the process on error. SIGINT and SIGTERM cancel the context passed to Main.
func (a *Application) Run() {
	ctx := app.WithSignal(context.Background(), os.Interrupt, syscall.SIGTERM)
	if err := a.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(a.getErrorWriter(), "fatal error: %v\n", err)
		code := app.ExitCode(err)
		if code < 0 {
			code = 1
		}
		os.Exit(code)
	}
}

// Execute runs the application with the given arguments.
func (a *Application) Execute(ctx context.Context, args []string) error {
	executable := filepath.Base(os.Args[0])
	cmd, err := a.newCommand(executable, a.getShortName(executable))
	if err != nil {
		return err
	}
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func (a *Application) newCommand(executable, shortName string) (*cobra.Command, error) {
	root := &cobra.Command{
		Use:           executable,
		Short:         shortName,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String(cfgConfigFile, "", "Configuration file (required)")

	a.config = viper.New()
	a.config.SetDefault(cfgLogConsoleLevel, log.DefaultConsoleLevel)
	a.config.SetDefault(cfgLogConsoleFormat, "human")
	a.config.SetDefault(cfgLogConsoleStacktraceLevel, log.DefaultStacktraceLevel)
	a.config.SetDefault(cfgGeneralID, executable)
	a.config.SetEnvPrefix(EnvPrefix)
	a.config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.config.AutomaticEnv()
	// The configuration file location is specified through command-line flags.
	// Once the command-line flags are parsed, the location is available
	// through the viper config.
	err := a.config.BindPFlag(cfgConfigFile, root.PersistentFlags().Lookup(cfgConfigFile))
	if err != nil {
		return nil, err
	}

	for _, mode := range a.Modes {
		root.AddCommand(&cobra.Command{
			Use:   mode.Use,
			Short: mode.Short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.executeCommand(cmd.Context(), shortName, mode)
			},
		})
	}
	root.AddCommand(
		command.NewSample(root, a.TOMLConfig),
		command.NewVersion(root),
		command.NewGendocs(root),
	)
	return root, nil
}

func (a *Application) executeCommand(ctx context.Context, shortName string, mode Mode) error {
	file := a.config.GetString(cfgConfigFile)
	if file == "" {
		return serrors.New("no configuration file specified, use --config")
	}
	// Load launcher configurations from the same config file as the custom
	// application configuration.
	a.config.SetConfigType("toml")
	a.config.SetConfigFile(file)
	if err := a.config.ReadInConfig(); err != nil {
		return serrors.Wrap("loading generic config from file", err, "file", file)
	}
	if err := libconfig.LoadFile(file, a.TOMLConfig); err != nil {
		return serrors.Wrap("loading config from file", err, "file", file)
	}
	if err := a.applyOverrides(); err != nil {
		return serrors.Wrap("applying environment overrides", err)
	}
	a.TOMLConfig.InitDefaults()

	reg := a.getRegisterer()
	logEntriesTotal := prom.SafeRegister(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpki_log_emitted_entries_total",
			Help: "Total number of log entries emitted.",
		},
		[]string{"level"},
	)).(*prometheus.CounterVec)
	opt := log.WithEntriesCounter(log.NewEntriesCounter(logEntriesTotal))
	if err := log.Setup(a.getLogging(), opt); err != nil {
		return serrors.Wrap("initialize logging", err)
	}
	defer log.Flush()

	id := a.config.GetString(cfgGeneralID)
	env.LogAppStarted(shortName, id)
	defer env.LogAppStopped(shortName, id)
	defer log.HandlePanic()

	prom.ExportValidatorID(reg, id)
	if err := a.TOMLConfig.Validate(); err != nil {
		return serrors.Wrap("validate config", err)
	}
	if mode.Main == nil {
		return nil
	}
	return mode.Main(ctx)
}

// applyOverrides decodes the settings merged by viper (file, environment and
// launcher defaults) onto the application configuration. Values the file
// already set are kept unless the environment overrides them.
func (a *Application) applyOverrides() error {
	for _, key := range libconfig.Keys(a.TOMLConfig) {
		if err := a.config.BindEnv(key); err != nil {
			return serrors.Wrap("binding environment variable", err, "key", key)
		}
	}
	return a.config.Unmarshal(a.TOMLConfig, func(c *mapstructure.DecoderConfig) {
		c.TagName = "toml"
		c.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
}

func (a *Application) getLogging() log.Config {
	return log.Config{
		Console: log.ConsoleConfig{
			Level:           a.config.GetString(cfgLogConsoleLevel),
			Format:          a.config.GetString(cfgLogConsoleFormat),
			StacktraceLevel: a.config.GetString(cfgLogConsoleStacktraceLevel),
		},
	}
}

func (a *Application) getShortName(executable string) string {
	if a.ShortName != "" {
		return a.ShortName
	}
	return executable
}

func (a *Application) getRegisterer() prometheus.Registerer {
	if a.Registerer != nil {
		return a.Registerer
	}
	return prometheus.DefaultRegisterer
}

func (a *Application) getErrorWriter() io.Writer {
	if a.ErrorWriter != nil {
		return a.ErrorWriter
	}
	return os.Stderr
}

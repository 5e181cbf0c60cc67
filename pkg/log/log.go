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

// Package log is the structured logger used by all components. It wraps zap
// and takes key/value pairs as context:
//
//	log.Info("Validation run finished", "tals", 5, "rsync_complete", true)
//
// Setup must be called once at startup; before that the root logger discards
// everything.
package log

import (
	"fmt"
	"net/http"
	"os"
	"runtime/debug"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rpki-rp/validator/pkg/private/serrors"
)

// Level is the log level.
type Level zapcore.Level

const (
	DebugLevel = Level(zapcore.DebugLevel)
	InfoLevel  = Level(zapcore.InfoLevel)
	ErrorLevel = Level(zapcore.ErrorLevel)
)

// Logger describes the logger interface.
type Logger interface {
	New(ctx ...any) Logger
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Enabled(lvl Level) bool
}

var _ Logger = (*logger)(nil)

type logger struct {
	logger *zap.Logger
}

// New creates a logger with the given context.
func New(ctx ...any) Logger {
	return &logger{logger: zap.L().With(convertCtx(ctx)...)}
}

// Root returns the root logger. It's a logger without any context.
func Root() Logger {
	return &logger{logger: zap.L()}
}

func (l *logger) New(ctx ...any) Logger {
	return &logger{logger: l.logger.With(convertCtx(ctx)...)}
}

func (l *logger) Debug(msg string, ctx ...any) {
	l.logger.Debug(msg, convertCtx(ctx)...)
}

func (l *logger) Info(msg string, ctx ...any) {
	l.logger.Info(msg, convertCtx(ctx)...)
}

func (l *logger) Error(msg string, ctx ...any) {
	l.logger.Error(msg, convertCtx(ctx)...)
}

func (l *logger) Enabled(lvl Level) bool {
	return l.logger.Core().Enabled(zapcore.Level(lvl))
}

// WithOptions returns a copy of the logger with the zap options applied.
func (l *logger) WithOptions(opts ...zap.Option) Logger {
	return &logger{logger: l.logger.WithOptions(opts...)}
}

// Debug logs at debug level.
func Debug(msg string, ctx ...any) {
	zap.L().Debug(msg, convertCtx(ctx)...)
}

// Info logs at info level.
func Info(msg string, ctx ...any) {
	zap.L().Info(msg, convertCtx(ctx)...)
}

// Error logs at error level.
func Error(msg string, ctx ...any) {
	zap.L().Error(msg, convertCtx(ctx)...)
}

// ConsoleLevel allows interacting with the console log level at runtime. It
// serves the zap level endpoint: GET returns the level, PUT changes it.
var ConsoleLevel = httpLevel{a: zap.NewAtomicLevelAt(zapcore.InfoLevel)}

type httpLevel struct {
	a zap.AtomicLevel
}

func (l httpLevel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l.a.ServeHTTP(w, r)
}

// Setup configures the root logger according to cfg.
func Setup(cfg Config, opts ...Option) error {
	o := applyOptions(opts)
	if err := cfg.Validate(); err != nil {
		return err
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(cfg.Console.Level)); err != nil {
		return serrors.Wrap("unable to parse log.console.level", err,
			"level", cfg.Console.Level)
	}
	stackLvl := zapcore.InvalidLevel
	if cfg.Console.StacktraceLevel != "none" {
		if err := stackLvl.UnmarshalText([]byte(cfg.Console.StacktraceLevel)); err != nil {
			return serrors.Wrap("unable to parse log.console.stacktrace_level", err,
				"level", cfg.Console.StacktraceLevel)
		}
	}
	ConsoleLevel.a.SetLevel(lvl)
	encoding := "console"
	if cfg.Console.Format == "json" {
		encoding = "json"
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeDuration = zapcore.StringDurationEncoder
	if encoding == "console" {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	zCfg := zap.Config{
		Level:             ConsoleLevel.a,
		Encoding:          encoding,
		EncoderConfig:     encoderCfg,
		DisableStacktrace: stackLvl == zapcore.InvalidLevel,
		DisableCaller:     cfg.Console.DisableCaller,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}
	zOpts := append(o.zapOptions(), zap.AddStacktrace(stackLvl))
	l, err := zCfg.Build(zOpts...)
	if err != nil {
		return serrors.Wrap("creating logger", err)
	}
	zap.ReplaceGlobals(l)
	return nil
}

// Flush writes the logs to the underlying buffer.
func Flush() {
	_ = zap.L().Sync()
}

// HandlePanic catches panics and logs them. It must be deferred at the top of
// every goroutine.
func HandlePanic() {
	if msg := recover(); msg != nil {
		zap.L().Error("Panic", zap.Any("msg", msg), zap.String("stack", string(debug.Stack())))
		Flush()
		fmt.Fprintf(os.Stderr, "panic: %v\n%s", msg, debug.Stack())
		os.Exit(255)
	}
}

func convertCtx(ctx []any) []zap.Field {
	fields := make([]zap.Field, 0, len(ctx)/2)
	for i := 0; i+1 < len(ctx); i += 2 {
		fields = append(fields, zap.Any(fmt.Sprint(ctx[i]), ctx[i+1]))
	}
	return fields
}

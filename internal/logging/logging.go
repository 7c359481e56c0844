// Package logging builds the zap loggers shared across the engine.
//
// The construction pattern mirrors cmd/nerd/main.go's root command: a
// production config by default, switched to debug level when verbose
// output is requested, with Sync() left to the caller on shutdown.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures logger construction.
type Options struct {
	Verbose bool
	// Component tags every log line with a "component" field, e.g. "history".
	Component string
}

// New builds a *zap.Logger per Options.
func New(opts Options) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if opts.Verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	if opts.Component != "" {
		logger = logger.With(zap.String("component", opts.Component))
	}
	return logger, nil
}

// NewNop returns a logger that discards everything, for tests and for
// callers that did not inject one.
func NewNop() *zap.Logger {
	return zap.NewNop()
}

// Package logger constructs the structured logger shared by every Ember
// subsystem. All engine components log through a *zap.SugaredLogger that is
// injected at construction time, so the facade builds exactly one logger per
// instance and threads it down through the subsystem configs.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-grade sugared logger tagged with the service name.
// If the logger cannot be constructed the process cannot produce any
// diagnostics at all, so this exits rather than returning an error.
func New(service string) *zap.SugaredLogger {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.InitialFields = map[string]any{"service": service}
	config.DisableStacktrace = true

	log, err := config.Build()
	if err != nil {
		os.Exit(1)
	}

	return log.Sugar()
}

// NewNop returns a logger that discards everything. Useful in tests where
// engine output would only be noise.
func NewNop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

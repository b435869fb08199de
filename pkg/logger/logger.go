// Package logger constructs the structured loggers used across Ignite's
// subsystems. It centralizes the zap configuration so every component logs
// with the same encoding and level, named after the subsystem that owns it.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.SugaredLogger named after service, the caller's
// subsystem (e.g. "segment", "engine", "server"). Production builds log
// JSON at info level; setting IGNITE_ENV=development switches to a
// human-readable console encoder at debug level.
func New(service string) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	if os.Getenv("IGNITE_ENV") == "development" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	log, err := cfg.Build()
	if err != nil {
		// Logger construction only fails on a malformed static config; fall
		// back to zap's no-op logger rather than panicking the caller.
		log = zap.NewNop()
	}

	return log.Named(service).Sugar()
}

// Nop returns a logger that discards everything, for tests that don't care
// about log output.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

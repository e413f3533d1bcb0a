// Package logger configures the process-wide zap logger.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init builds a JSON production logger when env is "prod" or
// "production" and a colourised development logger otherwise, then
// installs it as the zap global so packages can log through zap.L().
func Init(env string) error {
	var (
		l   *zap.Logger
		err error
	)
	switch env {
	case "prod", "production":
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		l, err = cfg.Build()
	default:
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		l, err = cfg.Build()
	}
	if err != nil {
		return fmt.Errorf("build zap logger: %w", err)
	}
	zap.ReplaceGlobals(l.With(zap.String("env", env)))
	return nil
}

// Sync flushes buffered log entries.  Errors from syncing stderr/stdout
// on some platforms are expected and ignored.
func Sync() {
	_ = zap.L().Sync()
}

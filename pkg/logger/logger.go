// Package logger configures the zap logger shared by the funding and swap
// layers.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a production logger with ISO8601 timestamps. Debug mode lowers
// the level to include debug logs.
func New(debug bool) (*zap.Logger, error) {
	c := zap.NewProductionConfig()
	c.EncoderConfig = zap.NewProductionEncoderConfig()
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if debug {
		c.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		c.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	return c.Build(zap.WithCaller(true))
}

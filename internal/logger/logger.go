// Package logger builds the process-wide zap logger from the logging config.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// serviceName is attached to every entry unless Fields overrides it
const serviceName = "validfiles"

// Options configures the process logger
type Options struct {
	Level  string            // debug, info, warn or error
	Format string            // json or text
	Fields map[string]string // static fields on every entry
}

var levels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// global is set by Init; nil means not initialized
var global *zap.Logger

// buildConfig maps Options onto a zap.Config
func buildConfig(opts Options) (zap.Config, error) {
	level, ok := levels[opts.Level]
	if !ok {
		return zap.Config{}, fmt.Errorf("invalid log level: %q", opts.Level)
	}

	var cfg zap.Config
	switch opts.Format {
	case "json":
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	case "text":
		cfg = zap.NewDevelopmentConfig()
		cfg.Development = false
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	default:
		return zap.Config{}, fmt.Errorf("invalid log format: %q", opts.Format)
	}

	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	fields := map[string]interface{}{"service": serviceName}
	for k, v := range opts.Fields {
		fields[k] = v
	}
	cfg.InitialFields = fields

	return cfg, nil
}

// New builds a logger without touching the process-wide one
func New(opts Options) (*zap.Logger, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l, nil
}

// Init builds the process-wide logger and installs it as zap's global
func Init(opts Options) error {
	l, err := New(opts)
	if err != nil {
		return err
	}
	global = l
	zap.ReplaceGlobals(l)
	return nil
}

// L returns the process-wide logger, or a no-op logger before Init
func L() *zap.Logger {
	if global == nil {
		return zap.NewNop()
	}
	return global
}

// Named returns a logger whose entries carry a component field
func Named(component string) *zap.Logger {
	return L().With(zap.String("component", component))
}

// Sync flushes buffered entries
func Sync() error {
	if global == nil {
		return nil
	}
	return global.Sync()
}

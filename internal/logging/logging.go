// Package logging provides zap logger helpers, including the three
// categorized durable logs the migration audit trail is built from.
package logging

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap.Logger configured for development or production.
func New(development bool) (*zap.Logger, error) {
	if development {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err := cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("build dev logger: %w", err)
		}
		return logger, nil
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = false
	cfg.EncoderConfig.TimeKey = "ts"
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build prod logger: %w", err)
	}
	return logger, nil
}

// Categories holds the three append-only diagnostic logs: crawler for
// fetch/extract traffic, migration for reconciliation outcomes, other for
// everything unexpected.
type Categories struct {
	Crawler   *zap.Logger
	Migration *zap.Logger
	Other     *zap.Logger
}

// NewCategories builds the categorized file loggers under dir. With an
// empty dir every category logs to stderr, which keeps tests and local
// runs file-free.
func NewCategories(dir string, development bool) (*Categories, error) {
	build := func(name string) (*zap.Logger, error) {
		cfg := zap.NewProductionConfig()
		if development {
			cfg = zap.NewDevelopmentConfig()
		}
		cfg.EncoderConfig.TimeKey = "ts"
		if dir != "" {
			cfg.OutputPaths = []string{filepath.Join(dir, name+".log")}
			cfg.ErrorOutputPaths = cfg.OutputPaths
		}
		logger, err := cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("build %s logger: %w", name, err)
		}
		return logger.Named(name), nil
	}

	crawler, err := build("crawler")
	if err != nil {
		return nil, err
	}
	migration, err := build("migration")
	if err != nil {
		return nil, err
	}
	other, err := build("other")
	if err != nil {
		return nil, err
	}
	return &Categories{Crawler: crawler, Migration: migration, Other: other}, nil
}

// Sync flushes all category logs, best effort.
func (c *Categories) Sync() {
	for _, l := range []*zap.Logger{c.Crawler, c.Migration, c.Other} {
		if l != nil {
			_ = l.Sync()
		}
	}
}

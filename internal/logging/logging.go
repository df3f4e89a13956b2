// Package logging provides the single structured logging sink used across
// codescope's pipeline stages.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu  sync.RWMutex
	log *zap.Logger
)

func init() {
	log, _ = zap.NewProduction()
}

// Configure rebuilds the process logger. verbose enables debug level;
// json selects structured JSON encoding over the console encoder.
func Configure(verbose bool, json bool) error {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if !json {
		cfg = zap.NewDevelopmentConfig()
		if !verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}
	built, err := cfg.Build()
	if err != nil {
		return err
	}
	mu.Lock()
	log = built
	mu.Unlock()
	return nil
}

// L returns the process-wide logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Stage returns a logger scoped to a pipeline stage (discovery, parse,
// graph, analyze, correlate, reduce, cache, schedule, report).
func Stage(name string) *zap.Logger {
	return L().With(zap.String("stage", name))
}

// Sync flushes buffered log entries. Call from main at process exit.
func Sync() {
	_ = L().Sync()
}

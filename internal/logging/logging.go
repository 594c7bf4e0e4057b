// Package logging provides the shared zap logger construction for fesweep.
// Each subsystem logs through a named child logger so sweep output can be
// filtered per category.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names used across the module.
const (
	CategorySweep    = "sweep"
	CategoryMesh     = "mesh"
	CategorySolver   = "solver"
	CategoryArtifact = "artifact"
	CategoryReport   = "report"
	CategoryStore    = "store"
)

// New builds the process logger. Debug mode lowers the level and switches
// to the development encoder for readable operator output.
func New(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// Named returns the child logger for a category. A nil parent yields a
// no-op logger so library code never has to nil-check.
func Named(parent *zap.Logger, category string) *zap.Logger {
	if parent == nil {
		return zap.NewNop()
	}
	return parent.Named(category)
}

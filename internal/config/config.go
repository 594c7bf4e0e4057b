// Package config holds the fesweep configuration surface: a YAML file
// plus CLI flag overrides. Everything has a working default so the tool
// runs without any file present.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"fesweep/internal/solver"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is searched in the working directory when no --config
// flag is given.
const DefaultFileName = "fesweep.yaml"

// Config is the full configuration tree.
type Config struct {
	// OutputDir receives the workbook, images, and animations.
	OutputDir string `yaml:"output_dir"`

	// HistoryDB is the sweep history SQLite path. Empty disables history.
	HistoryDB string `yaml:"history_db"`

	// SelectTolerance is the half-width in meters of the coordinate band
	// used for boundary-condition node selection.
	SelectTolerance float64 `yaml:"select_tolerance"`

	Capture CaptureConfig       `yaml:"capture"`
	Solver  solver.LaunchConfig `yaml:"solver"`
	Logging LoggingConfig       `yaml:"logging"`

	// Sweeps overrides the built-in default parameter range per analysis
	// kind. Absent fields keep the kind's default; CLI flags win over both.
	Sweeps map[string]RangeConfig `yaml:"sweeps"`
}

// RangeConfig is a partial parameter-range override. Fields are
// pointers so an explicit zero (a sweep starting at 0) is distinct from
// an absent key.
type RangeConfig struct {
	Min   *float64 `yaml:"min"`
	Max   *float64 `yaml:"max"`
	Steps *int     `yaml:"steps"`
}

// Apply overlays the set fields onto a kind's default range.
func (r RangeConfig) Apply(min, max float64, steps int) (float64, float64, int) {
	if r.Min != nil {
		min = *r.Min
	}
	if r.Max != nil {
		max = *r.Max
	}
	if r.Steps != nil {
		steps = *r.Steps
	}
	return min, max, steps
}

// CaptureConfig controls per-run artifact snapshots.
type CaptureConfig struct {
	Enabled bool `yaml:"enabled"`
	// Detail adds the expensive first/last-run channels (components,
	// principal values, deformed shape, mesh view).
	Detail bool `yaml:"detail"`
	// FrameDelayMs is the animation frame duration in milliseconds.
	FrameDelayMs int `yaml:"frame_delay_ms"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Debug bool `yaml:"debug"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		OutputDir:       "sweep_results",
		HistoryDB:       filepath.Join("sweep_results", "history.db"),
		SelectTolerance: 1e-3,
		Capture: CaptureConfig{
			Enabled:      true,
			Detail:       true,
			FrameDelayMs: 300,
		},
		Solver: solver.LaunchConfig{Mode: solver.ModeSim},
	}
}

// Load reads the config at path, or falls back to defaults when path is
// empty and no fesweep.yaml exists in the working directory. Explicit
// paths must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if path == "" {
		path = DefaultFileName
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the invariants flags and files must both satisfy.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if c.SelectTolerance <= 0 {
		return fmt.Errorf("select_tolerance must be positive, got %g", c.SelectTolerance)
	}
	if c.Capture.FrameDelayMs < 0 {
		return fmt.Errorf("frame_delay_ms must not be negative, got %d", c.Capture.FrameDelayMs)
	}
	for kind, r := range c.Sweeps {
		if r.Steps != nil && *r.Steps < 1 {
			return fmt.Errorf("sweeps.%s.steps must be at least 1, got %d", kind, *r.Steps)
		}
	}
	return nil
}

package solver

import (
	"fmt"

	"go.uber.org/zap"
)

// Backend modes understood by Launch.
const (
	// ModeSim runs the in-process simulated backend. Used by --dry-run
	// and tests; no external solver is touched.
	ModeSim = "sim"
)

// LaunchConfig describes how to acquire a backend session.
type LaunchConfig struct {
	// Mode selects the backend. Attaching a real solver means providing
	// another Session implementation and registering its mode here.
	Mode string `yaml:"mode"`

	// WorkDir is the scratch directory handed to the backend.
	WorkDir string `yaml:"work_dir"`

	// ConvergedModes caps modal convergence in the simulated backend.
	// Ignored by other modes. Zero means all requested modes converge.
	ConvergedModes int `yaml:"converged_modes"`
}

// Launch acquires one backend session. The caller owns it exclusively
// for the duration of a sweep and must Close it.
func Launch(cfg LaunchConfig, log *zap.Logger) (Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch cfg.Mode {
	case ModeSim, "":
		log.Info("launching simulated solver session",
			zap.Int("converged_modes", cfg.ConvergedModes))
		s := NewSimSession()
		s.ConvergedModes = cfg.ConvergedModes
		return s, nil
	}
	return nil, fmt.Errorf("unknown solver mode %q (supported: %s)", cfg.Mode, ModeSim)
}

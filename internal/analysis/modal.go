package analysis

import (
	"errors"
	"fmt"
	"math"

	"fesweep/internal/artifact"
	"fesweep/internal/mesh"
	"fesweep/internal/solver"
)

// Modal extracts natural frequencies. The swept parameter is the
// requested mode count, not a load: modal runs carry no spatial load,
// only the eigensolver option set. Unresolved modes are recorded as NaN
// metrics and never fail the run, since partial convergence is routine.
type Modal struct {
	placement Placement

	// FreqMin and FreqMax bound the eigensolver's search range in Hz.
	FreqMin float64
	FreqMax float64
}

// NewModal returns the modal adapter with the reference 0-200 Hz window.
func NewModal(p Placement) *Modal {
	return &Modal{placement: p, FreqMin: 0, FreqMax: 200}
}

func (a *Modal) Descriptor() Descriptor {
	return Descriptor{
		Kind:          KindModal,
		Title:         "Modal Analysis - Natural Frequency Extraction",
		ParameterName: "Number of Modes",
		ParameterUnit: "modes",
		ParameterKey:  "num_modes",
		DefaultRange:  Range{Min: 5, Max: 20, Steps: 4},
		MaterialSchema: map[string]PropertySpec{
			"youngs_modulus": {Name: "Young's Modulus", Unit: "Pa", Default: 200e9},
			"poissons_ratio": {Name: "Poisson's Ratio", Unit: "-", Default: 0.3},
			"density":        {Name: "Density", Unit: "kg/m³", Default: 7850},
		},
		PrimaryMetric:  "fundamental_freq_hz",
		OverlayMetrics: []string{"fundamental_freq_hz", "highest_resolved_freq_hz"},
	}
}

func (a *Modal) ElementKind() solver.ElementKind { return solver.ElemStructuralSolid }

// Modes converts the swept parameter to the requested mode count.
func (a *Modal) Modes(param float64) int { return int(math.Round(param)) }

func (a *Modal) PrepareRun(s solver.Session, m *mesh.Data, mat MaterialProfile, param float64) error {
	modes := a.Modes(param)
	if modes < 1 {
		return solver.Setupf("modal options", "mode count must be >= 1, got %d", modes)
	}
	if err := mesh.Materialize(s, m, a.ElementKind()); err != nil {
		return err
	}
	err := applyMaterial(s, mat, []propCmd{
		{"EX", "youngs_modulus"},
		{"PRXY", "poissons_ratio"},
		{"DENS", "density"},
	})
	if err != nil {
		return err
	}

	p := a.placement
	if err := p.selectBand(s, p.SupportAxis, p.SupportAt, "support selection"); err != nil {
		return err
	}
	if err := s.ConstrainAll("ALL", 0); err != nil {
		return solver.WrapSetup("support constraint", err)
	}
	if err := s.SelectAll(); err != nil {
		return solver.WrapSetup("selection reset", err)
	}
	if err := s.SetAnalysisType(solver.AnalysisModal); err != nil {
		return solver.WrapSetup("analysis type", err)
	}
	if err := s.SetModalOptions(modes, a.FreqMin, a.FreqMax); err != nil {
		return solver.WrapSetup("modal options", err)
	}
	return nil
}

func (a *Modal) ExtractResults(s solver.Session, _ *mesh.Data, param float64) (map[string]float64, error) {
	modes := a.Modes(param)
	out := map[string]float64{
		"num_modes_requested": float64(modes),
	}
	fundamental := math.NaN()
	highest := math.NaN()
	resolved := 0
	for k := 1; k <= modes; k++ {
		key := fmt.Sprintf("mode_%d_freq_hz", k)
		// Backends error when positioned on a result set the solve never
		// wrote. That is an unresolved mode, recorded as a gap.
		if err := s.UseResultSet(1, k); err != nil {
			out[key] = math.NaN()
			continue
		}
		freq, err := s.ModeFrequency(k)
		switch {
		case errors.Is(err, solver.ErrModeUnavailable):
			out[key] = math.NaN()
		case err != nil:
			return nil, err
		default:
			out[key] = freq
			if resolved == 0 {
				fundamental = freq
			}
			highest = freq
			resolved++
		}
	}
	out["modes_resolved"] = float64(resolved)
	out["fundamental_freq_hz"] = fundamental
	out["highest_resolved_freq_hz"] = highest
	return out, nil
}

func (a *Modal) ArtifactChannels(detail bool) []artifact.Channel {
	channels := []artifact.Channel{{
		Name: "mode_shape",
		Render: func(s solver.Session) error {
			if err := s.UseResultSet(1, 1); err != nil {
				return err
			}
			return s.PlotDeformedShape()
		},
	}}
	if detail {
		channels = append(channels, meshChannel())
	}
	return channels
}

package analysis

import (
	"fesweep/internal/artifact"
	"fesweep/internal/mesh"
	"fesweep/internal/solver"
)

// Structural runs static structural force-variation studies: fixed
// support on one face, the swept force applied normal to the opposite
// face, equivalent stress and displacement harvested per run.
type Structural struct {
	placement Placement
}

// NewStructural returns the structural adapter.
func NewStructural(p Placement) *Structural { return &Structural{placement: p} }

func (a *Structural) Descriptor() Descriptor {
	return Descriptor{
		Kind:          KindStructural,
		Title:         "Static Structural Analysis - Force Variation",
		ParameterName: "Force",
		ParameterUnit: "N",
		ParameterKey:  "force_n",
		DefaultRange:  Range{Min: 100, Max: 1000, Steps: 10},
		MaterialSchema: map[string]PropertySpec{
			"youngs_modulus": {Name: "Young's Modulus", Unit: "Pa", Default: 200e9},
			"poissons_ratio": {Name: "Poisson's Ratio", Unit: "-", Default: 0.3},
			"density":        {Name: "Density", Unit: "kg/m³", Default: 7850},
		},
		PrimaryMetric:  "max_stress_mpa",
		OverlayMetrics: []string{"max_stress_mpa", "avg_stress_mpa", "max_displacement_mm"},
	}
}

func (a *Structural) ElementKind() solver.ElementKind { return solver.ElemStructuralSolid }

func (a *Structural) PrepareRun(s solver.Session, m *mesh.Data, mat MaterialProfile, force float64) error {
	if err := mesh.Materialize(s, m, a.ElementKind()); err != nil {
		return err
	}
	err := applyMaterial(s, mat, []propCmd{
		{"EX", "youngs_modulus"},
		{"NUXY", "poissons_ratio"},
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

	if err := p.selectBand(s, p.LoadAxis, p.LoadAt, "load selection"); err != nil {
		return err
	}
	// Compressive load along the load axis, matching the reference model.
	if err := s.ApplyNodalForce("F"+string(p.LoadAxis), -force); err != nil {
		return solver.WrapSetup("force application", err)
	}
	if err := s.SelectAll(); err != nil {
		return solver.WrapSetup("selection reset", err)
	}
	if err := s.SetAnalysisType(solver.AnalysisStatic); err != nil {
		return solver.WrapSetup("analysis type", err)
	}
	return nil
}

func (a *Structural) ExtractResults(s solver.Session, m *mesh.Data, _ float64) (map[string]float64, error) {
	if err := s.UseLastResult(); err != nil {
		return nil, err
	}
	stress, err := s.NodalField(solver.QueryEqvStress)
	if err != nil {
		return nil, err
	}
	disp, err := s.NodalField(solver.QueryDispNorm)
	if err != nil {
		return nil, err
	}
	sstat, err := summarize(stress, m)
	if err != nil {
		return nil, err
	}
	dstat, err := summarize(disp, m)
	if err != nil {
		return nil, err
	}

	out := map[string]float64{
		"max_stress_mpa":      sstat.max / 1e6,
		"min_stress_mpa":      sstat.min / 1e6,
		"avg_stress_mpa":      sstat.mean / 1e6,
		"max_displacement_mm": dstat.max * 1e3,
		"avg_displacement_mm": dstat.mean * 1e3,
	}
	putLocation(out, "max_stress", m, sstat.maxIdx)
	putLocation(out, "max_disp", m, dstat.maxIdx)
	return out, nil
}

func (a *Structural) ArtifactChannels(detail bool) []artifact.Channel {
	channels := []artifact.Channel{
		contourChannel("stress", solver.QueryEqvStress),
		contourChannel("displacement", solver.QueryDispSum),
	}
	if !detail {
		return channels
	}
	for _, comp := range []string{"X", "Y", "Z"} {
		channels = append(channels,
			contourChannel("stress_"+comp, solver.FieldQuery{Field: "S", Component: comp}),
			contourChannel("displacement_"+comp, solver.FieldQuery{Field: "U", Component: comp}),
		)
	}
	for _, principal := range []string{"1", "2", "3"} {
		channels = append(channels,
			contourChannel("principal_stress_s"+principal, solver.FieldQuery{Field: "S", Component: principal}))
	}
	channels = append(channels, artifact.Channel{
		Name: "deformed_shape",
		Render: func(s solver.Session) error {
			if err := s.UseLastResult(); err != nil {
				return err
			}
			return s.PlotDeformedShape()
		},
	})
	return append(channels, meshChannel())
}

package analysis

import (
	"math"

	"fesweep/internal/artifact"
	"fesweep/internal/mesh"
	"fesweep/internal/solver"
)

// Magnetostatic runs current-density-variation studies: the swept
// current density applied as a body load over the whole domain,
// flux-parallel conditions on the exterior, B-field harvested per run.
type Magnetostatic struct {
	placement Placement
}

// NewMagnetostatic returns the magnetostatic adapter.
func NewMagnetostatic(p Placement) *Magnetostatic { return &Magnetostatic{placement: p} }

func (a *Magnetostatic) Descriptor() Descriptor {
	return Descriptor{
		Kind:          KindMagnetostatic,
		Title:         "Magnetostatic Analysis - Current Density Variation",
		ParameterName: "Current Density",
		ParameterUnit: "A/m²",
		ParameterKey:  "current_density_a_m2",
		DefaultRange:  Range{Min: 1e6, Max: 1e7, Steps: 10},
		MaterialSchema: map[string]PropertySpec{
			"relative_permeability": {Name: "Relative Permeability", Unit: "-", Default: 1},
			"coil_turns":            {Name: "Number of Coil Turns", Unit: "turns", Default: 100},
		},
		PrimaryMetric:  "max_bfield_t",
		OverlayMetrics: []string{"max_bfield_t", "avg_bfield_t"},
	}
}

func (a *Magnetostatic) ElementKind() solver.ElementKind { return solver.ElemMagneticSolid }

func (a *Magnetostatic) PrepareRun(s solver.Session, m *mesh.Data, mat MaterialProfile, density float64) error {
	if err := mesh.Materialize(s, m, a.ElementKind()); err != nil {
		return err
	}
	if err := applyMaterial(s, mat, []propCmd{{"MURX", "relative_permeability"}}); err != nil {
		return err
	}
	if err := s.ApplyBodyLoad("JS", density); err != nil {
		return solver.WrapSetup("current density application", err)
	}

	// Flux-parallel condition on the exterior surface.
	n, err := s.SelectExteriorNodes()
	if err != nil {
		return solver.WrapSetup("exterior selection", err)
	}
	if n == 0 {
		return solver.Setupf("exterior selection", "no exterior nodes found")
	}
	for _, dof := range []string{"AZ", "AX", "AY"} {
		if err := s.ConstrainAll(dof, 0); err != nil {
			return solver.WrapSetup("exterior constraint", err)
		}
	}
	if err := s.SelectAll(); err != nil {
		return solver.WrapSetup("selection reset", err)
	}
	if err := s.SetAnalysisType(solver.AnalysisStatic); err != nil {
		return solver.WrapSetup("analysis type", err)
	}
	return nil
}

func (a *Magnetostatic) ExtractResults(s solver.Session, m *mesh.Data, _ float64) (map[string]float64, error) {
	if err := s.UseLastResult(); err != nil {
		return nil, err
	}
	var comps [3][]float64
	for i, c := range []string{"X", "Y", "Z"} {
		v, err := s.NodalField(solver.FieldQuery{Field: "B", Component: c})
		if err != nil {
			return nil, err
		}
		comps[i] = v
	}
	mag := make([]float64, len(comps[0]))
	for i := range mag {
		mag[i] = math.Sqrt(comps[0][i]*comps[0][i] + comps[1][i]*comps[1][i] + comps[2][i]*comps[2][i])
	}
	bstat, err := summarize(mag, m)
	if err != nil {
		return nil, err
	}

	out := map[string]float64{
		"max_bfield_t": bstat.max,
		"min_bfield_t": bstat.min,
		"avg_bfield_t": bstat.mean,
	}
	for i, name := range []string{"max_bx_t", "max_by_t", "max_bz_t"} {
		peak := 0.0
		for _, v := range comps[i] {
			if abs := math.Abs(v); abs > peak {
				peak = abs
			}
		}
		out[name] = peak
	}
	putLocation(out, "max_bfield", m, bstat.maxIdx)
	return out, nil
}

func (a *Magnetostatic) ArtifactChannels(detail bool) []artifact.Channel {
	channels := []artifact.Channel{
		contourChannel("bfield_magnitude", solver.FieldQuery{Field: "B", Component: "SUM"}),
		contourChannel("bfield_bx", solver.FieldQuery{Field: "B", Component: "X"}),
		contourChannel("bfield_by", solver.FieldQuery{Field: "B", Component: "Y"}),
		contourChannel("bfield_bz", solver.FieldQuery{Field: "B", Component: "Z"}),
	}
	if detail {
		channels = append(channels, meshChannel())
	}
	return channels
}

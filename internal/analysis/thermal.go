package analysis

import (
	"fesweep/internal/artifact"
	"fesweep/internal/mesh"
	"fesweep/internal/solver"
)

// Thermal runs steady-state heat-flux-variation studies: one face held
// at a fixed temperature, the swept heat flux applied to the opposite
// face, nodal temperature harvested per run.
type Thermal struct {
	placement Placement

	// FixedTemp is the prescribed temperature on the supported face.
	FixedTemp float64
}

// NewThermal returns the thermal adapter with the reference 20 °C sink.
func NewThermal(p Placement) *Thermal {
	return &Thermal{placement: p, FixedTemp: 20}
}

func (a *Thermal) Descriptor() Descriptor {
	return Descriptor{
		Kind:          KindThermal,
		Title:         "Thermal Analysis - Heat Flux Variation",
		ParameterName: "Heat Flux",
		ParameterUnit: "W/m²",
		ParameterKey:  "heat_flux_w_m2",
		DefaultRange:  Range{Min: 500, Max: 5000, Steps: 10},
		MaterialSchema: map[string]PropertySpec{
			"thermal_conductivity": {Name: "Thermal Conductivity", Unit: "W/m·K", Default: 60.5},
			"specific_heat":        {Name: "Specific Heat", Unit: "J/kg·K", Default: 434},
			"density":              {Name: "Density", Unit: "kg/m³", Default: 7850},
		},
		PrimaryMetric:  "max_temp_c",
		OverlayMetrics: []string{"max_temp_c", "avg_temp_c", "min_temp_c"},
	}
}

func (a *Thermal) ElementKind() solver.ElementKind { return solver.ElemThermalSolid }

func (a *Thermal) PrepareRun(s solver.Session, m *mesh.Data, mat MaterialProfile, flux float64) error {
	if err := mesh.Materialize(s, m, a.ElementKind()); err != nil {
		return err
	}
	err := applyMaterial(s, mat, []propCmd{
		{"KXX", "thermal_conductivity"},
		{"DENS", "density"},
		{"C", "specific_heat"},
	})
	if err != nil {
		return err
	}

	p := a.placement
	if err := p.selectBand(s, p.SupportAxis, p.SupportAt, "sink selection"); err != nil {
		return err
	}
	if err := s.ConstrainAll("TEMP", a.FixedTemp); err != nil {
		return solver.WrapSetup("sink constraint", err)
	}
	if err := s.SelectAll(); err != nil {
		return solver.WrapSetup("selection reset", err)
	}

	if err := p.selectBand(s, p.LoadAxis, p.LoadAt, "flux selection"); err != nil {
		return err
	}
	if err := s.ApplySurfaceLoad("HFLUX", flux); err != nil {
		return solver.WrapSetup("flux application", err)
	}
	if err := s.SelectAll(); err != nil {
		return solver.WrapSetup("selection reset", err)
	}
	if err := s.SetAnalysisType(solver.AnalysisStatic); err != nil {
		return solver.WrapSetup("analysis type", err)
	}
	return nil
}

func (a *Thermal) ExtractResults(s solver.Session, m *mesh.Data, _ float64) (map[string]float64, error) {
	if err := s.UseLastResult(); err != nil {
		return nil, err
	}
	temp, err := s.NodalField(solver.QueryTemperature)
	if err != nil {
		return nil, err
	}
	tstat, err := summarize(temp, m)
	if err != nil {
		return nil, err
	}

	out := map[string]float64{
		"max_temp_c":   tstat.max,
		"min_temp_c":   tstat.min,
		"avg_temp_c":   tstat.mean,
		"temp_range_c": tstat.max - tstat.min,
	}
	putLocation(out, "max_temp", m, tstat.maxIdx)
	putLocation(out, "min_temp", m, tstat.minIdx)
	return out, nil
}

func (a *Thermal) ArtifactChannels(detail bool) []artifact.Channel {
	channels := []artifact.Channel{
		contourChannel("temperature", solver.QueryTemperature),
		contourChannel("heat_flux", solver.QueryHeatFluxSum),
		contourChannel("thermal_gradient", solver.QueryThermGradSum),
	}
	if !detail {
		return channels
	}
	for _, comp := range []string{"X", "Y", "Z"} {
		channels = append(channels,
			contourChannel("heat_flux_"+comp, solver.FieldQuery{Field: "TF", Component: comp}))
	}
	return append(channels, meshChannel())
}

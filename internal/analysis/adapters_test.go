package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"fesweep/internal/mesh"
	"fesweep/internal/solver"
)

func blockMesh(t *testing.T) *mesh.Data {
	t.Helper()
	d := &mesh.Data{
		NodeIDs: []int{1, 2, 3, 4, 5, 6, 7, 8},
		NodeCoords: [][3]float64{
			{0, 0, 0}, {0.02, 0, 0}, {0.02, 0.02, 0}, {0, 0.02, 0},
			{0, 0, 0.05}, {0.02, 0, 0.05}, {0.02, 0.02, 0.05}, {0, 0.02, 0.05},
		},
		Elements: [][4]int{{1, 2, 3, 5}, {3, 4, 1, 7}, {5, 6, 7, 2}},
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	return d
}

// runOnce drives one full adapter cycle against the built-in simulator.
func runOnce(t *testing.T, a Adapter, m *mesh.Data, param float64) map[string]float64 {
	t.Helper()
	s := solver.NewSimSession()
	t.Cleanup(func() { s.Close() })

	mat := DefaultMaterial(a.Descriptor())
	if err := a.PrepareRun(s, m, mat, param); err != nil {
		t.Fatalf("PrepareRun() error = %v", err)
	}
	if err := s.Solve(context.Background()); err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	scalars, err := a.ExtractResults(s, m, param)
	if err != nil {
		t.Fatalf("ExtractResults() error = %v", err)
	}
	return scalars
}

func wantMetrics(t *testing.T, scalars map[string]float64, keys ...string) {
	t.Helper()
	for _, key := range keys {
		if _, ok := scalars[key]; !ok {
			t.Errorf("missing metric %q", key)
		}
	}
}

func TestStructuralAdapter(t *testing.T) {
	m := blockMesh(t)
	scalars := runOnce(t, NewStructural(DefaultPlacement()), m, 500)

	wantMetrics(t, scalars,
		"max_stress_mpa", "min_stress_mpa", "avg_stress_mpa",
		"max_displacement_mm", "avg_displacement_mm",
		"max_stress_node", "max_stress_x_m", "max_stress_y_m", "max_stress_z_m",
		"max_disp_node")
	if scalars["max_stress_mpa"] < scalars["avg_stress_mpa"] {
		t.Fatalf("max stress %g below average %g", scalars["max_stress_mpa"], scalars["avg_stress_mpa"])
	}
	if scalars["max_stress_mpa"] <= 0 || scalars["max_displacement_mm"] <= 0 {
		t.Fatalf("non-positive peak results: stress %g, displacement %g",
			scalars["max_stress_mpa"], scalars["max_displacement_mm"])
	}
	// Stress peaks at the supported face, displacement at the loaded face.
	if z := scalars["max_stress_z_m"]; z != 0 {
		t.Fatalf("max stress at z = %g, want support face z = 0", z)
	}
	if z := scalars["max_disp_z_m"]; z != 0.05 {
		t.Fatalf("max displacement at z = %g, want loaded face z = 0.05", z)
	}
}

func TestThermalAdapter(t *testing.T) {
	m := blockMesh(t)
	scalars := runOnce(t, NewThermal(DefaultPlacement()), m, 2000)

	wantMetrics(t, scalars, "max_temp_c", "min_temp_c", "avg_temp_c", "temp_range_c",
		"max_temp_node", "min_temp_node")
	if scalars["min_temp_c"] != 20 {
		t.Fatalf("min temperature = %g, want the fixed 20 at the constrained face", scalars["min_temp_c"])
	}
	if scalars["temp_range_c"] <= 0 {
		t.Fatalf("temperature range = %g, want positive under applied flux", scalars["temp_range_c"])
	}
}

func TestModalAdapter_PartialConvergence(t *testing.T) {
	m := blockMesh(t)
	s := solver.NewSimSession()
	s.ConvergedModes = 7
	defer s.Close()

	a := NewModal(DefaultPlacement())
	mat := DefaultMaterial(a.Descriptor())
	if err := a.PrepareRun(s, m, mat, 10); err != nil {
		t.Fatalf("PrepareRun() error = %v", err)
	}
	if err := s.Solve(context.Background()); err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	scalars, err := a.ExtractResults(s, m, 10)
	if err != nil {
		t.Fatalf("ExtractResults() error = %v", err)
	}

	if got := scalars["num_modes_requested"]; got != 10 {
		t.Fatalf("num_modes_requested = %g, want 10", got)
	}
	if got := scalars["modes_resolved"]; got != 7 {
		t.Fatalf("modes_resolved = %g, want 7", got)
	}
	if f := scalars["fundamental_freq_hz"]; f <= 0 {
		t.Fatalf("fundamental_freq_hz = %g, want positive", f)
	}
	if f := scalars["mode_7_freq_hz"]; math.IsNaN(f) || f <= scalars["fundamental_freq_hz"] {
		t.Fatalf("mode_7_freq_hz = %g, want above fundamental", f)
	}
	for k := 8; k <= 10; k++ {
		key := fmt.Sprintf("mode_%d_freq_hz", k)
		if !math.IsNaN(scalars[key]) {
			t.Fatalf("%s = %g, want NaN for unresolved mode", key, scalars[key])
		}
	}
	if got, want := scalars["highest_resolved_freq_hz"], scalars["mode_7_freq_hz"]; got != want {
		t.Fatalf("highest_resolved_freq_hz = %g, want %g", got, want)
	}
}

// gatedResultSession refuses to position on result sets the solve
// never produced, the way real backends do.
type gatedResultSession struct {
	*solver.SimSession
	available int
}

func (s *gatedResultSession) UseResultSet(loadStep, subStep int) error {
	if subStep > s.available {
		return fmt.Errorf("result set %d,%d not found", loadStep, subStep)
	}
	return s.SimSession.UseResultSet(loadStep, subStep)
}

func TestModalAdapter_UnreadableResultSets(t *testing.T) {
	m := blockMesh(t)
	inner := solver.NewSimSession()
	defer inner.Close()
	s := &gatedResultSession{SimSession: inner, available: 7}

	a := NewModal(DefaultPlacement())
	if err := a.PrepareRun(s, m, DefaultMaterial(a.Descriptor()), 10); err != nil {
		t.Fatalf("PrepareRun() error = %v", err)
	}
	if err := s.Solve(context.Background()); err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	scalars, err := a.ExtractResults(s, m, 10)
	if err != nil {
		t.Fatalf("ExtractResults() error = %v, want gaps recorded instead of a failed run", err)
	}
	if got := scalars["modes_resolved"]; got != 7 {
		t.Fatalf("modes_resolved = %g, want 7", got)
	}
	for k := 8; k <= 10; k++ {
		key := fmt.Sprintf("mode_%d_freq_hz", k)
		if !math.IsNaN(scalars[key]) {
			t.Fatalf("%s = %g, want NaN when its result set is unreadable", key, scalars[key])
		}
	}
	if got, want := scalars["highest_resolved_freq_hz"], scalars["mode_7_freq_hz"]; got != want {
		t.Fatalf("highest_resolved_freq_hz = %g, want %g", got, want)
	}
}

func TestModalAdapter_RejectsZeroModes(t *testing.T) {
	s := solver.NewSimSession()
	defer s.Close()
	a := NewModal(DefaultPlacement())
	err := a.PrepareRun(s, blockMesh(t), DefaultMaterial(a.Descriptor()), 0.2)
	var se *solver.SetupError
	if !errors.As(err, &se) {
		t.Fatalf("PrepareRun(0.2) error = %v, want *solver.SetupError", err)
	}
}

func TestMagnetostaticAdapter(t *testing.T) {
	m := blockMesh(t)
	scalars := runOnce(t, NewMagnetostatic(DefaultPlacement()), m, 5e6)

	wantMetrics(t, scalars, "max_bfield_t", "min_bfield_t", "avg_bfield_t",
		"max_bx_t", "max_by_t", "max_bz_t", "max_bfield_node")
	if scalars["max_bfield_t"] <= 0 {
		t.Fatalf("max_bfield_t = %g, want positive under current density load", scalars["max_bfield_t"])
	}
	// The magnitude bounds every single component peak.
	for _, key := range []string{"max_bx_t", "max_by_t", "max_bz_t"} {
		if scalars[key] > scalars["max_bfield_t"]+1e-12 {
			t.Fatalf("%s = %g exceeds field magnitude %g", key, scalars[key], scalars["max_bfield_t"])
		}
	}
}

func TestPlacement_NoNodesInBand(t *testing.T) {
	m := blockMesh(t)
	s := solver.NewSimSession()
	defer s.Close()

	p := DefaultPlacement()
	p.SupportAt = 0.4 // off the model entirely
	a := NewStructural(p)
	err := a.PrepareRun(s, m, DefaultMaterial(a.Descriptor()), 100)
	if err == nil {
		t.Fatal("PrepareRun() with empty support band succeeded, want error")
	}
	var se *solver.SetupError
	if !errors.As(err, &se) {
		t.Fatalf("PrepareRun() error type = %T, want *solver.SetupError", err)
	}
	if se.Stage != "support selection" {
		t.Fatalf("SetupError stage = %q, want %q", se.Stage, "support selection")
	}
}

func TestArtifactChannelNames(t *testing.T) {
	a := NewStructural(DefaultPlacement())
	base := a.ArtifactChannels(false)
	if len(base) != 2 {
		t.Fatalf("base channels = %d, want 2", len(base))
	}
	detail := a.ArtifactChannels(true)
	if len(detail) <= len(base) {
		t.Fatalf("detail channels = %d, want more than %d", len(detail), len(base))
	}
	seen := make(map[string]bool)
	for _, ch := range detail {
		if ch.Name == "" || ch.Render == nil {
			t.Fatalf("channel %+v missing name or renderer", ch)
		}
		if seen[ch.Name] {
			t.Fatalf("duplicate channel name %q", ch.Name)
		}
		seen[ch.Name] = true
	}
	for _, want := range []string{"stress", "displacement", "deformed_shape", "mesh"} {
		if !seen[want] {
			t.Fatalf("detail channels missing %q", want)
		}
	}
}

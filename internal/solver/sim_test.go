package solver

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func buildBlock(t *testing.T, s *SimSession) {
	t.Helper()
	if err := s.DefineElementType(ElemStructuralSolid); err != nil {
		t.Fatalf("DefineElementType() error = %v", err)
	}
	coords := [][3]float64{
		{0, 0, 0}, {0.02, 0, 0}, {0.02, 0.02, 0}, {0, 0.02, 0},
		{0, 0, 0.05}, {0.02, 0, 0.05}, {0.02, 0.02, 0.05}, {0, 0.02, 0.05},
	}
	for i, c := range coords {
		if err := s.CreateNode(i+1, c[0], c[1], c[2]); err != nil {
			t.Fatalf("CreateNode(%d) error = %v", i+1, err)
		}
	}
	for _, el := range [][4]int{{1, 2, 3, 5}, {3, 4, 1, 7}, {5, 6, 7, 2}} {
		if err := s.CreateElement(el); err != nil {
			t.Fatalf("CreateElement(%v) error = %v", el, err)
		}
	}
}

func solveStatic(t *testing.T, s *SimSession, force float64) {
	t.Helper()
	if err := s.SetMaterialProperty("EX", 200e9); err != nil {
		t.Fatalf("SetMaterialProperty() error = %v", err)
	}
	if _, err := s.SelectNodesByLocation(AxisZ, -1e-3, 1e-3); err != nil {
		t.Fatalf("SelectNodesByLocation() error = %v", err)
	}
	if err := s.ConstrainAll("ALL", 0); err != nil {
		t.Fatalf("ConstrainAll() error = %v", err)
	}
	if _, err := s.SelectNodesByLocation(AxisZ, 0.05-1e-3, 0.05+1e-3); err != nil {
		t.Fatalf("SelectNodesByLocation() error = %v", err)
	}
	if err := s.ApplyNodalForce("FZ", -force); err != nil {
		t.Fatalf("ApplyNodalForce() error = %v", err)
	}
	if err := s.SelectAll(); err != nil {
		t.Fatalf("SelectAll() error = %v", err)
	}
	if err := s.SetAnalysisType(AnalysisStatic); err != nil {
		t.Fatalf("SetAnalysisType() error = %v", err)
	}
	if err := s.Solve(context.Background()); err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
}

func TestSimSession_RebuildIsIdempotent(t *testing.T) {
	s := NewSimSession()
	for round := 0; round < 2; round++ {
		if err := s.Reset(); err != nil {
			t.Fatalf("Reset() round %d error = %v", round, err)
		}
		buildBlock(t, s)
		nodes, err := s.NodeCount()
		if err != nil {
			t.Fatalf("NodeCount() error = %v", err)
		}
		elems, err := s.ElementCount()
		if err != nil {
			t.Fatalf("ElementCount() error = %v", err)
		}
		if nodes != 8 || elems != 3 {
			t.Fatalf("round %d: got %d nodes, %d elements, want 8 and 3", round, nodes, elems)
		}
	}
}

func TestSimSession_SelectionBand(t *testing.T) {
	s := NewSimSession()
	buildBlock(t, s)

	n, err := s.SelectNodesByLocation(AxisZ, -1e-3, 1e-3)
	if err != nil {
		t.Fatalf("SelectNodesByLocation() error = %v", err)
	}
	if n != 4 {
		t.Fatalf("bottom face selection = %d nodes, want 4", n)
	}

	n, err = s.SelectNodesByLocation(AxisZ, 0.2, 0.3)
	if err != nil {
		t.Fatalf("SelectNodesByLocation() error = %v", err)
	}
	if n != 0 {
		t.Fatalf("off-model selection = %d nodes, want 0", n)
	}
	if err := s.ConstrainAll("ALL", 0); err == nil {
		t.Fatal("ConstrainAll() on empty selection succeeded, want error")
	}
}

func TestSimSession_SolveRequiresModel(t *testing.T) {
	s := NewSimSession()
	if err := s.Solve(context.Background()); err == nil {
		t.Fatal("Solve() on empty session succeeded, want error")
	}
	if _, err := s.NodalField(QueryEqvStress); err == nil {
		t.Fatal("NodalField() before solve succeeded, want error")
	}
}

func TestSimSession_FieldScalesWithLoad(t *testing.T) {
	values := func(force float64) []float64 {
		s := NewSimSession()
		buildBlock(t, s)
		solveStatic(t, s, force)
		if err := s.UseLastResult(); err != nil {
			t.Fatalf("UseLastResult() error = %v", err)
		}
		out, err := s.NodalField(QueryEqvStress)
		if err != nil {
			t.Fatalf("NodalField() error = %v", err)
		}
		return out
	}
	lo := values(100)
	hi := values(1000)
	if len(lo) != 8 || len(hi) != 8 {
		t.Fatalf("field lengths = %d, %d, want 8", len(lo), len(hi))
	}
	for i := range lo {
		if math.Abs(hi[i]-10*lo[i]) > 1e-6*math.Abs(hi[i]) {
			t.Fatalf("node %d: field not linear in load: %g vs %g", i, lo[i], hi[i])
		}
	}
}

func TestSimSession_ModalPartialConvergence(t *testing.T) {
	s := NewSimSession()
	s.ConvergedModes = 7
	buildBlock(t, s)
	if err := s.SetMaterialProperty("EX", 200e9); err != nil {
		t.Fatalf("SetMaterialProperty() error = %v", err)
	}
	if err := s.SetMaterialProperty("DENS", 7850); err != nil {
		t.Fatalf("SetMaterialProperty() error = %v", err)
	}
	if _, err := s.SelectNodesByLocation(AxisZ, -1e-3, 1e-3); err != nil {
		t.Fatalf("SelectNodesByLocation() error = %v", err)
	}
	if err := s.ConstrainAll("ALL", 0); err != nil {
		t.Fatalf("ConstrainAll() error = %v", err)
	}
	if err := s.SetAnalysisType(AnalysisModal); err != nil {
		t.Fatalf("SetAnalysisType() error = %v", err)
	}
	if err := s.SetModalOptions(10, 0, 200); err != nil {
		t.Fatalf("SetModalOptions() error = %v", err)
	}
	if err := s.Solve(context.Background()); err != nil {
		t.Fatalf("Solve() error = %v", err)
	}

	for mode := 1; mode <= 7; mode++ {
		f, err := s.ModeFrequency(mode)
		if err != nil {
			t.Fatalf("ModeFrequency(%d) error = %v", mode, err)
		}
		if f <= 0 {
			t.Fatalf("ModeFrequency(%d) = %g, want positive", mode, f)
		}
	}
	for mode := 8; mode <= 10; mode++ {
		if _, err := s.ModeFrequency(mode); !errors.Is(err, ErrModeUnavailable) {
			t.Fatalf("ModeFrequency(%d) error = %v, want ErrModeUnavailable", mode, err)
		}
	}
	if err := s.UseResultSet(1, 7); err != nil {
		t.Fatalf("UseResultSet(1, 7) error = %v", err)
	}
	if err := s.UseResultSet(1, 8); err == nil {
		t.Fatal("UseResultSet(1, 8) succeeded, want error for a set the solve never wrote")
	}
	if _, err := s.ModeFrequency(11); errors.Is(err, ErrModeUnavailable) || err == nil {
		t.Fatal("ModeFrequency(11) should reject modes outside the requested range")
	}
}

func TestSimSession_RasterExport(t *testing.T) {
	s := NewSimSession()
	buildBlock(t, s)

	path := filepath.Join(t.TempDir(), "mesh_run_001.png")
	if err := s.ExportRaster(path); err == nil {
		t.Fatal("ExportRaster() before any plot succeeded, want error")
	}
	if err := s.PlotMesh(); err != nil {
		t.Fatalf("PlotMesh() error = %v", err)
	}
	if err := s.ExportRaster(path); err != nil {
		t.Fatalf("ExportRaster() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("exported raster missing: %v", err)
	}
}

func TestLaunch_UnknownMode(t *testing.T) {
	if _, err := Launch(LaunchConfig{Mode: "grpc"}, nil); err == nil {
		t.Fatal("Launch() with unknown mode succeeded, want error")
	}
	s, err := Launch(LaunchConfig{Mode: ModeSim, ConvergedModes: 3}, nil)
	if err != nil {
		t.Fatalf("Launch(sim) error = %v", err)
	}
	defer s.Close()
	if sim, ok := s.(*SimSession); !ok || sim.ConvergedModes != 3 {
		t.Fatalf("Launch(sim) = %T with ConvergedModes %v, want SimSession with 3", s, s)
	}
}

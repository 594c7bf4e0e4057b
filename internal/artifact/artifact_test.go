package artifact

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fesweep/internal/solver"
)

func readySession(t *testing.T) *solver.SimSession {
	t.Helper()
	s := solver.NewSimSession()
	t.Cleanup(func() { s.Close() })

	if err := s.DefineElementType(solver.ElemStructuralSolid); err != nil {
		t.Fatalf("DefineElementType() error = %v", err)
	}
	coords := [][3]float64{
		{0, 0, 0}, {0.02, 0, 0}, {0, 0.02, 0}, {0, 0, 0.05},
	}
	for i, c := range coords {
		if err := s.CreateNode(i+1, c[0], c[1], c[2]); err != nil {
			t.Fatalf("CreateNode() error = %v", err)
		}
	}
	if err := s.CreateElement([4]int{1, 2, 3, 4}); err != nil {
		t.Fatalf("CreateElement() error = %v", err)
	}
	if err := s.SelectAll(); err != nil {
		t.Fatalf("SelectAll() error = %v", err)
	}
	if err := s.ApplyNodalForce("FZ", -100); err != nil {
		t.Fatalf("ApplyNodalForce() error = %v", err)
	}
	if err := s.SetAnalysisType(solver.AnalysisStatic); err != nil {
		t.Fatalf("SetAnalysisType() error = %v", err)
	}
	if err := s.Solve(context.Background()); err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	return s
}

func TestCapture_Naming(t *testing.T) {
	s := readySession(t)
	dir := t.TempDir()
	c := &Capturer{OutDir: dir}

	channels := []Channel{
		{Name: "stress", Render: func(s solver.Session) error {
			if err := s.UseLastResult(); err != nil {
				return err
			}
			return s.PlotNodal(solver.QueryEqvStress)
		}},
		{Name: "mesh", Render: func(s solver.Session) error { return s.PlotMesh() }},
	}

	paths := c.Capture(s, 7, channels)
	if len(paths) != 2 {
		t.Fatalf("captured %d channels, want 2", len(paths))
	}
	for name, want := range map[string]string{
		"stress": filepath.Join(dir, "stress_run_007.png"),
		"mesh":   filepath.Join(dir, "mesh_run_007.png"),
	} {
		got, ok := paths[name]
		if !ok || got != want {
			t.Fatalf("channel %q path = %q, want %q", name, got, want)
		}
		if _, err := os.Stat(got); err != nil {
			t.Fatalf("captured file missing: %v", err)
		}
	}
}

func TestCapture_ChannelFailuresAreIndependent(t *testing.T) {
	s := readySession(t)
	c := &Capturer{OutDir: t.TempDir()}

	channels := []Channel{
		{Name: "broken", Render: func(solver.Session) error {
			return errors.New("plot backend rejected request")
		}},
		{Name: "mesh", Render: func(s solver.Session) error { return s.PlotMesh() }},
	}

	paths := c.Capture(s, 1, channels)
	if _, ok := paths["broken"]; ok {
		t.Fatal("failed channel reported a path")
	}
	if _, ok := paths["mesh"]; !ok {
		t.Fatal("healthy channel missing after sibling failure")
	}
}

func TestSet(t *testing.T) {
	set := NewSet()
	set.Add("stress", "stress_run_001.png")
	set.Add("displacement", "displacement_run_001.png")
	set.Add("stress", "stress_run_002.png")

	if got := set.Channels(); len(got) != 2 || got[0] != "stress" || got[1] != "displacement" {
		t.Fatalf("Channels() = %v, want first-seen order [stress displacement]", got)
	}
	if got := set.Frames("stress"); len(got) != 2 || got[1] != "stress_run_002.png" {
		t.Fatalf("Frames(stress) = %v, want run order preserved", got)
	}
	if set.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", set.Len())
	}
	if got := set.Frames("missing"); len(got) != 0 {
		t.Fatalf("Frames(missing) = %v, want empty", got)
	}
}

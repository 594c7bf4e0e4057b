package mesh

import (
	"errors"
	"testing"

	"fesweep/internal/solver"
)

func TestMaterialize(t *testing.T) {
	d := blockData()
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	s := solver.NewSimSession()
	defer s.Close()

	for round := 0; round < 3; round++ {
		if err := Materialize(s, d, solver.ElemThermalSolid); err != nil {
			t.Fatalf("Materialize() round %d error = %v", round, err)
		}
		nodes, err := s.NodeCount()
		if err != nil {
			t.Fatalf("NodeCount() error = %v", err)
		}
		elems, err := s.ElementCount()
		if err != nil {
			t.Fatalf("ElementCount() error = %v", err)
		}
		if nodes != d.NodeCount() || elems != d.ElementCount() {
			t.Fatalf("round %d: session has %d nodes, %d elements, want %d and %d",
				round, nodes, elems, d.NodeCount(), d.ElementCount())
		}
	}
}

func TestMaterialize_ClosedSession(t *testing.T) {
	d := blockData()
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	s := solver.NewSimSession()
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	err := Materialize(s, d, solver.ElemStructuralSolid)
	if err == nil {
		t.Fatal("Materialize() on closed session succeeded, want error")
	}
	var se *solver.SetupError
	if !errors.As(err, &se) {
		t.Fatalf("Materialize() error type = %T, want *solver.SetupError", err)
	}
}

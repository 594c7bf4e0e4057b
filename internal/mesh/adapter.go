package mesh

import (
	"fesweep/internal/solver"
)

// Materialize rebuilds the mesh inside the solver session: full reset,
// one element-type declaration, then nodes and elements in input order.
//
// It must run at the start of every run. The backend holds no
// transactional snapshots, so mutating boundary conditions or re-solving
// on last run's model state silently corrupts results from the second
// run on. The reset-then-rebuild here is what keeps runs isolated.
func Materialize(s solver.Session, d *Data, kind solver.ElementKind) error {
	if err := s.Reset(); err != nil {
		return solver.WrapSetup("session reset", err)
	}
	if err := s.DefineElementType(kind); err != nil {
		return solver.WrapSetup("element type declaration", err)
	}
	for i, id := range d.NodeIDs {
		c := d.NodeCoords[i]
		if err := s.CreateNode(id, c[0], c[1], c[2]); err != nil {
			return solver.WrapSetup("node creation", err)
		}
	}
	for _, el := range d.Elements {
		if err := s.CreateElement(el); err != nil {
			return solver.WrapSetup("element creation", err)
		}
	}
	return nil
}

// Package mesh holds the immutable tetrahedral mesh handed over by the
// upstream mesh generator, its validation, and the adapter that
// materializes it into a solver session. The core never repairs
// geometry; a mesh that fails validation stops the sweep before it
// starts.
package mesh

import (
	"fmt"
)

// Data is the mesh exchange payload: node ids with coordinates in
// meters, and 4-node tetrahedral connectivity referencing those ids.
// Treated as read-only for the lifetime of a sweep; the sweep driver
// re-submits it to the solver on every run.
type Data struct {
	NodeIDs    []int
	NodeCoords [][3]float64
	Elements   [][4]int

	index map[int]int // node id -> position, built by Validate
}

// Error reports an invalid upstream mesh. Fatal: raised before any
// sweep work begins.
type Error struct {
	Reason string
}

func (e *Error) Error() string { return "invalid mesh: " + e.Reason }

func invalidf(format string, args ...any) *Error {
	return &Error{Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the handover invariants: non-empty topology, matching
// id/coordinate lengths, unique ids, and no dangling connectivity
// references. It also builds the id index used by location lookups.
func (d *Data) Validate() error {
	if len(d.NodeIDs) == 0 {
		return invalidf("no nodes")
	}
	if len(d.Elements) == 0 {
		return invalidf("no elements")
	}
	if len(d.NodeIDs) != len(d.NodeCoords) {
		return invalidf("%d node ids but %d coordinate triples", len(d.NodeIDs), len(d.NodeCoords))
	}
	idx := make(map[int]int, len(d.NodeIDs))
	for i, id := range d.NodeIDs {
		if _, dup := idx[id]; dup {
			return invalidf("duplicate node id %d", id)
		}
		idx[id] = i
	}
	for ei, el := range d.Elements {
		for _, id := range el {
			if _, ok := idx[id]; !ok {
				return invalidf("element %d references unknown node %d", ei, id)
			}
		}
	}
	d.index = idx
	return nil
}

// NodeAt returns the position in NodeIDs/NodeCoords of a node id.
// Valid only after Validate.
func (d *Data) NodeAt(id int) (int, bool) {
	i, ok := d.index[id]
	return i, ok
}

// Location returns the coordinates of the i-th node.
func (d *Data) Location(i int) [3]float64 { return d.NodeCoords[i] }

// NodeCount and ElementCount report topology sizes.
func (d *Data) NodeCount() int    { return len(d.NodeIDs) }
func (d *Data) ElementCount() int { return len(d.Elements) }

package analysis

import (
	"fmt"

	"fesweep/internal/mesh"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// fieldStats summarizes one nodal field: extrema, mean, and the
// positions (node order index) of the extrema.
type fieldStats struct {
	max, min, mean float64
	maxIdx, minIdx int
}

func summarize(values []float64, m *mesh.Data) (fieldStats, error) {
	if len(values) == 0 {
		return fieldStats{}, fmt.Errorf("empty nodal field")
	}
	if len(values) != m.NodeCount() {
		return fieldStats{}, fmt.Errorf("field has %d values for %d nodes", len(values), m.NodeCount())
	}
	return fieldStats{
		max:    floats.Max(values),
		min:    floats.Min(values),
		mean:   stat.Mean(values, nil),
		maxIdx: floats.MaxIdx(values),
		minIdx: floats.MinIdx(values),
	}, nil
}

// putLocation records the node id and coordinates of a field position
// under <prefix>_node and <prefix>_{x,y,z}_m.
func putLocation(out map[string]float64, prefix string, m *mesh.Data, idx int) {
	c := m.Location(idx)
	out[prefix+"_node"] = float64(m.NodeIDs[idx])
	out[prefix+"_x_m"] = c[0]
	out[prefix+"_y_m"] = c[1]
	out[prefix+"_z_m"] = c[2]
}

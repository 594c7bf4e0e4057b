package mesh

import (
	"encoding/json"
	"fmt"
	"os"
)

// fileNode and filePayload mirror the JSON mesh exchange document the
// upstream mesher writes after meshing a CAD input.
type fileNode struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`
}

type filePayload struct {
	Nodes    []fileNode `json:"nodes"`
	Elements [][4]int   `json:"elements"`
}

// ReadFile parses and validates a mesh exchange file. Any structural
// defect surfaces as *Error before a sweep can start.
func ReadFile(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mesh file: %w", err)
	}
	var payload filePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("parse mesh file %s: %w", path, err)
	}
	d := &Data{
		NodeIDs:    make([]int, len(payload.Nodes)),
		NodeCoords: make([][3]float64, len(payload.Nodes)),
		Elements:   payload.Elements,
	}
	for i, n := range payload.Nodes {
		d.NodeIDs[i] = n.ID
		d.NodeCoords[i] = [3]float64{n.X, n.Y, n.Z}
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

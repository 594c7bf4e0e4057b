package mesh

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func blockData() *Data {
	return &Data{
		NodeIDs: []int{1, 2, 3, 4, 5, 6, 7, 8},
		NodeCoords: [][3]float64{
			{0, 0, 0}, {0.02, 0, 0}, {0.02, 0.02, 0}, {0, 0.02, 0},
			{0, 0, 0.05}, {0.02, 0, 0.05}, {0.02, 0.02, 0.05}, {0, 0.02, 0.05},
		},
		Elements: [][4]int{{1, 2, 3, 5}, {3, 4, 1, 7}, {5, 6, 7, 2}},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Data)
		wantErr bool
	}{
		{name: "valid block", mutate: func(*Data) {}},
		{name: "no nodes", mutate: func(d *Data) {
			d.NodeIDs = nil
			d.NodeCoords = nil
		}, wantErr: true},
		{name: "no elements", mutate: func(d *Data) { d.Elements = nil }, wantErr: true},
		{name: "coord length mismatch", mutate: func(d *Data) {
			d.NodeCoords = d.NodeCoords[:7]
		}, wantErr: true},
		{name: "duplicate node id", mutate: func(d *Data) { d.NodeIDs[7] = 1 }, wantErr: true},
		{name: "dangling element ref", mutate: func(d *Data) {
			d.Elements[0][3] = 99
		}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := blockData()
			tt.mutate(d)
			err := d.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var me *Error
				if !errors.As(err, &me) {
					t.Fatalf("Validate() error type = %T, want *Error", err)
				}
			}
		})
	}
}

func TestLocation(t *testing.T) {
	d := blockData()
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	i, ok := d.NodeAt(5)
	if !ok {
		t.Fatal("NodeAt(5) not found")
	}
	if loc := d.Location(i); loc != [3]float64{0, 0, 0.05} {
		t.Fatalf("Location(NodeAt(5)) = %v, want {0 0 0.05}", loc)
	}
	if _, ok := d.NodeAt(99); ok {
		t.Fatal("NodeAt(99) found, want miss")
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "block.json")
	payload := `{
  "nodes": [
    {"id": 1, "x": 0, "y": 0, "z": 0},
    {"id": 2, "x": 0.02, "y": 0, "z": 0},
    {"id": 3, "x": 0.02, "y": 0.02, "z": 0},
    {"id": 4, "x": 0, "y": 0, "z": 0.05}
  ],
  "elements": [[1, 2, 3, 4]]
}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	d, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if d.NodeCount() != 4 || d.ElementCount() != 1 {
		t.Fatalf("got %d nodes, %d elements, want 4 and 1", d.NodeCount(), d.ElementCount())
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("ReadFile() on missing path succeeded, want error")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"nodes": [], "elements": []}`), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := ReadFile(bad); err == nil {
		t.Fatal("ReadFile() on empty mesh succeeded, want error")
	}
}

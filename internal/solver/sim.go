package solver

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sort"
)

// SimSession is a deterministic in-memory stand-in for the external
// backend. It implements the full Session command protocol over a
// synthetic linear response model, so a sweep can be rehearsed end to
// end (dry runs, tests) without a solver license. Field values scale
// linearly with the applied load and vary smoothly across the mesh,
// which keeps max/min/avg and their locations well defined.
type SimSession struct {
	// ConvergedModes caps how many modes a modal solve resolves. Zero
	// means all requested modes converge. Lets dry runs exercise the
	// partial-convergence path.
	ConvergedModes int

	etypeSet bool
	etype    ElementKind

	nodeOrder []int
	coords    map[int][3]float64
	elements  [][4]int

	material  map[string]float64
	selection []int

	forceDOF   string
	forceValue float64
	surfLabel  string
	surfValue  float64
	bodyLabel  string
	bodyValue  float64

	analysis  AnalysisType
	modalN    int
	modalFreq [2]float64

	solved   bool
	curSet   int // 0 = last
	lastPlot string
	closed   bool
}

// NewSimSession returns an empty simulated session.
func NewSimSession() *SimSession {
	s := &SimSession{}
	s.reset()
	return s
}

func (s *SimSession) reset() {
	s.etypeSet = false
	s.nodeOrder = nil
	s.coords = make(map[int][3]float64)
	s.elements = nil
	s.material = make(map[string]float64)
	s.selection = nil
	s.forceDOF = ""
	s.forceValue = 0
	s.surfLabel = ""
	s.surfValue = 0
	s.bodyLabel = ""
	s.bodyValue = 0
	s.analysis = ""
	s.modalN = 0
	s.solved = false
	s.curSet = 0
	s.lastPlot = ""
}

func (s *SimSession) check() error {
	if s.closed {
		return fmt.Errorf("session closed")
	}
	return nil
}

func (s *SimSession) Reset() error {
	if err := s.check(); err != nil {
		return err
	}
	s.reset()
	return nil
}

func (s *SimSession) DefineElementType(kind ElementKind) error {
	if err := s.check(); err != nil {
		return err
	}
	if kind.TypeNumber() == 0 {
		return fmt.Errorf("unknown element kind %d", int(kind))
	}
	s.etype = kind
	s.etypeSet = true
	return nil
}

func (s *SimSession) SetMaterialProperty(label string, value float64) error {
	if err := s.check(); err != nil {
		return err
	}
	if label == "" {
		return fmt.Errorf("empty material property label")
	}
	s.material[label] = value
	return nil
}

func (s *SimSession) CreateNode(id int, x, y, z float64) error {
	if err := s.check(); err != nil {
		return err
	}
	if !s.etypeSet {
		return fmt.Errorf("node %d created before element type declaration", id)
	}
	if _, dup := s.coords[id]; dup {
		return fmt.Errorf("duplicate node id %d", id)
	}
	s.coords[id] = [3]float64{x, y, z}
	s.nodeOrder = append(s.nodeOrder, id)
	return nil
}

func (s *SimSession) CreateElement(nodes [4]int) error {
	if err := s.check(); err != nil {
		return err
	}
	for _, id := range nodes {
		if _, ok := s.coords[id]; !ok {
			return fmt.Errorf("element references unknown node %d", id)
		}
	}
	s.elements = append(s.elements, nodes)
	return nil
}

func (s *SimSession) SelectNodesByLocation(axis Axis, min, max float64) (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	var idx int
	switch axis {
	case AxisX:
		idx = 0
	case AxisY:
		idx = 1
	case AxisZ:
		idx = 2
	default:
		return 0, fmt.Errorf("unknown axis %q", axis)
	}
	s.selection = s.selection[:0]
	for _, id := range s.nodeOrder {
		c := s.coords[id][idx]
		if c >= min && c <= max {
			s.selection = append(s.selection, id)
		}
	}
	return len(s.selection), nil
}

func (s *SimSession) SelectExteriorNodes() (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	if len(s.nodeOrder) == 0 {
		s.selection = nil
		return 0, nil
	}
	lo, hi := s.bounds()
	const eps = 1e-9
	s.selection = s.selection[:0]
	for _, id := range s.nodeOrder {
		c := s.coords[id]
		ext := false
		for a := 0; a < 3; a++ {
			if math.Abs(c[a]-lo[a]) < eps || math.Abs(c[a]-hi[a]) < eps {
				ext = true
				break
			}
		}
		if ext {
			s.selection = append(s.selection, id)
		}
	}
	return len(s.selection), nil
}

func (s *SimSession) SelectAll() error {
	if err := s.check(); err != nil {
		return err
	}
	s.selection = append(s.selection[:0], s.nodeOrder...)
	return nil
}

func (s *SimSession) ConstrainAll(dof string, value float64) error {
	if err := s.check(); err != nil {
		return err
	}
	if len(s.selection) == 0 {
		return fmt.Errorf("constraint %s applied to empty selection", dof)
	}
	return nil
}

func (s *SimSession) ApplyNodalForce(dof string, value float64) error {
	if err := s.check(); err != nil {
		return err
	}
	if len(s.selection) == 0 {
		return fmt.Errorf("force %s applied to empty selection", dof)
	}
	s.forceDOF = dof
	s.forceValue = value
	return nil
}

func (s *SimSession) ApplySurfaceLoad(label string, value float64) error {
	if err := s.check(); err != nil {
		return err
	}
	if len(s.selection) == 0 {
		return fmt.Errorf("surface load %s applied to empty selection", label)
	}
	s.surfLabel = label
	s.surfValue = value
	return nil
}

func (s *SimSession) ApplyBodyLoad(label string, value float64) error {
	if err := s.check(); err != nil {
		return err
	}
	if len(s.elements) == 0 {
		return fmt.Errorf("body load %s applied to empty model", label)
	}
	s.bodyLabel = label
	s.bodyValue = value
	return nil
}

func (s *SimSession) SetAnalysisType(t AnalysisType) error {
	if err := s.check(); err != nil {
		return err
	}
	switch t {
	case AnalysisStatic, AnalysisModal:
		s.analysis = t
		return nil
	}
	return fmt.Errorf("unknown analysis type %q", t)
}

func (s *SimSession) SetModalOptions(numModes int, freqMin, freqMax float64) error {
	if err := s.check(); err != nil {
		return err
	}
	if numModes < 1 {
		return fmt.Errorf("modal extraction requires at least one mode, got %d", numModes)
	}
	s.modalN = numModes
	s.modalFreq = [2]float64{freqMin, freqMax}
	return nil
}

func (s *SimSession) Solve(ctx context.Context) error {
	if err := s.check(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.etypeSet {
		return fmt.Errorf("solve without element type")
	}
	if len(s.nodeOrder) == 0 || len(s.elements) == 0 {
		return fmt.Errorf("solve on empty model: %d nodes, %d elements", len(s.nodeOrder), len(s.elements))
	}
	if s.analysis == "" {
		return fmt.Errorf("solve without analysis type")
	}
	if s.analysis == AnalysisModal && s.modalN == 0 {
		return fmt.Errorf("modal solve without mode count")
	}
	s.solved = true
	s.curSet = 0
	return nil
}

func (s *SimSession) UseLastResult() error {
	if err := s.postCheck(); err != nil {
		return err
	}
	s.curSet = 0
	return nil
}

func (s *SimSession) UseResultSet(loadStep, subStep int) error {
	if err := s.postCheck(); err != nil {
		return err
	}
	if subStep < 1 {
		return fmt.Errorf("result substep must be positive, got %d", subStep)
	}
	// A modal solve writes one set per converged mode and nothing beyond.
	if s.analysis == AnalysisModal && s.ConvergedModes > 0 && subStep > s.ConvergedModes {
		return fmt.Errorf("result set %d,%d not found", loadStep, subStep)
	}
	s.curSet = subStep
	return nil
}

func (s *SimSession) postCheck() error {
	if err := s.check(); err != nil {
		return err
	}
	if !s.solved {
		return fmt.Errorf("no solved results in session")
	}
	return nil
}

// NodalField synthesizes one value per node, in creation order. The
// shape function stretches along the model's longest extent so maxima
// and minima land on opposite faces.
func (s *SimSession) NodalField(q FieldQuery) ([]float64, error) {
	if err := s.postCheck(); err != nil {
		return nil, err
	}
	out := make([]float64, len(s.nodeOrder))
	for i, id := range s.nodeOrder {
		t := s.shape(id)
		v, err := s.fieldValue(q, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// shape maps a node to [0,1] along the dominant model axis.
func (s *SimSession) shape(id int) float64 {
	lo, hi := s.bounds()
	axis, span := 0, hi[0]-lo[0]
	for a := 1; a < 3; a++ {
		if hi[a]-lo[a] > span {
			axis, span = a, hi[a]-lo[a]
		}
	}
	if span <= 0 {
		return 0
	}
	return (s.coords[id][axis] - lo[axis]) / span
}

func (s *SimSession) fieldValue(q FieldQuery, t float64) (float64, error) {
	switch q.Field {
	case "S":
		// Highest equivalent stress at the support end.
		base := math.Abs(s.forceValue) * 2.4e4 * (1 - 0.8*t)
		switch q.Component {
		case "EQV":
			return base, nil
		case "X", "Y", "Z":
			return base * 0.6, nil
		case "XY", "YZ", "XZ":
			return base * 0.25, nil
		case "1", "2", "3":
			return base * 0.8, nil
		}
	case "U":
		// Largest deflection at the loaded end.
		base := math.Abs(s.forceValue) * 3.1e-9 * (0.05 + 0.95*t)
		switch q.Component {
		case "NORM", "SUM":
			return base, nil
		case "X", "Y":
			return base * 0.2, nil
		case "Z":
			return base * 0.95, nil
		}
	case "TEMP":
		return 20 + s.surfValue*8.5e-3*t, nil
	case "TF":
		base := s.surfValue * (0.3 + 0.7*t)
		switch q.Component {
		case "SUM":
			return base, nil
		case "X", "Y":
			return base * 0.15, nil
		case "Z":
			return base * 0.95, nil
		}
	case "TG":
		if q.Component == "SUM" {
			return s.surfValue * 1.6e-2 * (0.3 + 0.7*t), nil
		}
	case "B":
		base := s.bodyValue * 1.9e-7 * (0.4 + 0.6*t)
		switch q.Component {
		case "SUM":
			return base, nil
		case "X":
			return base * 0.55, nil
		case "Y":
			return base * 0.35, nil
		case "Z":
			return base * 0.76, nil
		}
	}
	return 0, fmt.Errorf("unsupported field query %s/%s", q.Field, q.Component)
}

// ModeFrequency reports a synthetic natural frequency, stiffness-scaled
// so material changes move the spectrum. Modes past ConvergedModes are
// reported unavailable.
func (s *SimSession) ModeFrequency(mode int) (float64, error) {
	if err := s.postCheck(); err != nil {
		return 0, err
	}
	if s.analysis != AnalysisModal {
		return 0, fmt.Errorf("frequency query outside modal analysis")
	}
	if mode < 1 || mode > s.modalN {
		return 0, fmt.Errorf("mode %d outside requested range 1..%d", mode, s.modalN)
	}
	if s.ConvergedModes > 0 && mode > s.ConvergedModes {
		return 0, ErrModeUnavailable
	}
	stiffness := 1.0
	if ex, dens := s.material["EX"], s.material["DENS"]; ex > 0 && dens > 0 {
		stiffness = math.Sqrt(ex/dens) / math.Sqrt(200e9/7850)
	}
	return 12.5 * float64(mode) * stiffness, nil
}

func (s *SimSession) PlotNodal(q FieldQuery) error {
	if err := s.postCheck(); err != nil {
		return err
	}
	if _, err := s.fieldValue(q, 0.5); err != nil {
		return err
	}
	s.lastPlot = q.Field + q.Component
	return nil
}

func (s *SimSession) PlotDeformedShape() error {
	if err := s.postCheck(); err != nil {
		return err
	}
	s.lastPlot = "DEFORMED"
	return nil
}

func (s *SimSession) PlotMesh() error {
	if err := s.check(); err != nil {
		return err
	}
	if len(s.elements) == 0 {
		return fmt.Errorf("mesh plot on empty model")
	}
	s.lastPlot = "MESH"
	return nil
}

// ExportRaster writes a small real PNG so downstream artifact handling
// and animation assembly see genuine image files.
func (s *SimSession) ExportRaster(path string) error {
	if err := s.check(); err != nil {
		return err
	}
	if s.lastPlot == "" {
		return fmt.Errorf("raster export with no plot issued")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create raster directory: %w", err)
	}
	const size = 32
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	seed := 0
	for _, r := range s.lastPlot {
		seed = seed*31 + int(r)
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x*8 + seed) % 256),
				G: uint8((y*8 + seed/3) % 256),
				B: uint8((x*y + seed/7) % 256),
				A: 255,
			})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create raster file: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode raster: %w", err)
	}
	return nil
}

func (s *SimSession) NodeCount() (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	return len(s.nodeOrder), nil
}

func (s *SimSession) ElementCount() (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	return len(s.elements), nil
}

func (s *SimSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return nil
}

func (s *SimSession) bounds() (lo, hi [3]float64) {
	first := true
	for _, id := range s.nodeOrder {
		c := s.coords[id]
		if first {
			lo, hi = c, c
			first = false
			continue
		}
		for a := 0; a < 3; a++ {
			lo[a] = math.Min(lo[a], c[a])
			hi[a] = math.Max(hi[a], c[a])
		}
	}
	return lo, hi
}

// SelectedNodes returns the current selection sorted by id. Test helper.
func (s *SimSession) SelectedNodes() []int {
	out := append([]int(nil), s.selection...)
	sort.Ints(out)
	return out
}

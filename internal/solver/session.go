// Package solver defines the boundary to the external finite-element
// backend. The backend is a single stateful conversational session: an
// ordered stream of imperative model-building commands followed by a
// blocking solve and post-solution field queries. fesweep never owns any
// discretization or assembly code; everything behind Session is the
// collaborator's problem.
//
// A session is non-reentrant. Exactly one goroutine drives it, commands
// mutate shared model state, and nothing short of Reset restores a known
// baseline. Callers that skip the rebuild between solves get silently
// wrong answers, so the sweep driver rebuilds the full model every run.
package solver

import "context"

// ElementKind selects the element technology declared for the whole mesh.
// Each analysis kind maps to one solid tetrahedral formulation.
type ElementKind int

const (
	ElemStructuralSolid ElementKind = iota // SOLID285, structural tet
	ElemThermalSolid                       // SOLID278, thermal tet
	ElemMagneticSolid                      // SOLID236, magnetic solid
)

// TypeNumber reports the backend's element type identifier.
func (k ElementKind) TypeNumber() int {
	switch k {
	case ElemStructuralSolid:
		return 285
	case ElemThermalSolid:
		return 278
	case ElemMagneticSolid:
		return 236
	}
	return 0
}

func (k ElementKind) String() string {
	switch k {
	case ElemStructuralSolid:
		return "structural-solid"
	case ElemThermalSolid:
		return "thermal-solid"
	case ElemMagneticSolid:
		return "magnetic-solid"
	}
	return "unknown"
}

// AnalysisType is the backend solve mode.
type AnalysisType string

const (
	AnalysisStatic AnalysisType = "STATIC"
	AnalysisModal  AnalysisType = "MODAL"
)

// Axis names a global coordinate axis for location-based selection.
type Axis string

const (
	AxisX Axis = "X"
	AxisY Axis = "Y"
	AxisZ Axis = "Z"
)

// FieldQuery identifies a nodal result field and component, using the
// backend's own labels (S/EQV, U/SUM, TEMP, B/X, TF/SUM, ...).
type FieldQuery struct {
	Field     string
	Component string
}

// Common queries used by the analysis adapters.
var (
	QueryEqvStress    = FieldQuery{Field: "S", Component: "EQV"}
	QueryDispNorm     = FieldQuery{Field: "U", Component: "NORM"}
	QueryDispSum      = FieldQuery{Field: "U", Component: "SUM"}
	QueryTemperature  = FieldQuery{Field: "TEMP"}
	QueryHeatFluxSum  = FieldQuery{Field: "TF", Component: "SUM"}
	QueryThermGradSum = FieldQuery{Field: "TG", Component: "SUM"}
)

// Session is the command sink plus query surface of one backend session.
//
// Model-building commands apply to the current selection where the
// backend defines one (constraints and loads); selection commands replace
// the active set. Query methods are only valid after a successful Solve
// and a result-set selection.
type Session interface {
	// Reset clears all model state back to an empty session.
	Reset() error

	// DefineElementType declares the single element technology for the
	// model. Must precede node and element creation.
	DefineElementType(kind ElementKind) error

	// SetMaterialProperty assigns one material property by backend label
	// (EX, NUXY, DENS, KXX, C, MURX, ...) on the model's material.
	SetMaterialProperty(label string, value float64) error

	// CreateNode adds one node with an explicit id.
	CreateNode(id int, x, y, z float64) error

	// CreateElement adds one 4-node tetrahedron referencing node ids.
	CreateElement(nodes [4]int) error

	// SelectNodesByLocation replaces the active node selection with the
	// nodes whose coordinate on axis lies within [min, max]. Returns the
	// number of nodes selected; zero is not an error here, callers decide.
	SelectNodesByLocation(axis Axis, min, max float64) (int, error)

	// SelectExteriorNodes replaces the selection with boundary nodes.
	SelectExteriorNodes() (int, error)

	// SelectAll restores the full selection.
	SelectAll() error

	// ConstrainAll fixes a degree of freedom ("ALL", "TEMP", "AZ", ...)
	// to value on every selected node.
	ConstrainAll(dof string, value float64) error

	// ApplyNodalForce applies a force component (FX/FY/FZ) to every
	// selected node.
	ApplyNodalForce(dof string, value float64) error

	// ApplySurfaceLoad applies a surface load (HFLUX, ...) over the faces
	// of the selected nodes.
	ApplySurfaceLoad(label string, value float64) error

	// ApplyBodyLoad applies a body load (JS current density, ...) over
	// all elements.
	ApplyBodyLoad(label string, value float64) error

	// SetAnalysisType selects the solve mode.
	SetAnalysisType(t AnalysisType) error

	// SetModalOptions requests numModes eigenpairs in [freqMin, freqMax].
	// Only meaningful for AnalysisModal.
	SetModalOptions(numModes int, freqMin, freqMax float64) error

	// Solve runs the blocking solve. It is the long call of a run; the
	// context covers only setup and teardown of the request, the backend
	// offers no mid-solve cancellation.
	Solve(ctx context.Context) error

	// UseLastResult positions postprocessing on the final result set.
	UseLastResult() error

	// UseResultSet positions postprocessing on one load step / substep
	// (mode number for modal results).
	UseResultSet(loadStep, subStep int) error

	// NodalField returns the queried field value per node, in node
	// creation order.
	NodalField(q FieldQuery) ([]float64, error)

	// ModeFrequency returns the natural frequency of a 1-based mode.
	// Returns ErrModeUnavailable when the solve did not converge that
	// mode; partial modal convergence is routine, not fatal.
	ModeFrequency(mode int) (float64, error)

	// PlotNodal issues a contour plot command for the queried field on
	// the current result set.
	PlotNodal(q FieldQuery) error

	// PlotDeformedShape issues a deformed-shape plot command.
	PlotDeformedShape() error

	// PlotMesh issues a mesh-only view plot command.
	PlotMesh() error

	// ExportRaster renders the last plot command to a raster file.
	ExportRaster(path string) error

	// NodeCount and ElementCount report current model topology sizes.
	NodeCount() (int, error)
	ElementCount() (int, error)

	// Close releases the session. Safe to call once per session; the
	// sweep driver guarantees it runs regardless of sweep outcome.
	Close() error
}

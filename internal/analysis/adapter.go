package analysis

import (
	"fesweep/internal/artifact"
	"fesweep/internal/mesh"
	"fesweep/internal/solver"
)

// Placement locates the supported and loaded faces of the model by
// coordinate. Selection is a tolerance band [value-tol, value+tol];
// exact-equality selection drops nodes to floating-point jitter and was
// the observed silent-failure mode in ad hoc use.
type Placement struct {
	SupportAxis solver.Axis
	SupportAt   float64
	LoadAxis    solver.Axis
	LoadAt      float64
	Tolerance   float64
}

// DefaultPlacement matches the reference model: supported at z=0,
// loaded at z=0.05, 1 mm selection tolerance.
func DefaultPlacement() Placement {
	return Placement{
		SupportAxis: solver.AxisZ,
		SupportAt:   0,
		LoadAxis:    solver.AxisZ,
		LoadAt:      0.05,
		Tolerance:   1e-3,
	}
}

// selectBand selects the nodes within tolerance of value on axis and
// fails setup when the band is empty.
func (p Placement) selectBand(s solver.Session, axis solver.Axis, value float64, stage string) error {
	n, err := s.SelectNodesByLocation(axis, value-p.Tolerance, value+p.Tolerance)
	if err != nil {
		return solver.WrapSetup(stage, err)
	}
	if n == 0 {
		return solver.Setupf(stage, "no nodes within %g of %s=%g", p.Tolerance, axis, value)
	}
	return nil
}

// Adapter is the per-kind capability set the sweep driver dispatches
// through. Implementations are stateless with respect to the sweep; all
// run state lives in the solver session.
type Adapter interface {
	// Descriptor returns the static catalog entry.
	Descriptor() Descriptor

	// ElementKind is the element technology this kind meshes with.
	ElementKind() solver.ElementKind

	// PrepareRun rebuilds the full run context for one parameter value:
	// mesh materialization, material assignment, boundary conditions,
	// and the parameterized load. Any rejected command or degenerate
	// selection returns a *solver.SetupError.
	PrepareRun(s solver.Session, m *mesh.Data, mat MaterialProfile, param float64) error

	// ExtractResults queries the solved session and computes the scalar
	// metrics of one run. For modal analysis unresolved modes are NaN
	// entries, not errors.
	ExtractResults(s solver.Session, m *mesh.Data, param float64) (map[string]float64, error)

	// ArtifactChannels lists the visualization channels of this kind.
	// detail adds the expensive first/last-run channels (components,
	// principal values, deformed shape, mesh view).
	ArtifactChannels(detail bool) []artifact.Channel
}

// propCmd binds a backend material property label to a profile key.
type propCmd struct {
	label string
	key   string
}

func applyMaterial(s solver.Session, mat MaterialProfile, cmds []propCmd) error {
	for _, c := range cmds {
		v, ok := mat[c.key]
		if !ok {
			return solver.Setupf("material assignment", "profile missing %q", c.key)
		}
		if err := s.SetMaterialProperty(c.label, v); err != nil {
			return solver.WrapSetup("material assignment", err)
		}
	}
	return nil
}

// contourChannel builds a channel that positions on the last result set
// and issues a nodal contour plot.
func contourChannel(name string, q solver.FieldQuery) artifact.Channel {
	return artifact.Channel{
		Name: name,
		Render: func(s solver.Session) error {
			if err := s.UseLastResult(); err != nil {
				return err
			}
			return s.PlotNodal(q)
		},
	}
}

func meshChannel() artifact.Channel {
	return artifact.Channel{
		Name:   "mesh",
		Render: func(s solver.Session) error { return s.PlotMesh() },
	}
}

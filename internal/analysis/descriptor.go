// Package analysis catalogs the supported analysis kinds and implements
// one adapter per kind. An adapter owns everything kind-specific: the
// element technology, material property commands, boundary conditions,
// the parameterized load, result extraction, and artifact channels. The
// sweep driver stays generic and only dispatches through the registry.
package analysis

// Kind identifies an analysis kind.
type Kind string

const (
	KindStructural    Kind = "structural"
	KindThermal       Kind = "thermal"
	KindModal         Kind = "modal"
	KindMagnetostatic Kind = "magnetostatic"
)

// PropertySpec describes one required material property.
type PropertySpec struct {
	Name    string  // display name, e.g. "Young's Modulus"
	Unit    string  // e.g. "Pa"
	Default float64
}

// Range is a default parameter range for a kind.
type Range struct {
	Min   float64
	Max   float64
	Steps int
}

// Descriptor is the static catalog entry for one analysis kind:
// parameter semantics, default range, and the material property schema a
// profile is validated against.
type Descriptor struct {
	Kind          Kind
	Title         string
	ParameterName string
	ParameterUnit string
	// ParameterKey is the column key of the swept parameter in reports.
	ParameterKey   string
	DefaultRange   Range
	MaterialSchema map[string]PropertySpec

	// PrimaryMetric is the headline result plotted against the
	// parameter; OverlayMetrics are the additional series of the
	// multi-metric comparison plot.
	PrimaryMetric  string
	OverlayMetrics []string
}

package analysis

import (
	"fmt"
	"sort"
	"strings"
)

// MaterialProfile maps property keys to numeric values. Constructed once
// per sweep and read-only afterwards.
type MaterialProfile map[string]float64

// DefaultMaterial builds a profile from the schema defaults.
func DefaultMaterial(d Descriptor) MaterialProfile {
	m := make(MaterialProfile, len(d.MaterialSchema))
	for key, spec := range d.MaterialSchema {
		m[key] = spec.Default
	}
	return m
}

// ValidateMaterial checks that the profile covers every key the
// descriptor's schema requires. Extra keys are permitted.
func ValidateMaterial(d Descriptor, m MaterialProfile) error {
	var missing []string
	for key := range d.MaterialSchema {
		if _, ok := m[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("material profile for %s analysis missing required properties: %s",
			d.Kind, strings.Join(missing, ", "))
	}
	return nil
}

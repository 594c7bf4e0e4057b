package analysis

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRegistryLookup(t *testing.T) {
	r := DefaultRegistry(DefaultPlacement())
	for _, kind := range []Kind{KindStructural, KindThermal, KindModal, KindMagnetostatic} {
		a, err := r.Lookup(kind)
		if err != nil {
			t.Fatalf("Lookup(%s) error = %v", kind, err)
		}
		if got := a.Descriptor().Kind; got != kind {
			t.Fatalf("Lookup(%s) returned descriptor kind %s", kind, got)
		}
	}

	if _, err := r.Lookup("acoustic"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("Lookup(acoustic) error = %v, want ErrUnknownKind", err)
	}
}

func TestRegistryKindsSorted(t *testing.T) {
	r := DefaultRegistry(DefaultPlacement())
	want := []Kind{KindMagnetostatic, KindModal, KindStructural, KindThermal}
	if diff := cmp.Diff(want, r.Kinds()); diff != "" {
		t.Fatalf("Kinds() mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateMaterial(t *testing.T) {
	d := NewStructural(DefaultPlacement()).Descriptor()

	if err := ValidateMaterial(d, DefaultMaterial(d)); err != nil {
		t.Fatalf("ValidateMaterial() with defaults error = %v", err)
	}

	m := DefaultMaterial(d)
	delete(m, "youngs_modulus")
	delete(m, "density")
	err := ValidateMaterial(d, m)
	if err == nil {
		t.Fatal("ValidateMaterial() with missing keys succeeded, want error")
	}
	if msg := err.Error(); !strings.Contains(msg, "density, youngs_modulus") {
		t.Fatalf("ValidateMaterial() error = %q, want sorted missing keys", msg)
	}

	m = DefaultMaterial(d)
	m["thermal_conductivity"] = 400
	if err := ValidateMaterial(d, m); err != nil {
		t.Fatalf("ValidateMaterial() with extra key error = %v", err)
	}
}

package analysis

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownKind reports a lookup for an unregistered analysis kind.
// Fatal: raised before any sweep work begins.
var ErrUnknownKind = errors.New("unknown analysis kind")

// Registry maps analysis kinds to their adapters. It is constructed
// once at startup and passed by reference into the sweep driver; there
// is deliberately no package-level ambient registry.
type Registry struct {
	mu       sync.RWMutex
	adapters map[Kind]Adapter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[Kind]Adapter)}
}

// Register inserts or overwrites the adapter for its kind.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Descriptor().Kind] = a
}

// Lookup returns the adapter for a kind, or ErrUnknownKind.
func (r *Registry) Lookup(kind Kind) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return a, nil
}

// Kinds lists registered kinds in sorted order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Kind, 0, len(r.adapters))
	for k := range r.adapters {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DefaultRegistry registers the four built-in analysis kinds with a
// shared face placement.
func DefaultRegistry(p Placement) *Registry {
	r := NewRegistry()
	r.Register(NewStructural(p))
	r.Register(NewThermal(p))
	r.Register(NewModal(p))
	r.Register(NewMagnetostatic(p))
	return r
}

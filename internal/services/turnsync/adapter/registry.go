package adapter

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/louisbranch/turnsync/internal/services/turnsync/domain"
)

var (
	// ErrAdapterRequired indicates a nil adapter registration.
	ErrAdapterRequired = errors.New("adapter is required")
	// ErrVariantRequired indicates an adapter without a variant.
	ErrVariantRequired = errors.New("adapter variant is required")
	// ErrAlreadyRegistered indicates a duplicate variant registration.
	ErrAlreadyRegistered = errors.New("adapter already registered")
	// ErrNotRegistered indicates a lookup for an unknown variant.
	ErrNotRegistered = errors.New("adapter is not registered")
)

// Registry maps variants to their adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[domain.Variant]Adapter
}

// NewRegistry creates a registry seeded with the given adapters.
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	r := &Registry{adapters: make(map[domain.Variant]Adapter)}
	for _, a := range adapters {
		if err := r.Register(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds an adapter.
func (r *Registry) Register(a Adapter) error {
	if a == nil {
		return ErrAdapterRequired
	}
	variant := a.Variant()
	if variant == "" {
		return ErrVariantRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[variant]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, variant)
	}
	r.adapters[variant] = a
	return nil
}

// Get returns the adapter for variant.
func (r *Registry) Get(variant domain.Variant) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[variant]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, variant)
	}
	return a, nil
}

// Variants lists registered variants in sorted order.
func (r *Registry) Variants() []domain.Variant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Variant, 0, len(r.adapters))
	for v := range r.adapters {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Package idregistry maps opaque identifiers to values with O(1) lookup.
//
// A registry either generates identifiers itself (the default, using a
// per-registry counter or a supplied Generator) or requires callers to pass
// explicit ones. Either way it never overwrites an existing entry.
package idregistry

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidIdentifier is returned for an empty string ID, a non-finite
	// number ID, or None where an ID is required.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrDuplicateIdentifier is returned when an ID is already registered.
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
)

type options struct {
	explicit  bool
	generator Generator
}

// Option configures a Registry.
type Option func(*options)

// WithExplicitIDs disables auto-generation. Every Set call must then supply
// a valid ID.
func WithExplicitIDs() Option {
	return func(o *options) {
		o.explicit = true
	}
}

// WithGenerator replaces the default counter.
func WithGenerator(g Generator) Option {
	return func(o *options) {
		o.generator = g
	}
}

// Registry maps IDs to values.
type Registry[V any] struct {
	items     map[ID]V
	explicit  bool
	generator Generator
}

// New creates a registry.
func New[V any](opts ...Option) *Registry[V] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.generator == nil {
		o.generator = Sequential()
	}
	return &Registry[V]{
		items:     make(map[ID]V),
		explicit:  o.explicit,
		generator: o.generator,
	}
}

// AutoGenerates reports whether the registry ignores explicit IDs.
func (r *Registry[V]) AutoGenerates() bool {
	return !r.explicit
}

// resolveID applies the ID policy without registering anything.
func (r *Registry[V]) resolveID(explicit ID) (ID, error) {
	candidate := explicit
	if !r.explicit {
		candidate = r.generator.Next()
	}

	id, ok := normalize(candidate)
	if !ok {
		return None, fmt.Errorf("idregistry: %w: %v", ErrInvalidIdentifier, candidate)
	}
	if _, exists := r.items[id]; exists {
		return None, fmt.Errorf("idregistry: %w: %v", ErrDuplicateIdentifier, id)
	}
	return id, nil
}

// Set registers v and returns the ID it was stored under. With
// auto-generation enabled the explicit ID is ignored.
func (r *Registry[V]) Set(explicit ID, v V) (ID, error) {
	id, err := r.resolveID(explicit)
	if err != nil {
		return None, err
	}
	r.items[id] = v
	return id, nil
}

// Get returns the value stored under id.
func (r *Registry[V]) Get(id ID) (V, bool) {
	v, ok := r.items[id]
	return v, ok
}

// Has reports whether id is registered.
func (r *Registry[V]) Has(id ID) bool {
	_, ok := r.items[id]
	return ok
}

// Remove deletes id. Removing an unknown ID is a no-op.
func (r *Registry[V]) Remove(id ID) {
	delete(r.items, id)
}

// Len returns the number of registered IDs.
func (r *Registry[V]) Len() int {
	return len(r.items)
}

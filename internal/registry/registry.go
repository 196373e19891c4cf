// Package registry provides name-to-factory lookup for pluggable
// benchmark components. A registry resolves specs into concrete typed
// instances; ad-hoc instance specs resolve without being registered.
package registry

import (
	"fmt"
	"sync"

	"github.com/echobench/echobench/internal/domain"
	apperrors "github.com/echobench/echobench/internal/pkg/errors"
)

// Factory constructs a component from its spec options.
type Factory[T any] func(options map[string]any) (T, error)

// Registry maps component names to factories for one component kind.
// Registration is validated; resolution is safe for concurrent use.
type Registry[T any] struct {
	kind string

	mu        sync.RWMutex
	factories map[string]Factory[T]
	names     []string
}

// New creates an empty registry for the given component kind. The kind is
// only used in error messages ("model", "metric").
func New[T any](kind string) *Registry[T] {
	return &Registry[T]{
		kind:      kind,
		factories: make(map[string]Factory[T]),
	}
}

// Register adds a named factory. Empty names and duplicates are rejected.
func (r *Registry[T]) Register(name string, factory Factory[T]) error {
	if name == "" {
		return apperrors.Validation(fmt.Sprintf("%s name is required", r.kind))
	}
	if factory == nil {
		return apperrors.Validation(fmt.Sprintf("%s %q: factory is required", r.kind, name))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		return apperrors.Validation(fmt.Sprintf("%s %q already registered", r.kind, name))
	}
	r.factories[name] = factory
	r.names = append(r.names, name)
	return nil
}

// MustRegister is Register for package init blocks.
func (r *Registry[T]) MustRegister(name string, factory Factory[T]) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Resolve turns a spec into a concrete instance. An instance-bearing spec
// resolves to its instance directly without touching the registry's stored
// contents; a named spec invokes the registered factory with the spec's
// options. An unregistered name fails with an unknown-spec error.
func (r *Registry[T]) Resolve(spec domain.Spec) (T, error) {
	var zero T
	if spec.Instance != nil {
		instance, ok := spec.Instance.(T)
		if !ok {
			return zero, apperrors.Validation(fmt.Sprintf(
				"%s %q: instance has wrong type %T", r.kind, spec.Name, spec.Instance))
		}
		return instance, nil
	}
	if spec.Name == "" {
		return zero, apperrors.Validation(fmt.Sprintf("%s spec has no name", r.kind))
	}

	r.mu.RLock()
	factory, ok := r.factories[spec.Name]
	r.mu.RUnlock()
	if !ok {
		return zero, apperrors.UnknownSpec(r.kind, spec.Name)
	}

	instance, err := factory(spec.Options)
	if err != nil {
		return zero, fmt.Errorf("building %s %q: %w", r.kind, spec.Name, err)
	}
	return instance, nil
}

// Has reports whether a name is registered.
func (r *Registry[T]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered names in registration order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.names...)
}

// Package model defines the generative model capability consumed by the
// benchmark engine, plus the built-in baseline models. A model instance is
// stateful: fitting mutates it, so instances must never be shared across
// concurrent tasks. Factories produce a fresh instance per task.
package model

import (
	"context"

	"github.com/echobench/echobench/internal/domain"
	"github.com/echobench/echobench/internal/registry"
)

// Model is the capability the engine needs from a generative sequence
// model: learn the sequences of a role-annotated table, then produce a
// synthetic table with the requested number of entities.
type Model interface {
	Fit(ctx context.Context, table *domain.Table, roles domain.Roles) error
	Sample(ctx context.Context, entities int) (*domain.Table, error)
}

// Default is the discoverable catalog of built-in models.
var Default = registry.New[Model]("model")

func init() {
	Default.MustRegister("identity", func(options map[string]any) (Model, error) {
		return NewIdentity(), nil
	})
	Default.MustRegister("uniform", func(options map[string]any) (Model, error) {
		return NewUniform(optSeed(options)), nil
	})
	Default.MustRegister("gaussian", func(options map[string]any) (Model, error) {
		return NewGaussian(optSeed(options)), nil
	})
}

// optSeed reads an integer "seed" option. Options decoded from JSON carry
// numbers as float64.
func optSeed(options map[string]any) int64 {
	v, ok := options["seed"]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}

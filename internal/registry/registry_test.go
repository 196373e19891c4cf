package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echobench/echobench/internal/domain"
	apperrors "github.com/echobench/echobench/internal/pkg/errors"
)

type greeter interface {
	Greet() string
}

type staticGreeter struct {
	msg string
}

func (g *staticGreeter) Greet() string { return g.msg }

func TestRegistryRegister(t *testing.T) {
	r := New[greeter]("greeter")

	require.NoError(t, r.Register("hello", func(options map[string]any) (greeter, error) {
		return &staticGreeter{msg: "hello"}, nil
	}))

	err := r.Register("hello", func(options map[string]any) (greeter, error) {
		return nil, nil
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	assert.True(t, apperrors.IsValidation(r.Register("", func(options map[string]any) (greeter, error) {
		return nil, nil
	})))
	assert.True(t, apperrors.IsValidation(r.Register("nil-factory", nil)))
}

func TestRegistryResolveByName(t *testing.T) {
	r := New[greeter]("greeter")
	var gotOptions map[string]any
	require.NoError(t, r.Register("echo", func(options map[string]any) (greeter, error) {
		gotOptions = options
		return &staticGreeter{msg: "echo"}, nil
	}))

	g, err := r.Resolve(domain.WithOptions("echo", map[string]any{"volume": 11}))
	require.NoError(t, err)
	assert.Equal(t, "echo", g.Greet())
	assert.Equal(t, map[string]any{"volume": 11}, gotOptions, "factory receives the spec options")
}

func TestRegistryResolveInstance(t *testing.T) {
	r := New[greeter]("greeter")
	instance := &staticGreeter{msg: "live"}

	g, err := r.Resolve(domain.FromInstance("custom", instance))
	require.NoError(t, err)
	assert.Same(t, instance, g)

	_, err = r.Resolve(domain.FromInstance("wrong", "not a greeter"))
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestRegistryResolveUnknown(t *testing.T) {
	r := New[greeter]("greeter")

	_, err := r.Resolve(domain.ByName("missing"))
	require.Error(t, err)
	assert.True(t, apperrors.IsUnknownSpec(err))
	assert.Contains(t, err.Error(), "missing")

	_, err = r.Resolve(domain.Spec{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestRegistryNames(t *testing.T) {
	r := New[greeter]("greeter")
	for _, name := range []string{"zeta", "alpha", "mid"} {
		msg := name
		require.NoError(t, r.Register(name, func(options map[string]any) (greeter, error) {
			return &staticGreeter{msg: msg}, nil
		}))
	}

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, r.Names(), "registration order")
	assert.True(t, r.Has("alpha"))
	assert.False(t, r.Has("omega"))
}

func TestRegistryMustRegisterPanics(t *testing.T) {
	r := New[greeter]("greeter")
	r.MustRegister("ok", func(options map[string]any) (greeter, error) {
		return &staticGreeter{}, nil
	})
	assert.Panics(t, func() {
		r.MustRegister("ok", func(options map[string]any) (greeter, error) {
			return &staticGreeter{}, nil
		})
	})
}

package domain

import (
	"encoding/json"
	"fmt"
)

// Spec is the normalized reference to a pluggable component: a registered
// name plus construction options, or a live instance for in-process use.
// Instances never cross a process boundary, so they are excluded from the
// wire form.
type Spec struct {
	Name    string         `json:"name"`
	Options map[string]any `json:"options,omitempty"`
	Instance any           `json:"-"`
}

// ByName references a registered component by name.
func ByName(name string) Spec {
	return Spec{Name: name}
}

// WithOptions references a registered component by name with factory
// options.
func WithOptions(name string, options map[string]any) Spec {
	return Spec{Name: name, Options: options}
}

// FromInstance wraps a live component instance. The name is used for
// reporting only; resolution returns the instance directly.
func FromInstance(name string, instance any) Spec {
	return Spec{Name: name, Instance: instance}
}

// Transportable reports whether the spec can be shipped to another
// process. Instance-bearing specs cannot.
func (s Spec) Transportable() bool {
	return s.Instance == nil
}

// Key returns the structural identity of the spec, used for matrix
// deduplication. encoding/json sorts map keys, so option order does not
// affect the key. Two specs wrapping the same live instance share a key.
func (s Spec) Key() string {
	if s.Instance != nil {
		return fmt.Sprintf("%s|inst:%p", s.Name, s.Instance)
	}
	if len(s.Options) == 0 {
		return s.Name
	}
	opts, err := json.Marshal(s.Options)
	if err != nil {
		return fmt.Sprintf("%s|%v", s.Name, s.Options)
	}
	return s.Name + "|" + string(opts)
}

// SpecsFromNames builds plain name specs from a name list.
func SpecsFromNames(names []string) []Spec {
	specs := make([]Spec, len(names))
	for i, name := range names {
		specs[i] = ByName(name)
	}
	return specs
}

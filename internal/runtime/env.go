package runtime

import (
	"sort"

	"github.com/samber/lo"
)

// Environment represents a variable scope with a parent chain. A child
// holds a plain pointer to its parent and never owns it.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a new environment with an optional parent scope.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Define binds name in this scope, shadowing any outer binding.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Get looks up a variable by walking the scope chain.
func (e *Environment) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if val, exists := env.values[name]; exists {
			return val, true
		}
	}
	return nil, false
}

// Assign rebinds name in the nearest scope that defines it and reports
// whether such a scope exists.
func (e *Environment) Assign(name string, value Value) bool {
	for env := e; env != nil; env = env.parent {
		if _, exists := env.values[name]; exists {
			env.values[name] = value
			return true
		}
	}
	return false
}

// Set assigns to an existing binding, or creates name in this scope when
// no enclosing scope binds it.
func (e *Environment) Set(name string, value Value) {
	if !e.Assign(name, value) {
		e.Define(name, value)
	}
}

// Names returns the names bound directly in this scope, sorted.
func (e *Environment) Names() []string {
	names := lo.Keys(e.values)
	sort.Strings(names)
	return names
}

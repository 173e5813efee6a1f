package runtime

import "sort"

// Environment is the global table plus a stack of local scopes. Lookups walk
// the whole stack innermost first, then the globals; writes go to the
// innermost scope, or the globals when no scope is active.
type Environment struct {
	globals map[string]Value
	scopes  []map[string]Value
}

func NewEnvironment() *Environment {
	return &Environment{globals: make(map[string]Value)}
}

func (e *Environment) Get(name string) (Value, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if v, ok := e.scopes[i][name]; ok {
			return v, true
		}
	}
	v, ok := e.globals[name]
	return v, ok
}

// Set binds name in the innermost scope. It never updates a binding in an
// outer scope; a name found further out is shadowed instead.
func (e *Environment) Set(name string, v Value) {
	if n := len(e.scopes); n > 0 {
		e.scopes[n-1][name] = v
		return
	}
	e.globals[name] = v
}

// SetGlobal binds name in the global table regardless of active scopes.
func (e *Environment) SetGlobal(name string, v Value) {
	e.globals[name] = v
}

// Global looks name up in the global table only.
func (e *Environment) Global(name string) (Value, bool) {
	v, ok := e.globals[name]
	return v, ok
}

func (e *Environment) Push() {
	e.scopes = append(e.scopes, make(map[string]Value))
}

func (e *Environment) Pop() {
	if n := len(e.scopes); n > 0 {
		e.scopes[n-1] = nil
		e.scopes = e.scopes[:n-1]
	}
}

// Depth is the number of active local scopes.
func (e *Environment) Depth() int {
	return len(e.scopes)
}

// Detach removes every active local scope and returns them so they can be
// reinstated with Restore. Used to run a function body with only the globals
// visible.
func (e *Environment) Detach() []map[string]Value {
	saved := e.scopes
	e.scopes = nil
	return saved
}

func (e *Environment) Restore(saved []map[string]Value) {
	e.scopes = saved
}

// GlobalNames returns the global bindings in sorted order.
func (e *Environment) GlobalNames() []string {
	names := make([]string, 0, len(e.globals))
	for k := range e.globals {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

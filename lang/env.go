package lang

import (
	"maps"
	"slices"
)

// Environment resolves variable names to values during evaluation.
//
// Implementations must be safe for concurrent reads when a parsed
// expression is evaluated from several goroutines against the same
// environment.
type Environment interface {
	// Lookup returns the value bound to name.
	Lookup(name string) (Value, bool)
	// Contains reports whether name is bound.
	Contains(name string) bool
	// Snapshot returns every visible binding. The caller owns the map.
	Snapshot() map[string]Value
}

// Names returns the sorted names visible in env.
func Names(env Environment) []string {
	if env == nil {
		return nil
	}

	return slices.Sorted(maps.Keys(env.Snapshot()))
}

// Map is a flat environment owning its bindings.
// It is not safe to mutate a Map while it is being used for evaluation.
type Map struct {
	vars map[string]Value
}

// NewMap returns a Map holding a copy of vars.
func NewMap(vars map[string]Value) *Map {
	m := &Map{vars: make(map[string]Value, len(vars))}
	maps.Copy(m.vars, vars)

	return m
}

// Set binds name to v, replacing any previous binding.
func (m *Map) Set(name string, v Value) *Map {
	if m.vars == nil {
		m.vars = make(map[string]Value)
	}

	m.vars[name] = v

	return m
}

// SetFunc binds name to a new built-in function called name.
func (m *Map) SetFunc(name string, call Callable) *Map {
	return m.Set(name, Func(name, call))
}

// Delete removes the binding for name.
func (m *Map) Delete(name string) { delete(m.vars, name) }

// Len returns the number of bindings.
func (m *Map) Len() int { return len(m.vars) }

// Lookup implements [Environment].
func (m *Map) Lookup(name string) (Value, bool) {
	v, ok := m.vars[name]

	return v, ok
}

// Contains implements [Environment].
func (m *Map) Contains(name string) bool {
	_, ok := m.vars[name]

	return ok
}

// Snapshot implements [Environment].
func (m *Map) Snapshot() map[string]Value { return maps.Clone(m.vars) }

// Scope is a chained environment: local bindings shadow those of its
// parent. A Scope holds a plain reference to its parent and must not be
// used after the parent is discarded.
type Scope struct {
	parent Environment
	local  map[string]Value
}

// NewScope returns an empty Scope chained to parent, which may be nil.
func NewScope(parent Environment) *Scope {
	return &Scope{parent: parent, local: make(map[string]Value)}
}

// Bind sets name in the local bindings of s.
func (s *Scope) Bind(name string, v Value) { s.local[name] = v }

// Parent returns the environment s is chained to.
func (s *Scope) Parent() Environment { return s.parent }

// Lookup implements [Environment]. The innermost binding wins.
func (s *Scope) Lookup(name string) (Value, bool) {
	if v, ok := s.local[name]; ok {
		return v, true
	}

	if s.parent == nil {
		return Value{}, false
	}

	return s.parent.Lookup(name)
}

// Contains implements [Environment].
func (s *Scope) Contains(name string) bool {
	if _, ok := s.local[name]; ok {
		return true
	}

	return s.parent != nil && s.parent.Contains(name)
}

// Snapshot implements [Environment].
func (s *Scope) Snapshot() map[string]Value {
	var snap map[string]Value
	if s.parent != nil {
		snap = s.parent.Snapshot()
	}

	if snap == nil {
		snap = make(map[string]Value, len(s.local))
	}

	maps.Copy(snap, s.local)

	return snap
}

// Layered composes environments in priority order: the first environment
// binding a name wins. Nil entries are skipped.
type Layered []Environment

// Layer returns the composition of envs in priority order.
func Layer(envs ...Environment) Layered {
	return slices.DeleteFunc(slices.Clone(envs), func(e Environment) bool {
		return e == nil
	})
}

// Lookup implements [Environment].
func (l Layered) Lookup(name string) (Value, bool) {
	for _, e := range l {
		if v, ok := e.Lookup(name); ok {
			return v, true
		}
	}

	return Value{}, false
}

// Contains implements [Environment].
func (l Layered) Contains(name string) bool {
	return slices.ContainsFunc(l, func(e Environment) bool {
		return e.Contains(name)
	})
}

// Snapshot implements [Environment].
func (l Layered) Snapshot() map[string]Value {
	snap := make(map[string]Value)

	for _, e := range slices.Backward(l) {
		maps.Copy(snap, e.Snapshot())
	}

	return snap
}

package sandbox

import "reflect"

// CallableTable maps statically-discovered names to live callable
// references. A name present with an invalid reflect.Value was declared
// in the snippet but did not resolve to a callable at evaluation time.
// The table is built once per run and discarded with it.
type CallableTable struct {
	names []string
	funcs map[string]reflect.Value
}

// NewCallableTable creates an empty table.
func NewCallableTable() *CallableTable {
	return &CallableTable{funcs: make(map[string]reflect.Value)}
}

// Add records a probe outcome. Declaration order is preserved.
func (t *CallableTable) Add(name string, fn reflect.Value) {
	if _, exists := t.funcs[name]; !exists {
		t.names = append(t.names, name)
	}
	t.funcs[name] = fn
}

// Names returns probed names in declaration order.
func (t *CallableTable) Names() []string {
	return t.names
}

// Lookup returns the live reference for a name. The second return is
// false when the name was never probed or did not resolve to a callable.
func (t *CallableTable) Lookup(name string) (reflect.Value, bool) {
	fn, ok := t.funcs[name]
	if !ok || !fn.IsValid() || fn.Kind() != reflect.Func {
		return reflect.Value{}, false
	}
	return fn, true
}

// IsCallable reports whether a name resolved to a live callable.
func (t *CallableTable) IsCallable(name string) bool {
	_, ok := t.Lookup(name)
	return ok
}

// CallableCount returns the number of names that resolved to callables.
func (t *CallableTable) CallableCount() int {
	n := 0
	for _, name := range t.names {
		if t.IsCallable(name) {
			n++
		}
	}
	return n
}

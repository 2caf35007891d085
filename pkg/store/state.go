package store

import (
	"encoding/json"
	"sort"
)

// State is an immutable snapshot of the merged state tree. A dispatch never
// modifies a State that was already handed out; it produces a new one.
type State struct {
	slices  map[string]any
	version uint64
}

// Version increases by one with every applied dispatch. Listeners may run
// out of dispatch order, so consumers that care about ordering compare it.
func (s State) Version() uint64 {
	return s.version
}

// Slice returns the raw state of the named slice.
func (s State) Slice(name string) (any, bool) {
	v, ok := s.slices[name]
	return v, ok
}

// Has reports whether the named slice is present in the tree.
func (s State) Has(name string) bool {
	_, ok := s.slices[name]
	return ok
}

// Names returns the slice names in lexical order.
func (s State) Names() []string {
	names := make([]string, 0, len(s.slices))
	for name := range s.slices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of slices in the tree.
func (s State) Len() int {
	return len(s.slices)
}

// MarshalJSON writes the tree as an object keyed by slice name.
func (s State) MarshalJSON() ([]byte, error) {
	if s.slices == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.slices)
}

func (s State) with(name string, value any) State {
	next := make(map[string]any, len(s.slices)+1)
	for k, v := range s.slices {
		next[k] = v
	}
	next[name] = value
	return State{slices: next, version: s.version}
}

// SliceOf returns the named slice as T. A missing slice or a slice of a
// different type yields the zero value and false, so selectors can fall back
// to safe defaults instead of failing.
func SliceOf[T any](s State, name string) (T, bool) {
	var zero T
	v, ok := s.slices[name]
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// StateOf builds a State from raw slices. Intended for tests and selectors
// exercised without a live store.
func StateOf(slices map[string]any) State {
	next := make(map[string]any, len(slices))
	for k, v := range slices {
		next[k] = v
	}
	return State{slices: next}
}

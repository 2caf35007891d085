package store

import (
	"reflect"
	"sort"
	"sync"

	"docworkspace/internal/pkg/logger"
)

// Module is a feature that owns one or more slices. Mount is called every
// time the feature is attached; it must only call Register, which makes
// repeated mounts harmless.
type Module interface {
	Name() string
	Mount(r *Registry)
}

type registration struct {
	initial any
	reduce  ReduceFunc
}

// Registry lazily attaches slices to a Store. It is passed by reference to
// every feature module at initialisation.
type Registry struct {
	mu      sync.Mutex
	store   *Store
	entries map[string]registration
	logger  logger.ILogger
}

func NewRegistry(st *Store, log logger.ILogger) *Registry {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Registry{
		store:   st,
		entries: make(map[string]registration),
		logger:  log,
	}
}

// Register attaches the slice name with its initial state and reducer. The
// first registration of a name seeds the slice and replaces the store's
// reducer table once; it returns true. Re-registering with the same reducer is
// a no-op. Re-registering with a different reducer installs the new reducer,
// keeps the slice's current state and logs a warning.
func (r *Registry) Register(name string, initial any, reduce ReduceFunc) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[name]; ok {
		if sameReducer(existing.reduce, reduce) {
			return false
		}
		r.logger.Warn("Registry", "Slice re-registered with a different reducer, last registration wins", map[string]interface{}{
			"slice": name,
		})
		r.entries[name] = registration{initial: existing.initial, reduce: reduce}
		r.store.ReplaceReducer(r.table(), nil)
		return false
	}

	r.entries[name] = registration{initial: initial, reduce: reduce}
	r.store.ReplaceReducer(r.table(), map[string]any{name: initial})
	r.logger.Debug("Registry", "Slice registered", map[string]interface{}{
		"slice": name,
		"count": len(r.entries),
	})
	return true
}

// Mount attaches every module. Safe to call on each feature mount.
func (r *Registry) Mount(modules ...Module) {
	for _, m := range modules {
		m.Mount(r)
	}
}

func (r *Registry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[name]
	return ok
}

// Names returns the registered slice names in lexical order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Store returns the store the registry attaches slices to.
func (r *Registry) Store() *Store {
	return r.store
}

func (r *Registry) table() map[string]ReduceFunc {
	t := make(map[string]ReduceFunc, len(r.entries))
	for name, e := range r.entries {
		t[name] = e.reduce
	}
	return t
}

// sameReducer compares reducers by code identity.
func sameReducer(a, b ReduceFunc) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

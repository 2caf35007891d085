package store

import (
	"sync"

	"docworkspace/internal/pkg/logger"
)

// Listener is called after every applied action with the resulting state.
type Listener func(action Action, state State)

// Store is the shared state container. Dispatches are applied one at a time,
// in arrival order; reducers never interleave.
type Store struct {
	mu           sync.RWMutex
	reducers     map[string]ReduceFunc
	state        State
	replacements int

	lmu       sync.Mutex
	listeners map[uint64]Listener
	nextID    uint64

	logger logger.ILogger
}

type Option func(*Store)

// WithLogger sets the logger used for routing diagnostics.
func WithLogger(l logger.ILogger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		reducers:  make(map[string]ReduceFunc),
		state:     State{slices: map[string]any{}},
		listeners: make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.NewNopLogger()
	}
	return s
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch applies action to its slice.
func (s *Store) Dispatch(action Action) {
	s.DispatchIf(nil, action)
}

// DispatchIf evaluates cond against the current state and, only if it holds,
// applies action, all within one exclusive tick. It reports whether the
// condition held. A nil cond always holds.
func (s *Store) DispatchIf(cond func(State) bool, action Action) bool {
	next, ok, applied := s.reduce(cond, action)
	if applied {
		s.notify(action, next)
	}
	return ok
}

func (s *Store) reduce(cond func(State) bool, action Action) (State, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cond != nil && !cond(s.state) {
		return s.state, false, false
	}

	name := action.Slice()
	reduce, ok := s.reducers[name]
	if !ok {
		s.logger.Debug("Store", "Action for unregistered slice ignored", map[string]interface{}{
			"action": action.Type(),
			"slice":  name,
		})
		return s.state, true, false
	}

	prev := s.state.slices[name]
	next := s.state.with(name, reduce(prev, action))
	next.version++
	s.state = next
	return s.state, true, true
}

// ReplaceReducer installs a new reducer table. Slices named in seed that are
// not yet present in the tree are initialised with the seeded value; slices
// already present keep their state.
func (s *Store) ReplaceReducer(reducers map[string]ReduceFunc, seed map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := make(map[string]ReduceFunc, len(reducers))
	for name, r := range reducers {
		table[name] = r
	}
	s.reducers = table

	for name, initial := range seed {
		if !s.state.Has(name) {
			s.state = s.state.with(name, initial)
		}
	}
	s.replacements++
}

// Replacements returns how many times the reducer table was replaced.
func (s *Store) Replacements() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.replacements
}

// ReducerCount returns the number of installed slice reducers.
func (s *Store) ReducerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reducers)
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.lmu.Unlock()

	return func() {
		s.lmu.Lock()
		delete(s.listeners, id)
		s.lmu.Unlock()
	}
}

// notify runs outside the dispatch lock so listeners may dispatch. Two
// concurrent dispatches may therefore notify in either order; State.Version
// tells them apart.
func (s *Store) notify(action Action, state State) {
	s.lmu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.lmu.Unlock()

	for _, l := range listeners {
		l(action, state)
	}
}

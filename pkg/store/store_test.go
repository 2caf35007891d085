package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterAction struct {
	code  string
	delta int
}

func (a counterAction) Type() string  { return a.code }
func (a counterAction) Slice() string { return "counter" }

func reduceCounter(state any, action Action) any {
	n, _ := state.(int)
	if a, ok := action.(counterAction); ok {
		return n + a.delta
	}
	return n
}

func reduceCounterTwice(state any, action Action) any {
	n, _ := state.(int)
	if a, ok := action.(counterAction); ok {
		return n + 2*a.delta
	}
	return n
}

func newCounterStore(t *testing.T) (*Store, *Registry) {
	t.Helper()
	st := New()
	reg := NewRegistry(st, nil)
	require.True(t, reg.Register("counter", 0, reduceCounter))
	return st, reg
}

func TestDispatchRoutesToSlice(t *testing.T) {
	st, _ := newCounterStore(t)

	st.Dispatch(counterAction{code: "counter/add", delta: 3})
	st.Dispatch(counterAction{code: "counter/add", delta: 4})

	n, ok := SliceOf[int](st.State(), "counter")
	require.True(t, ok)
	assert.Equal(t, 7, n)
}

func TestDispatchUnregisteredSliceIsIgnored(t *testing.T) {
	st := New()
	calls := 0
	st.Subscribe(func(Action, State) { calls++ })

	st.Dispatch(BaseAction{Code: "ghost/poke", Target: "ghost"})

	assert.False(t, st.State().Has("ghost"))
	assert.Equal(t, 0, calls)
}

func TestSnapshotsAreImmutable(t *testing.T) {
	st, _ := newCounterStore(t)
	before := st.State()

	st.Dispatch(counterAction{code: "counter/add", delta: 1})

	n, _ := SliceOf[int](before, "counter")
	assert.Equal(t, 0, n)
	n, _ = SliceOf[int](st.State(), "counter")
	assert.Equal(t, 1, n)
}

func TestDispatchIf(t *testing.T) {
	st, _ := newCounterStore(t)
	belowTwo := func(s State) bool {
		n, _ := SliceOf[int](s, "counter")
		return n < 2
	}

	assert.True(t, st.DispatchIf(belowTwo, counterAction{code: "counter/add", delta: 2}))
	assert.False(t, st.DispatchIf(belowTwo, counterAction{code: "counter/add", delta: 2}))

	n, _ := SliceOf[int](st.State(), "counter")
	assert.Equal(t, 2, n)
}

func TestConcurrentDispatchesAreSerialised(t *testing.T) {
	st, _ := newCounterStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.Dispatch(counterAction{code: "counter/add", delta: 1})
		}()
	}
	wg.Wait()

	n, _ := SliceOf[int](st.State(), "counter")
	assert.Equal(t, 100, n)
}

func TestVersionsOrderConcurrentNotifications(t *testing.T) {
	st, _ := newCounterStore(t)
	require.Zero(t, st.State().Version())

	var mu sync.Mutex
	seen := map[uint64]int{}
	var latest State
	st.Subscribe(func(_ Action, s State) {
		n, _ := SliceOf[int](s, "counter")
		mu.Lock()
		defer mu.Unlock()
		seen[s.Version()] = n
		if s.Version() > latest.Version() {
			latest = s
		}
	})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.Dispatch(counterAction{code: "counter/add", delta: 1})
		}()
	}
	wg.Wait()

	require.Len(t, seen, 100)
	for v, n := range seen {
		assert.EqualValues(t, v, n, "snapshot %d carries the state of dispatch %d", v, v)
	}
	// Keeping the highest version converges on the final state whatever the
	// notification order was.
	assert.Equal(t, st.State().Version(), latest.Version())
	n, _ := SliceOf[int](latest, "counter")
	assert.Equal(t, 100, n)
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	st, _ := newCounterStore(t)

	var seen []string
	unsubscribe := st.Subscribe(func(a Action, s State) {
		n, _ := SliceOf[int](s, "counter")
		seen = append(seen, a.Type())
		assert.Positive(t, n)
	})

	st.Dispatch(counterAction{code: "counter/add", delta: 1})
	unsubscribe()
	st.Dispatch(counterAction{code: "counter/add", delta: 1})

	assert.Equal(t, []string{"counter/add"}, seen)
}

func TestListenerMayDispatch(t *testing.T) {
	st, _ := newCounterStore(t)

	st.Subscribe(func(a Action, s State) {
		if a.Type() == "counter/add" {
			st.Dispatch(counterAction{code: "counter/echo", delta: 10})
		}
	})
	st.Dispatch(counterAction{code: "counter/add", delta: 1})

	n, _ := SliceOf[int](st.State(), "counter")
	assert.Equal(t, 11, n)
}

func TestSliceOfWrongType(t *testing.T) {
	s := StateOf(map[string]any{"counter": "not a number"})

	n, ok := SliceOf[int](s, "counter")
	assert.False(t, ok)
	assert.Zero(t, n)

	_, ok = SliceOf[int](s, "missing")
	assert.False(t, ok)
}

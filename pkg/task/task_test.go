package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"docworkspace/pkg/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// journal records every lifecycle event it receives, in order.
type journal struct {
	Events []Event
	Prefix string
}

func reduceJournal(state any, action store.Action) any {
	j, _ := state.(journal)
	ev, ok := action.(Event)
	if !ok {
		if a, ok := action.(store.BaseAction); ok {
			j.Prefix = a.Code
		}
		return j
	}
	next := make([]Event, len(j.Events), len(j.Events)+1)
	copy(next, j.Events)
	j.Events = append(next, ev)
	return j
}

func newJournalStore(t *testing.T) *store.Store {
	t.Helper()
	st := store.New()
	store.NewRegistry(st, nil).Register("jobs", journal{}, reduceJournal)
	return st
}

func events(st *store.Store) []Event {
	j, _ := store.SliceOf[journal](st.State(), "jobs")
	return j.Events
}

func phases(evs []Event) []Phase {
	out := make([]Phase, len(evs))
	for i, ev := range evs {
		out[i] = ev.Phase
	}
	return out
}

func TestRunFulfilled(t *testing.T) {
	st := newJournalStore(t)
	tk := New(Definition[string, int]{
		Name:  "jobs/measure",
		Slice: "jobs",
		Payload: func(ctx context.Context, s store.State, in string) (int, error) {
			evs := events(st)
			require.Len(t, evs, 1, "pending must precede the fetch")
			return len(in), nil
		},
	})

	n, err := tk.Run(context.Background(), st, "hello")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	evs := events(st)
	assert.Equal(t, []Phase{PhasePending, PhaseFulfilled}, phases(evs))
	assert.Equal(t, evs[0].RequestID, evs[1].RequestID)
	assert.Equal(t, "jobs/measure/fulfilled", evs[1].Type())
	got, ok := ResultAs[int](evs[1])
	assert.True(t, ok)
	assert.Equal(t, 5, got)
	arg, ok := ArgAs[string](evs[1])
	assert.True(t, ok)
	assert.Equal(t, "hello", arg)
}

func TestRunRejected(t *testing.T) {
	st := newJournalStore(t)
	boom := errors.New("connection refused")
	tk := New(Definition[string, int]{
		Name:  "jobs/fail",
		Slice: "jobs",
		Payload: func(context.Context, store.State, string) (int, error) {
			return 0, boom
		},
	})

	_, err := tk.Run(context.Background(), st, "x")
	require.ErrorIs(t, err, boom)

	evs := events(st)
	require.Equal(t, []Phase{PhasePending, PhaseRejected}, phases(evs))
	assert.ErrorIs(t, evs[1].Err, boom)
	assert.Equal(t, "connection refused", evs[1].ErrorMessage())
}

func TestRunRecoversPanics(t *testing.T) {
	st := newJournalStore(t)
	tk := New(Definition[string, int]{
		Name:  "jobs/panic",
		Slice: "jobs",
		Payload: func(context.Context, store.State, string) (int, error) {
			panic("unexpected payload shape")
		},
	})

	_, err := tk.Run(context.Background(), st, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected payload shape")
	assert.Equal(t, []Phase{PhasePending, PhaseRejected}, phases(events(st)))
}

func TestConditionSkipsWithoutEvents(t *testing.T) {
	st := newJournalStore(t)
	called := false
	tk := New(Definition[string, int]{
		Name:      "jobs/never",
		Slice:     "jobs",
		Condition: func(store.State, string) bool { return false },
		Payload: func(context.Context, store.State, string) (int, error) {
			called = true
			return 0, nil
		},
	})

	_, err := tk.Run(context.Background(), st, "x")
	assert.ErrorIs(t, err, ErrSkipped)
	assert.False(t, called)
	assert.Empty(t, events(st))
}

func TestPayloadSeesStateAtDispatchTime(t *testing.T) {
	st := newJournalStore(t)
	tk := New(Definition[string, string]{
		Name:  "jobs/read",
		Slice: "jobs",
		Payload: func(_ context.Context, s store.State, _ string) (string, error) {
			j, _ := store.SliceOf[journal](s, "jobs")
			return j.Prefix, nil
		},
	})

	// The prefix changes after the caller built its input but before Run.
	input := "ignored"
	st.Dispatch(store.BaseAction{Code: "v2", Target: "jobs"})

	got, err := tk.Run(context.Background(), st, input)
	require.NoError(t, err)
	assert.Equal(t, "v2", got)
}

func TestDedupeCoalescesConcurrentCalls(t *testing.T) {
	st := newJournalStore(t)
	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})

	tk := New(Definition[string, string]{
		Name:      "jobs/shared",
		Slice:     "jobs",
		DedupeKey: func(in string) string { return in },
		Payload: func(context.Context, store.State, string) (string, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				close(started)
			}
			<-release
			return "payload", nil
		},
	})

	var wg sync.WaitGroup
	results := make([]string, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = tk.Run(context.Background(), st, "T1")
	}()
	<-started

	joined := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		close(joined)
		results[1], _ = tk.Run(context.Background(), st, "T1")
	}()
	<-joined
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.Equal(t, []string{"payload", "payload"}, results)
	assert.Equal(t, []Phase{PhasePending, PhaseFulfilled}, phases(events(st)))
}

func TestDistinctKeysRunIndependently(t *testing.T) {
	st := newJournalStore(t)
	var calls int32
	tk := New(Definition[string, string]{
		Name:      "jobs/keyed",
		Slice:     "jobs",
		DedupeKey: func(in string) string { return in },
		Payload: func(_ context.Context, _ store.State, in string) (string, error) {
			atomic.AddInt32(&calls, 1)
			return in, nil
		},
	})

	var wg sync.WaitGroup
	for _, key := range []string{"a", "b", "c"} {
		wg.Add(1)
		go func(k string) {
			defer wg.Done()
			_, _ = tk.Run(context.Background(), st, k)
		}(key)
	}
	wg.Wait()

	assert.EqualValues(t, 3, calls)
	assert.Len(t, events(st), 6)
}

func TestCancelledFetchIsRejected(t *testing.T) {
	st := newJournalStore(t)
	tk := New(Definition[string, string]{
		Name:  "jobs/slow",
		Slice: "jobs",
		Payload: func(ctx context.Context, _ store.State, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := tk.Run(ctx, st, "x")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []Phase{PhasePending, PhaseRejected}, phases(events(st)))
}

func TestLeaderCancelDoesNotFailFollowers(t *testing.T) {
	st := newJournalStore(t)
	started := make(chan struct{})
	release := make(chan struct{})

	tk := New(Definition[string, string]{
		Name:      "jobs/shared",
		Slice:     "jobs",
		DedupeKey: func(in string) string { return in },
		Payload: func(ctx context.Context, _ store.State, _ string) (string, error) {
			close(started)
			select {
			case <-release:
				return "payload", nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		},
	})

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	defer cancelLeader()

	var wg sync.WaitGroup
	var leaderErr, followerErr error
	var followerOut string
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, leaderErr = tk.Run(leaderCtx, st, "T1")
	}()
	<-started

	joined := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		close(joined)
		followerOut, followerErr = tk.Run(context.Background(), st, "T1")
	}()
	<-joined
	time.Sleep(20 * time.Millisecond)

	cancelLeader()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.ErrorIs(t, leaderErr, context.Canceled)
	require.NoError(t, followerErr)
	assert.Equal(t, "payload", followerOut)
	assert.Equal(t, []Phase{PhasePending, PhaseFulfilled}, phases(events(st)))
}

func TestNewRequiresDefinition(t *testing.T) {
	assert.Panics(t, func() {
		New(Definition[string, string]{Name: "x"})
	})
}

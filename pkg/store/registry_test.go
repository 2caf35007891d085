package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"docworkspace/internal/pkg/logger"
)

type counterModule struct{}

func (counterModule) Name() string { return "counter" }

func (counterModule) Mount(r *Registry) {
	r.Register("counter", 0, reduceCounter)
}

func TestRegisterIsIdempotent(t *testing.T) {
	st, reg := newCounterStore(t)
	st.Dispatch(counterAction{code: "counter/add", delta: 5})

	before := st.State()
	replacements := st.Replacements()

	assert.False(t, reg.Register("counter", 0, reduceCounter))
	assert.False(t, reg.Register("counter", 0, reduceCounter))

	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, 1, st.ReducerCount())
	assert.Equal(t, replacements, st.Replacements())
	assert.Equal(t, before, st.State())
}

func TestRegisterSeedsInitialStateOnce(t *testing.T) {
	st := New()
	reg := NewRegistry(st, nil)

	require.True(t, reg.Register("counter", 41, reduceCounter))
	st.Dispatch(counterAction{code: "counter/add", delta: 1})
	reg.Register("counter", 0, reduceCounter)

	n, _ := SliceOf[int](st.State(), "counter")
	assert.Equal(t, 42, n)
	assert.Equal(t, 1, st.Replacements())
}

func TestRegisterDifferentReducerLastWins(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	st := New()
	reg := NewRegistry(st, logger.NewFromZap(zap.New(core)))

	reg.Register("counter", 0, reduceCounter)
	st.Dispatch(counterAction{code: "counter/add", delta: 1})

	assert.False(t, reg.Register("counter", 100, reduceCounterTwice))
	st.Dispatch(counterAction{code: "counter/add", delta: 1})

	n, _ := SliceOf[int](st.State(), "counter")
	assert.Equal(t, 3, n, "state kept, new reducer applied")
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestMountRepeatedly(t *testing.T) {
	st := New()
	reg := NewRegistry(st, nil)

	for i := 0; i < 5; i++ {
		reg.Mount(counterModule{})
	}
	st.Dispatch(counterAction{code: "counter/add", delta: 2})
	reg.Mount(counterModule{})

	assert.True(t, reg.Has("counter"))
	assert.Equal(t, []string{"counter"}, reg.Names())
	assert.Equal(t, 1, st.Replacements())
	n, _ := SliceOf[int](st.State(), "counter")
	assert.Equal(t, 2, n)
}

func TestRegisterSeveralSlices(t *testing.T) {
	st := New()
	reg := NewRegistry(st, nil)

	reg.Register("b", "B", func(s any, _ Action) any { return s })
	reg.Register("a", "A", func(s any, _ Action) any { return s })

	assert.Equal(t, []string{"a", "b"}, reg.Names())
	assert.Equal(t, []string{"a", "b"}, st.State().Names())
	assert.Equal(t, 2, st.Replacements())
}

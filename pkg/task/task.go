package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"docworkspace/pkg/store"
)

// ErrSkipped is returned by Run when the task's condition rejected the
// invocation. No lifecycle event is dispatched in that case.
var ErrSkipped = errors.New("task skipped: condition not met")

// Definition describes a named asynchronous operation.
type Definition[In, Out any] struct {
	// Name prefixes every lifecycle action type, e.g. "similarTables/fetch".
	Name string

	// Slice receives the lifecycle events.
	Slice string

	// Payload performs the single external fetch. The state it receives is
	// the snapshot taken right after pending was dispatched.
	Payload func(ctx context.Context, state store.State, in In) (Out, error)

	// Condition, when set, is evaluated atomically with the pending dispatch.
	Condition func(state store.State, in In) bool

	// DedupeKey, when set, coalesces concurrent invocations with the same key
	// into one payload call whose result every caller receives. The shared
	// call is not cancelled when the caller that started it gives up.
	DedupeKey func(in In) string
}

type Task[In, Out any] struct {
	def    Definition[In, Out]
	group  singleflight.Group
	tracer trace.Tracer
}

func New[In, Out any](def Definition[In, Out]) *Task[In, Out] {
	if def.Name == "" || def.Slice == "" || def.Payload == nil {
		panic("task: definition requires Name, Slice and Payload")
	}
	return &Task[In, Out]{
		def:    def,
		tracer: otel.Tracer("docworkspace/pkg/task"),
	}
}

func (t *Task[In, Out]) Name() string {
	return t.def.Name
}

// Run executes the task against st and returns the fulfilled result or the
// rejection error. Failures never panic past this call.
func (t *Task[In, Out]) Run(ctx context.Context, st *store.Store, in In) (Out, error) {
	if t.def.DedupeKey == nil {
		return t.run(ctx, st, in)
	}

	// The shared call outlives any one caller; each caller stops waiting on
	// its own ctx.
	shared := context.WithoutCancel(ctx)
	ch := t.group.DoChan(t.def.DedupeKey(in), func() (interface{}, error) {
		return t.run(shared, st, in)
	})

	select {
	case res := <-ch:
		out, _ := res.Val.(Out)
		return out, res.Err
	case <-ctx.Done():
		var zero Out
		return zero, ctx.Err()
	}
}

func (t *Task[In, Out]) run(ctx context.Context, st *store.Store, in In) (Out, error) {
	requestID := uuid.NewString()

	ctx, span := t.tracer.Start(ctx, t.def.Name, trace.WithAttributes(
		attribute.String("task.name", t.def.Name),
		attribute.String("task.request_id", requestID),
	))
	defer span.End()

	pending := Event{
		Task:      t.def.Name,
		Target:    t.def.Slice,
		Phase:     PhasePending,
		RequestID: requestID,
		Arg:       in,
	}
	var cond func(store.State) bool
	if t.def.Condition != nil {
		cond = func(s store.State) bool { return t.def.Condition(s, in) }
	}
	if !st.DispatchIf(cond, pending) {
		span.SetAttributes(attribute.Bool("task.skipped", true))
		var zero Out
		return zero, ErrSkipped
	}

	out, err := t.invoke(ctx, st.State(), in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		st.Dispatch(Event{
			Task:      t.def.Name,
			Target:    t.def.Slice,
			Phase:     PhaseRejected,
			RequestID: requestID,
			Arg:       in,
			Err:       err,
		})
		var zero Out
		return zero, err
	}

	st.Dispatch(Event{
		Task:      t.def.Name,
		Target:    t.def.Slice,
		Phase:     PhaseFulfilled,
		RequestID: requestID,
		Arg:       in,
		Result:    out,
	})
	return out, nil
}

func (t *Task[In, Out]) invoke(ctx context.Context, state store.State, in In) (out Out, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", t.def.Name, r)
		}
	}()
	return t.def.Payload(ctx, state, in)
}

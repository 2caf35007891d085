package task

import "docworkspace/pkg/store"

// Phase is a lifecycle stage of one task invocation.
type Phase string

const (
	PhasePending   Phase = "pending"
	PhaseFulfilled Phase = "fulfilled"
	PhaseRejected  Phase = "rejected"
)

// Event is the action a task dispatches into its slice. One invocation emits
// pending, then exactly one of fulfilled or rejected, all sharing RequestID.
type Event struct {
	Task      string
	Target    string
	Phase     Phase
	RequestID string
	Arg       any
	Result    any
	Err       error
}

func (e Event) Type() string {
	return e.Task + "/" + string(e.Phase)
}

func (e Event) Slice() string {
	return e.Target
}

// Match returns the lifecycle event when action belongs to the named task.
func Match(action store.Action, name string) (Event, bool) {
	ev, ok := action.(Event)
	if !ok || ev.Task != name {
		return Event{}, false
	}
	return ev, true
}

// ArgAs returns the invocation input as T.
func ArgAs[T any](ev Event) (T, bool) {
	v, ok := ev.Arg.(T)
	return v, ok
}

// ResultAs returns the fulfilled result as T.
func ResultAs[T any](ev Event) (T, bool) {
	v, ok := ev.Result.(T)
	return v, ok
}

// ErrorMessage returns the rejection message, or "" for other phases.
func (e Event) ErrorMessage() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

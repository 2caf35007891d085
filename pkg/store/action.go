package store

// Action is a typed command value. Every action is routed to exactly one
// slice, the one named by Slice().
type Action interface {
	// Type returns the action code, e.g. "workspace/elementAdded".
	Type() string

	// Slice returns the name of the slice whose reducer handles the action.
	Slice() string
}

// ReduceFunc is a slice's pure transition function. It receives the slice's
// current state (nil before the slice is seeded) and returns the next state.
// It must not mutate its input.
type ReduceFunc func(state any, action Action) any

// BaseAction is a ready-made Action for commands without a payload.
type BaseAction struct {
	Code   string
	Target string
}

func (a BaseAction) Type() string {
	return a.Code
}

func (a BaseAction) Slice() string {
	return a.Target
}

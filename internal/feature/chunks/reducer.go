package chunks

import (
	"docworkspace/pkg/store"
	"docworkspace/pkg/task"
)

const (
	FetchTask   = "chunks/fetch"
	ActionClear = "chunks/clear"
)

// Clear drops every loaded chunk.
func Clear() store.Action {
	return store.BaseAction{Code: ActionClear, Target: SliceName}
}

// Module attaches the chunks slice.
type Module struct{}

func (Module) Name() string { return SliceName }

func (Module) Mount(r *store.Registry) {
	r.Register(SliceName, State{}, Reduce)
}

// Reduce is the chunks slice transition function. Only the latest fetch may
// write results; answers to superseded requests are dropped.
func Reduce(state any, action store.Action) any {
	s, _ := state.(State)

	if action.Type() == ActionClear {
		return State{}
	}

	ev, ok := task.Match(action, FetchTask)
	if !ok {
		return s
	}

	switch ev.Phase {
	case task.PhasePending:
		docID, _ := task.ArgAs[string](ev)
		next := State{DocumentID: docID, Loading: true, RequestID: ev.RequestID}
		if docID == s.DocumentID {
			next.Text, next.Tables, next.Graphs = s.Text, s.Tables, s.Graphs
		}
		return next

	case task.PhaseFulfilled:
		if ev.RequestID != s.RequestID {
			return s
		}
		set, _ := task.ResultAs[Set](ev)
		return State{
			DocumentID: set.DocumentID,
			Text:       set.Text,
			Tables:     set.Tables,
			Graphs:     set.Graphs,
			RequestID:  s.RequestID,
		}

	case task.PhaseRejected:
		if ev.RequestID != s.RequestID {
			return s
		}
		msg := ev.ErrorMessage()
		s.Loading = false
		s.Error = &msg
		return s
	}
	return s
}

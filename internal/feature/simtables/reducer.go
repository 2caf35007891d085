package simtables

import (
	"encoding/json"

	"docworkspace/pkg/store"
	"docworkspace/pkg/task"
)

const (
	FetchTask             = "similarTables/fetch"
	ActionSetSelectedDocs = "similarTables/setSelectedDocs"
)

// Request is the fetch input. The token is resolved by the caller and never
// reaches the state tree.
type Request struct {
	Key   Key
	token string
}

type selectedDocsAction struct {
	Docs []string
}

func (selectedDocsAction) Type() string  { return ActionSetSelectedDocs }
func (selectedDocsAction) Slice() string { return SliceName }

// SetSelectedDocs replaces the documents compared against.
func SetSelectedDocs(docs []string) store.Action {
	out := make([]string, len(docs))
	copy(out, docs)
	return selectedDocsAction{Docs: out}
}

type Module struct{}

func (Module) Name() string { return SliceName }

func (Module) Mount(r *store.Registry) {
	r.Register(SliceName, State{}, Reduce)
}

func Reduce(state any, action store.Action) any {
	s, _ := state.(State)

	if a, ok := action.(selectedDocsAction); ok {
		s.SelectedDocs = a.Docs
		return s
	}

	ev, ok := task.Match(action, FetchTask)
	if !ok {
		return s
	}
	req, _ := task.ArgAs[Request](ev)

	switch ev.Phase {
	case task.PhasePending:
		return s.withLeaf(req.Key, Leaf{Loading: true})
	case task.PhaseFulfilled:
		data, _ := task.ResultAs[json.RawMessage](ev)
		return s.withLeaf(req.Key, Leaf{Data: data})
	case task.PhaseRejected:
		msg := ev.ErrorMessage()
		return s.withLeaf(req.Key, Leaf{Error: &msg})
	}
	return s
}

// needsFetch is true when the key has no leaf or its last fetch failed.
func needsFetch(st store.State, k Key) bool {
	leaf, ok := slice(st).Leaves[k]
	return !ok || leaf.Error != nil
}

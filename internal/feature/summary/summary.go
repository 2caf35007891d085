package summary

import (
	"context"
	"errors"

	"docworkspace/internal/pkg/logger"
	"docworkspace/pkg/docapi"
	"docworkspace/pkg/session"
	"docworkspace/pkg/store"
	"docworkspace/pkg/task"
)

const (
	SliceName = "summary"
	FetchTask = "summary/fetch"
)

// Entry is the summary of one document.
type Entry struct {
	Text    string  `json:"text"`
	Loading bool    `json:"loading"`
	Error   *string `json:"error"`
}

type State struct {
	Entries map[string]Entry `json:"entries"`
}

type request struct {
	DocumentID string
	token      string
}

type Module struct{}

func (Module) Name() string { return SliceName }

func (Module) Mount(r *store.Registry) {
	r.Register(SliceName, State{}, Reduce)
}

func Reduce(state any, action store.Action) any {
	s, _ := state.(State)
	ev, ok := task.Match(action, FetchTask)
	if !ok {
		return s
	}
	req, _ := task.ArgAs[request](ev)

	var entry Entry
	switch ev.Phase {
	case task.PhasePending:
		entry = Entry{Loading: true}
	case task.PhaseFulfilled:
		sum, _ := task.ResultAs[docapi.Summary](ev)
		entry = Entry{Text: sum.Summary}
	case task.PhaseRejected:
		msg := ev.ErrorMessage()
		entry = Entry{Error: &msg}
	}

	entries := make(map[string]Entry, len(s.Entries)+1)
	for k, v := range s.Entries {
		entries[k] = v
	}
	entries[req.DocumentID] = entry
	return State{Entries: entries}
}

// SelectSummary returns the summary entry of one document.
func SelectSummary(documentID string) func(store.State) (Entry, bool) {
	return func(st store.State) (Entry, bool) {
		s, _ := store.SliceOf[State](st, SliceName)
		e, ok := s.Entries[documentID]
		return e, ok
	}
}

// Summarizer is the part of the document service this feature needs.
type Summarizer interface {
	Summarize(ctx context.Context, token, documentID string) (docapi.Summary, error)
}

type ISummaryService interface {
	// Summarize returns the document's summary, fetching it once per session.
	// It reports false without error when the user is not signed in.
	Summarize(ctx context.Context, documentID string) (Entry, bool, error)
}

type summaryService struct {
	store    *store.Store
	sessions session.Provider
	fetch    *task.Task[request, docapi.Summary]
	logger   logger.ILogger
}

var ErrNoDocument = errors.New("no document selected")

func NewSummaryService(reg *store.Registry, api Summarizer, sessions session.Provider, log logger.ILogger) ISummaryService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	reg.Mount(Module{})
	return &summaryService{
		store:    reg.Store(),
		sessions: sessions,
		logger:   log,
		fetch: task.New(task.Definition[request, docapi.Summary]{
			Name:      FetchTask,
			Slice:     SliceName,
			DedupeKey: func(r request) string { return r.DocumentID },
			Condition: func(st store.State, r request) bool {
				e, ok := SelectSummary(r.DocumentID)(st)
				return !ok || e.Error != nil
			},
			Payload: func(ctx context.Context, _ store.State, r request) (docapi.Summary, error) {
				return api.Summarize(ctx, r.token, r.DocumentID)
			},
		}),
	}
}

func (s *summaryService) Summarize(ctx context.Context, documentID string) (Entry, bool, error) {
	if documentID == "" {
		return Entry{}, false, ErrNoDocument
	}
	token, err := session.AccessToken(ctx, s.sessions)
	if err != nil {
		return Entry{}, false, err
	}
	if token == "" {
		return Entry{}, false, nil
	}

	if _, err := s.fetch.Run(ctx, s.store, request{DocumentID: documentID, token: token}); err != nil && !errors.Is(err, task.ErrSkipped) {
		if ctx.Err() != nil {
			return Entry{}, false, ctx.Err()
		}
		s.logger.Warn("SummaryService", "Summary fetch failed", map[string]interface{}{
			"document_id": documentID,
			"error":       err.Error(),
		})
	}

	e, ok := SelectSummary(documentID)(s.store.State())
	return e, ok, nil
}

package documents

import (
	"context"
	"errors"
	"net/url"

	"docworkspace/internal/pkg/logger"
	"docworkspace/pkg/docapi"
	"docworkspace/pkg/session"
	"docworkspace/pkg/store"
	"docworkspace/pkg/task"
)

const (
	SliceName    = "documents"
	FetchTask    = "documents/fetchList"
	ActionSelect = "documents/select"

	// PDFRoute is where the HTTP surface proxies document bytes.
	PDFRoute = "/api/documents/"
)

var ErrUnknownDocument = errors.New("document not found")

type State struct {
	Documents []docapi.Document `json:"documents"`
	Loading   bool              `json:"loading"`
	Error     *string           `json:"error"`
	CurrentID string            `json:"current_id"`
}

type selectAction struct {
	ID string
}

func (selectAction) Type() string  { return ActionSelect }
func (selectAction) Slice() string { return SliceName }

// Select makes id the current document.
func Select(id string) store.Action {
	return selectAction{ID: id}
}

type Module struct{}

func (Module) Name() string { return SliceName }

func (Module) Mount(r *store.Registry) {
	r.Register(SliceName, State{}, Reduce)
}

func Reduce(state any, action store.Action) any {
	s, _ := state.(State)

	if a, ok := action.(selectAction); ok {
		s.CurrentID = a.ID
		return s
	}

	ev, ok := task.Match(action, FetchTask)
	if !ok {
		return s
	}
	switch ev.Phase {
	case task.PhasePending:
		s.Loading = true
		s.Error = nil
	case task.PhaseFulfilled:
		docs, _ := task.ResultAs[[]docapi.Document](ev)
		s.Documents = docs
		s.Loading = false
	case task.PhaseRejected:
		msg := ev.ErrorMessage()
		s.Loading = false
		s.Error = &msg
	}
	return s
}

func slice(st store.State) State {
	s, _ := store.SliceOf[State](st, SliceName)
	return s
}

func SelectDocuments(st store.State) []docapi.Document {
	docs := slice(st).Documents
	out := make([]docapi.Document, len(docs))
	copy(out, docs)
	return out
}

func SelectDocumentsLoading(st store.State) bool { return slice(st).Loading }

func SelectDocumentsError(st store.State) *string { return slice(st).Error }

func SelectCurrentDocument(st store.State) (docapi.Document, bool) {
	s := slice(st)
	if s.CurrentID == "" {
		return docapi.Document{}, false
	}
	for _, d := range s.Documents {
		if d.ID == s.CurrentID {
			return d, true
		}
	}
	return docapi.Document{ID: s.CurrentID}, true
}

// SelectCurrentDocumentURL returns the proxied PDF URL of the current
// document, or "" when none is selected.
func SelectCurrentDocumentURL(st store.State) string {
	id := slice(st).CurrentID
	if id == "" {
		return ""
	}
	return PDFRoute + url.PathEscape(id) + "/pdf"
}

// Lister is the part of the document service this feature needs.
type Lister interface {
	ListDocuments(ctx context.Context, token string) ([]docapi.Document, error)
}

type IDocumentService interface {
	List(ctx context.Context) ([]docapi.Document, error)
	Select(id string) error
}

type documentService struct {
	store  *store.Store
	list   *task.Task[struct{}, []docapi.Document]
	logger logger.ILogger
}

func NewDocumentService(reg *store.Registry, api Lister, sessions session.Provider, log logger.ILogger) IDocumentService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	reg.Mount(Module{})
	return &documentService{
		store:  reg.Store(),
		logger: log,
		list: task.New(task.Definition[struct{}, []docapi.Document]{
			Name:      FetchTask,
			Slice:     SliceName,
			DedupeKey: func(struct{}) string { return FetchTask },
			Payload: func(ctx context.Context, _ store.State, _ struct{}) ([]docapi.Document, error) {
				token, err := session.AccessToken(ctx, sessions)
				if err != nil {
					return nil, err
				}
				return api.ListDocuments(ctx, token)
			},
		}),
	}
}

func (s *documentService) List(ctx context.Context) ([]docapi.Document, error) {
	docs, err := s.list.Run(ctx, s.store, struct{}{})
	if err != nil {
		s.logger.Warn("DocumentService", "Document list failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	return docs, nil
}

// Select changes the current document. Once the list is loaded only listed
// documents may be selected.
func (s *documentService) Select(id string) error {
	known := func(st store.State) bool {
		docs := slice(st).Documents
		if len(docs) == 0 {
			return true
		}
		for _, d := range docs {
			if d.ID == id {
				return true
			}
		}
		return false
	}
	if !s.store.DispatchIf(known, Select(id)) {
		return ErrUnknownDocument
	}
	return nil
}

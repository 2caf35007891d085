package projectmodal

import (
	"context"
	"errors"
	"slices"
	"strings"

	"docworkspace/internal/pkg/logger"
	"docworkspace/pkg/docapi"
	"docworkspace/pkg/events"
	"docworkspace/pkg/session"
	"docworkspace/pkg/store"
	"docworkspace/pkg/task"
)

const (
	SliceName     = "createProjectModal"
	SubmitTask    = "createProjectModal/submit"
	ActionOpen    = "createProjectModal/open"
	ActionClose   = "createProjectModal/close"
	ActionSetName = "createProjectModal/setName"
	ActionToggle  = "createProjectModal/toggleElement"
)

var (
	ErrEmptyName       = errors.New("project name is required")
	ErrNothingSelected = errors.New("select at least one workspace element")
	ErrNotSignedIn     = errors.New("sign in to create a project")
	ErrModalClosed     = errors.New("project dialog is not open")
)

// Draft is what the user has entered so far.
type Draft struct {
	Name        string   `json:"name"`
	DocumentIDs []string `json:"document_ids"`
	ElementIDs  []string `json:"element_ids"`
}

type State struct {
	Open        bool            `json:"open"`
	Draft       Draft           `json:"draft"`
	Submitting  bool            `json:"submitting"`
	Error       *string         `json:"error"`
	LastProject *docapi.Project `json:"last_project"`
}

type modalAction struct {
	code        string
	Name        string
	ElementID   string
	DocumentIDs []string
}

func (a modalAction) Type() string { return a.code }
func (modalAction) Slice() string  { return SliceName }

// Open shows the dialog, seeded with the documents the workspace draws on.
func Open(documentIDs []string) store.Action {
	return modalAction{code: ActionOpen, DocumentIDs: slices.Clone(documentIDs)}
}

func Close() store.Action { return modalAction{code: ActionClose} }

func SetName(name string) store.Action { return modalAction{code: ActionSetName, Name: name} }

func ToggleElement(elementID string) store.Action {
	return modalAction{code: ActionToggle, ElementID: elementID}
}

type Module struct{}

func (Module) Name() string { return SliceName }

func (Module) Mount(r *store.Registry) {
	r.Register(SliceName, State{}, Reduce)
}

func Reduce(state any, action store.Action) any {
	s, _ := state.(State)

	if a, ok := action.(modalAction); ok {
		switch a.code {
		case ActionOpen:
			return State{Open: true, Draft: Draft{DocumentIDs: a.DocumentIDs}, LastProject: s.LastProject}
		case ActionClose:
			return State{LastProject: s.LastProject}
		case ActionSetName:
			s.Draft.Name = a.Name
		case ActionToggle:
			ids := slices.Clone(s.Draft.ElementIDs)
			if i := slices.Index(ids, a.ElementID); i >= 0 {
				ids = slices.Delete(ids, i, i+1)
			} else {
				ids = append(ids, a.ElementID)
			}
			s.Draft.ElementIDs = ids
		}
		return s
	}

	ev, ok := task.Match(action, SubmitTask)
	if !ok {
		return s
	}
	switch ev.Phase {
	case task.PhasePending:
		s.Submitting = true
		s.Error = nil
	case task.PhaseFulfilled:
		p, _ := task.ResultAs[docapi.Project](ev)
		return State{LastProject: &p}
	case task.PhaseRejected:
		msg := ev.ErrorMessage()
		s.Submitting = false
		s.Error = &msg
	}
	return s
}

func slice(st store.State) State {
	s, _ := store.SliceOf[State](st, SliceName)
	return s
}

func SelectModalOpen(st store.State) bool { return slice(st).Open }

func SelectProjectDraft(st store.State) Draft { return slice(st).Draft }

func SelectProjectSubmitting(st store.State) bool { return slice(st).Submitting }

func SelectProjectError(st store.State) *string { return slice(st).Error }

func SelectLastProject(st store.State) *docapi.Project { return slice(st).LastProject }

// Validate checks a draft before submission.
func Validate(d Draft) error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if len(d.ElementIDs) == 0 {
		return ErrNothingSelected
	}
	return nil
}

// Creator is the part of the document service this feature needs.
type Creator interface {
	CreateProject(ctx context.Context, token string, req docapi.ProjectRequest) (docapi.Project, error)
}

type IProjectModalService interface {
	Open(documentIDs []string)
	Close()
	SetName(name string)
	ToggleElement(elementID string)
	Submit(ctx context.Context) (docapi.Project, error)
}

type submission struct {
	Draft Draft
	token string
}

type projectModalService struct {
	store     *store.Store
	sessions  session.Provider
	publisher events.Publisher
	submit    *task.Task[submission, docapi.Project]
	logger    logger.ILogger
}

func NewProjectModalService(reg *store.Registry, api Creator, sessions session.Provider, publisher events.Publisher, log logger.ILogger) IProjectModalService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	reg.Mount(Module{})

	return &projectModalService{
		store:     reg.Store(),
		sessions:  sessions,
		publisher: publisher,
		logger:    log,
		submit: task.New(task.Definition[submission, docapi.Project]{
			Name:      SubmitTask,
			Slice:     SliceName,
			DedupeKey: func(submission) string { return SubmitTask },
			Condition: func(st store.State, _ submission) bool {
				s := slice(st)
				return s.Open && !s.Submitting
			},
			Payload: func(ctx context.Context, _ store.State, sub submission) (docapi.Project, error) {
				return api.CreateProject(ctx, sub.token, docapi.ProjectRequest{
					Name:        strings.TrimSpace(sub.Draft.Name),
					DocumentIDs: sub.Draft.DocumentIDs,
					ElementIDs:  sub.Draft.ElementIDs,
				})
			},
		}),
	}
}

func (s *projectModalService) Open(documentIDs []string)      { s.store.Dispatch(Open(documentIDs)) }
func (s *projectModalService) Close()                         { s.store.Dispatch(Close()) }
func (s *projectModalService) SetName(name string)            { s.store.Dispatch(SetName(name)) }
func (s *projectModalService) ToggleElement(elementID string) { s.store.Dispatch(ToggleElement(elementID)) }

// Submit validates the current draft and creates the project. A successful
// submission closes the dialog.
func (s *projectModalService) Submit(ctx context.Context) (docapi.Project, error) {
	st := slice(s.store.State())
	if !st.Open {
		return docapi.Project{}, ErrModalClosed
	}
	if err := Validate(st.Draft); err != nil {
		return docapi.Project{}, err
	}

	token, err := session.AccessToken(ctx, s.sessions)
	if err != nil {
		return docapi.Project{}, err
	}
	if token == "" {
		return docapi.Project{}, ErrNotSignedIn
	}

	p, err := s.submit.Run(ctx, s.store, submission{Draft: st.Draft, token: token})
	if err != nil {
		return docapi.Project{}, err
	}

	ev := events.New(events.ProjectCreated, map[string]interface{}{
		"project_id": p.ID,
		"elements":   len(st.Draft.ElementIDs),
	})
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("ProjectModalService", "Failed to publish project event", map[string]interface{}{"error": err.Error()})
	}
	return p, nil
}

package workspace

import (
	"context"

	"github.com/google/uuid"

	"docworkspace/internal/feature/chunks"
	"docworkspace/internal/pkg/logger"
	"docworkspace/pkg/events"
	"docworkspace/pkg/lexical"
	"docworkspace/pkg/store"
)

type IWorkspaceService interface {
	Add(ctx context.Context, chunk chunks.Chunk) (Element, error)
	Remove(ctx context.Context, index int) error
	Restore(ctx context.Context, index int) error
	Move(ctx context.Context, from, to int) error
	HideSection(section string) error
	ShowSection(section string) error
	ToggleSection(section string) error
	Reset(ctx context.Context)
	Payloads() []ContentPayload
	Document() lexical.Document
	Markdown() string
}

type workspaceService struct {
	store     *store.Store
	sessionID string
	publisher events.Publisher
	parser    *lexical.Parser
	logger    logger.ILogger
}

// NewWorkspaceService mounts the workspace slice on reg. Activity is
// published under sessionID; a nil publisher drops it.
func NewWorkspaceService(reg *store.Registry, sessionID string, publisher events.Publisher, log logger.ILogger) IWorkspaceService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	reg.Mount(Module{})
	return &workspaceService{
		store:     reg.Store(),
		sessionID: sessionID,
		publisher: publisher,
		parser:    lexical.NewParser(),
		logger:    log,
	}
}

// dispatch applies action and returns the error its transition produced.
// Validation and application happen in the same exclusive tick.
func (s *workspaceService) dispatch(action store.Action) error {
	var err error
	s.store.DispatchIf(func(st store.State) bool {
		_, err = Apply(slice(st), action)
		return true
	}, action)
	return err
}

func (s *workspaceService) Add(ctx context.Context, chunk chunks.Chunk) (Element, error) {
	id := uuid.NewString()
	if err := s.dispatch(AddElement(id, chunk)); err != nil {
		return Element{}, err
	}

	var added Element
	for _, el := range SelectBacking(s.store.State()) {
		if el.ID == id {
			added = el
			break
		}
	}
	s.publish(ctx, events.ElementAdded, map[string]interface{}{
		"element_id":  id,
		"document_id": chunk.DocumentID,
		"type":        string(chunk.Type),
		"page":        chunk.Page,
	})
	return added, nil
}

func (s *workspaceService) Remove(ctx context.Context, index int) error {
	if err := s.dispatch(RemoveElement(index)); err != nil {
		return err
	}
	s.publish(ctx, events.ElementRemoved, map[string]interface{}{"position": index})
	return nil
}

func (s *workspaceService) Restore(ctx context.Context, index int) error {
	if err := s.dispatch(RestoreElement(index)); err != nil {
		return err
	}
	s.publish(ctx, events.ElementRestored, map[string]interface{}{"position": index})
	return nil
}

func (s *workspaceService) Move(ctx context.Context, from, to int) error {
	if err := s.dispatch(MoveElement(from, to)); err != nil {
		return err
	}
	s.publish(ctx, events.ElementMoved, map[string]interface{}{"from": from, "to": to})
	return nil
}

func (s *workspaceService) HideSection(section string) error {
	return s.dispatch(HideSection(section))
}

func (s *workspaceService) ShowSection(section string) error {
	return s.dispatch(ShowSection(section))
}

func (s *workspaceService) ToggleSection(section string) error {
	return s.dispatch(ToggleSection(section))
}

func (s *workspaceService) Reset(ctx context.Context) {
	s.store.Dispatch(Reset())
	s.publish(ctx, events.WorkspaceReset, nil)
}

func (s *workspaceService) Payloads() []ContentPayload {
	st := s.store.State()
	return Payloads(SelectBacking(st), SelectHiddenSections(st))
}

func (s *workspaceService) Document() lexical.Document {
	st := s.store.State()
	return Compose(SelectBacking(st), SelectHiddenSections(st))
}

// Markdown exports the composed document.
func (s *workspaceService) Markdown() string {
	return s.parser.Render(s.Document())
}

// publish never fails the operation; the bus is best effort.
func (s *workspaceService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["session_id"] = s.sessionID
	if err := s.publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		s.logger.Warn("WorkspaceService", "Failed to publish workspace event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}

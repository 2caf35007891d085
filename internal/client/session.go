// Package client bundles one user's store and feature services.
package client

import (
	"time"

	"docworkspace/internal/feature/chunks"
	"docworkspace/internal/feature/documents"
	"docworkspace/internal/feature/filterpanel"
	"docworkspace/internal/feature/projectmodal"
	"docworkspace/internal/feature/simtables"
	"docworkspace/internal/feature/summary"
	"docworkspace/internal/feature/workspace"
	"docworkspace/internal/pkg/logger"
	"docworkspace/pkg/events"
	"docworkspace/pkg/session"
	"docworkspace/pkg/store"

	"github.com/google/uuid"
)

// DocumentAPI is everything the feature services need from the document service.
type DocumentAPI interface {
	chunks.Fetcher
	documents.Lister
	simtables.Fetcher
	summary.Summarizer
	projectmodal.Creator
}

type Deps struct {
	API       DocumentAPI
	Sessions  session.Provider
	Publisher events.Publisher
	Logger    logger.ILogger

	// PanelAnimation is how long filter panels take to open or close.
	PanelAnimation time.Duration
}

// Session is the client-side state of one signed-in user.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time

	Store    *store.Store
	Registry *store.Registry

	Documents     documents.IDocumentService
	Chunks        chunks.IChunkService
	Workspace     workspace.IWorkspaceService
	SimilarTables simtables.ISimilarTablesService
	FilterPanel   filterpanel.IFilterPanelService
	Summary       summary.ISummaryService
	Project       projectmodal.IProjectModalService
}

func NewSession(userID string, deps Deps) *Session {
	if deps.Logger == nil {
		deps.Logger = logger.NewNopLogger()
	}
	if deps.Sessions == nil {
		deps.Sessions = session.BearerProvider{}
	}
	if deps.Publisher == nil {
		deps.Publisher = events.Nop{}
	}

	st := store.New(store.WithLogger(deps.Logger))
	reg := store.NewRegistry(st, deps.Logger)
	id := uuid.NewString()

	s := &Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: time.Now(),
		Store:     st,
		Registry:  reg,
	}
	s.Documents = documents.NewDocumentService(reg, deps.API, deps.Sessions, deps.Logger)
	s.Chunks = chunks.NewChunkService(reg, deps.API, deps.Sessions, deps.Logger)
	s.Workspace = workspace.NewWorkspaceService(reg, id, deps.Publisher, deps.Logger)
	s.SimilarTables = simtables.NewSimilarTablesService(reg, deps.API, deps.Sessions, deps.Logger)
	s.FilterPanel = filterpanel.NewFilterPanelService(reg, deps.PanelAnimation, deps.Logger)
	s.Summary = summary.NewSummaryService(reg, deps.API, deps.Sessions, deps.Logger)
	s.Project = projectmodal.NewProjectModalService(reg, deps.API, deps.Sessions, deps.Publisher, deps.Logger)

	deps.Logger.Info("ClientSession", "Session created", map[string]interface{}{
		"session_id": id,
		"user_id":    userID,
		"slices":     reg.Names(),
	})
	return s
}

// State returns the current snapshot of every mounted slice.
func (s *Session) State() store.State {
	return s.Store.State()
}

// Close stops pending panel animations. The session must not be used afterwards.
func (s *Session) Close() {
	s.FilterPanel.Stop()
}

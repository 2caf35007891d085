package chunks

import (
	"context"
	"errors"

	"docworkspace/internal/pkg/logger"
	"docworkspace/pkg/docapi"
	"docworkspace/pkg/session"
	"docworkspace/pkg/store"
	"docworkspace/pkg/task"
)

var ErrNoDocument = errors.New("no document selected")

// Fetcher is the part of the document service the chunks feature needs.
type Fetcher interface {
	FetchChunks(ctx context.Context, token, documentID string) (docapi.ChunkSet, error)
}

type IChunkService interface {
	Fetch(ctx context.Context, documentID string) (Set, error)
	Clear()
}

type chunkService struct {
	store    *store.Store
	fetch    *task.Task[string, Set]
	sessions session.Provider
	logger   logger.ILogger
}

func NewChunkService(reg *store.Registry, api Fetcher, sessions session.Provider, log logger.ILogger) IChunkService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	reg.Mount(Module{})

	s := &chunkService{store: reg.Store(), sessions: sessions, logger: log}
	s.fetch = task.New(task.Definition[string, Set]{
		Name:      FetchTask,
		Slice:     SliceName,
		DedupeKey: func(documentID string) string { return documentID },
		Payload: func(ctx context.Context, _ store.State, documentID string) (Set, error) {
			token, err := session.AccessToken(ctx, sessions)
			if err != nil {
				return Set{}, err
			}
			cs, err := api.FetchChunks(ctx, token, documentID)
			if err != nil {
				return Set{}, err
			}
			return SetFromWire(documentID, cs), nil
		},
	})
	return s
}

func (s *chunkService) Fetch(ctx context.Context, documentID string) (Set, error) {
	if documentID == "" {
		return Set{}, ErrNoDocument
	}
	set, err := s.fetch.Run(ctx, s.store, documentID)
	if err != nil {
		s.logger.Warn("ChunkService", "Chunk fetch failed", map[string]interface{}{
			"document_id": documentID,
			"error":       err.Error(),
		})
		return Set{}, err
	}
	s.logger.Debug("ChunkService", "Chunks loaded", map[string]interface{}{
		"document_id": documentID,
		"text":        len(set.Text),
		"tables":      len(set.Tables),
		"graphs":      len(set.Graphs),
	})
	return set, nil
}

func (s *chunkService) Clear() {
	s.store.Dispatch(Clear())
}

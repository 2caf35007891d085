package simtables

import (
	"context"
	"encoding/json"
	"errors"

	"docworkspace/internal/pkg/logger"
	"docworkspace/pkg/session"
	"docworkspace/pkg/store"
	"docworkspace/pkg/task"
)

// Fetcher is the part of the document service this feature needs.
type Fetcher interface {
	SimilarTables(ctx context.Context, token, tableID string, selectedDocs []string) (json.RawMessage, error)
}

type ISimilarTablesService interface {
	// Lookup returns the leaf for key, fetching it when absent or failed.
	// It reports false without error when the user is not signed in.
	Lookup(ctx context.Context, key Key) (Leaf, bool, error)
	SetSelectedDocs(docs []string)
}

type similarTablesService struct {
	store    *store.Store
	sessions session.Provider
	fetch    *task.Task[Request, json.RawMessage]
	logger   logger.ILogger
}

func NewSimilarTablesService(reg *store.Registry, api Fetcher, sessions session.Provider, log logger.ILogger) ISimilarTablesService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	reg.Mount(Module{})

	return &similarTablesService{
		store:    reg.Store(),
		sessions: sessions,
		logger:   log,
		fetch: task.New(task.Definition[Request, json.RawMessage]{
			Name:      FetchTask,
			Slice:     SliceName,
			DedupeKey: func(r Request) string { return r.Key.String() },
			Condition: func(st store.State, r Request) bool { return needsFetch(st, r.Key) },
			// The selection is read from the snapshot taken when the fetch
			// starts, not when Lookup was called.
			Payload: func(ctx context.Context, st store.State, r Request) (json.RawMessage, error) {
				return api.SimilarTables(ctx, r.token, r.Key.TableID, SelectSelectedDocs(st))
			},
		}),
	}
}

func (s *similarTablesService) Lookup(ctx context.Context, key Key) (Leaf, bool, error) {
	token, err := session.AccessToken(ctx, s.sessions)
	if err != nil {
		return Leaf{}, false, err
	}
	if token == "" {
		return Leaf{}, false, nil
	}

	_, err = s.fetch.Run(ctx, s.store, Request{Key: key, token: token})
	switch {
	case err == nil, errors.Is(err, task.ErrSkipped):
	case ctx.Err() != nil:
		return Leaf{}, false, ctx.Err()
	default:
		s.logger.Warn("SimilarTablesService", "Similar tables fetch failed", map[string]interface{}{
			"key":   key.String(),
			"error": err.Error(),
		})
	}

	leaf, ok := SelectLeaf(key)(s.store.State())
	return leaf, ok, nil
}

func (s *similarTablesService) SetSelectedDocs(docs []string) {
	s.store.Dispatch(SetSelectedDocs(docs))
}

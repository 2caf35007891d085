package service

import (
	"context"
	"sync"

	"docworkspace/internal/pkg/logger"
	"docworkspace/pkg/events"
	pktNats "docworkspace/pkg/nats"
)

// ActivitySubject matches every workspace activity event on the bus.
const ActivitySubject = "events.workspace.>"

// EventSource subscribes to the activity stream. Implemented by pkg/nats.Subscriber.
type EventSource interface {
	Subscribe(ctx context.Context, subject, durableName string, handler pktNats.EventHandler) error
}

type IActivityService interface {
	Start(ctx context.Context) error
	Handle(ctx context.Context, event events.Event) error
	// Counts returns how many events of each type were seen.
	Counts() map[string]int
}

// activityService logs workspace activity and keeps per-type counters.
type activityService struct {
	source EventSource
	logger logger.ILogger

	mu     sync.Mutex
	counts map[string]int
}

func NewActivityService(source EventSource, log logger.ILogger) IActivityService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &activityService{
		source: source,
		logger: log,
		counts: map[string]int{},
	}
}

func (s *activityService) Start(ctx context.Context) error {
	if s.source == nil {
		s.logger.Warn("ActivityService", "No event source, activity feed disabled", nil)
		return nil
	}
	if err := s.source.Subscribe(ctx, ActivitySubject, "workspace-activity", s.Handle); err != nil {
		s.logger.Error("ActivityService", "Failed to start activity subscriber", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("ActivityService", "Activity service started, listening to "+ActivitySubject, nil)
	return nil
}

func (s *activityService) Handle(_ context.Context, event events.Event) error {
	s.mu.Lock()
	s.counts[event.EventType()]++
	s.mu.Unlock()

	details := map[string]interface{}{"type": event.EventType(), "at": event.Timestamp()}
	for k, v := range event.Payload() {
		details[k] = v
	}
	s.logger.Info("ActivityService", "Workspace activity", details)
	return nil
}

func (s *activityService) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out
}

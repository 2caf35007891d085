package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"docworkspace/internal/client"
	"docworkspace/internal/pkg/logger"
	"docworkspace/pkg/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const ChangeTopic = "store.changed"

// Change is the frame pushed to presentation clients after a dispatch.
// Version is the store version the slice state was taken at; a client should
// ignore a frame whose version is not newer than the last one it applied for
// the same slice.
type Change struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	UserID    string          `json:"user_id"`
	Action    string          `json:"action"`
	Slice     string          `json:"slice"`
	Version   uint64          `json:"version"`
	State     json.RawMessage `json:"state"`
	At        time.Time       `json:"at"`
}

// ChangeDelivery pushes frames to a user's connections. Implemented by the
// websocket hub.
type ChangeDelivery interface {
	SendTo(userID string, frame []byte)
}

type IChangeFeedService interface {
	// Attach publishes every dispatch of the session. The returned func detaches.
	Attach(s *client.Session) func()
	Consume(ctx context.Context) error
}

type changeFeedService struct {
	pubSub   *gochannel.GoChannel
	delivery ChangeDelivery
	logger   logger.ILogger

	// last delivered version per session and slice
	mu   sync.Mutex
	last map[string]map[string]uint64
}

func NewChangeFeedService(pubSub *gochannel.GoChannel, delivery ChangeDelivery, log logger.ILogger) IChangeFeedService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &changeFeedService{
		pubSub:   pubSub,
		delivery: delivery,
		logger:   log,
		last:     make(map[string]map[string]uint64),
	}
}

func (s *changeFeedService) Attach(sess *client.Session) func() {
	unsubscribe := sess.Store.Subscribe(func(action store.Action, state store.State) {
		if err := s.publish(sess, action, state); err != nil {
			s.logger.Warn("ChangeFeedService", "Failed to publish change", map[string]interface{}{
				"session_id": sess.ID,
				"action":     action.Type(),
				"error":      err.Error(),
			})
		}
	})
	return func() {
		unsubscribe()
		s.mu.Lock()
		delete(s.last, sess.ID)
		s.mu.Unlock()
	}
}

func (s *changeFeedService) publish(sess *client.Session, action store.Action, state store.State) error {
	slice, _ := state.Slice(action.Slice())
	raw, err := json.Marshal(slice)
	if err != nil {
		return fmt.Errorf("failed to encode slice %s: %w", action.Slice(), err)
	}

	payload, err := json.Marshal(Change{
		Type:      "state_changed",
		SessionID: sess.ID,
		UserID:    sess.UserID,
		Action:    action.Type(),
		Slice:     action.Slice(),
		Version:   state.Version(),
		State:     raw,
		At:        time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	return s.pubSub.Publish(ChangeTopic, msg)
}

func (s *changeFeedService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, ChangeTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(msg)
		}
	}()

	return nil
}

func (s *changeFeedService) processMessage(msg *message.Message) {
	var change Change
	if err := json.Unmarshal(msg.Payload, &change); err != nil {
		s.logger.Error("ChangeFeedService", "Failed to unmarshal change", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}
	if !s.advance(change) {
		s.logger.Debug("ChangeFeedService", "Stale change dropped", map[string]interface{}{
			"session_id": change.SessionID,
			"slice":      change.Slice,
			"version":    change.Version,
		})
		msg.Ack()
		return
	}
	if s.delivery != nil {
		s.delivery.SendTo(change.UserID, msg.Payload)
	}
	msg.Ack()
}

// advance records change as the newest for its slice. It reports false when a
// newer snapshot of the same slice was already delivered.
func (s *changeFeedService) advance(change Change) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	slices, ok := s.last[change.SessionID]
	if !ok {
		slices = make(map[string]uint64)
		s.last[change.SessionID] = slices
	}
	if prev, ok := slices[change.Slice]; ok && change.Version <= prev {
		return false
	}
	slices[change.Slice] = change.Version
	return true
}

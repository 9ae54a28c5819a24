// Package realtime delivers near-real-time notifications about newly
// stored handwriting to subscribed screens, scoped per session.
package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	appErrors "inkrelay-backend/pkg/errors"
)

// EventNewHandwriting is the single event name published on session
// channels.
const EventNewHandwriting = "new_handwriting"

// HandwritingEvent announces a newly stored vector document. A late
// subscriber can always recover state from the stored artifact; this
// event is best-effort.
type HandwritingEvent struct {
	ID             string `json:"id"`
	StoragePathSVG string `json:"storagePathSvg"`
	CreatedAt      string `json:"createdAt"`
	ClientID       string `json:"clientId"`
}

// Envelope is the frame written to subscribers.
type Envelope struct {
	Event   string           `json:"event"`
	Payload HandwritingEvent `json:"payload"`
}

// Broadcaster publishes events to a session-scoped channel.
type Broadcaster interface {
	Publish(ctx context.Context, sessionID string, event HandwritingEvent) error
}

// subscriber is one connected websocket. Writes go through a buffered
// channel; a subscriber that cannot keep up gets dropped rather than
// blocking the publisher.
type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans events out to websocket subscribers grouped by session id.
// Publishing to a session with no subscribers succeeds silently.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*subscriber]struct{}
	logger   *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]map[*subscriber]struct{}),
		logger:   logger,
	}
}

// Subscribe attaches a websocket connection to a session channel and
// services it until the connection closes.
func (h *Hub) Subscribe(sessionID string, conn *websocket.Conn) {
	sub := &subscriber{
		conn: conn,
		send: make(chan []byte, 16),
	}

	h.mu.Lock()
	if h.sessions[sessionID] == nil {
		h.sessions[sessionID] = make(map[*subscriber]struct{})
	}
	h.sessions[sessionID][sub] = struct{}{}
	h.mu.Unlock()

	h.logger.Info("Subscriber connected", zap.String("sessionId", sessionID))

	go h.writePump(sessionID, sub)
	h.readPump(sessionID, sub)
}

func (h *Hub) unsubscribe(sessionID string, sub *subscriber) {
	h.mu.Lock()
	if subs, ok := h.sessions[sessionID]; ok {
		if _, present := subs[sub]; present {
			delete(subs, sub)
			close(sub.send)
			if len(subs) == 0 {
				delete(h.sessions, sessionID)
			}
		}
	}
	h.mu.Unlock()
}

// readPump discards inbound frames; it exists to notice the close.
func (h *Hub) readPump(sessionID string, sub *subscriber) {
	defer func() {
		h.unsubscribe(sessionID, sub)
		sub.conn.Close()
		h.logger.Info("Subscriber disconnected", zap.String("sessionId", sessionID))
	}()

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(sessionID string, sub *subscriber) {
	for msg := range sub.send {
		if err := sub.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Warn("Subscriber write failed",
				zap.String("sessionId", sessionID),
				zap.Error(err),
			)
			sub.conn.Close()
			return
		}
	}
}

// Publish implements Broadcaster. Slow subscribers are skipped so one
// stalled screen cannot hold up ingestion.
func (h *Hub) Publish(ctx context.Context, sessionID string, event HandwritingEvent) error {
	frame, err := json.Marshal(Envelope{Event: EventNewHandwriting, Payload: event})
	if err != nil {
		return appErrors.NewInternal("failed to encode broadcast event", err)
	}

	// The fan-out stays under the read lock: unsubscribe closes the
	// send channel under the write lock, so a send can never race a
	// close. Sends are non-blocking, so holding the lock is cheap.
	h.mu.RLock()
	delivered := 0
	for sub := range h.sessions[sessionID] {
		select {
		case sub.send <- frame:
			delivered++
		default:
			h.logger.Warn("Dropping event for slow subscriber", zap.String("sessionId", sessionID))
		}
	}
	h.mu.RUnlock()

	h.logger.Debug("Broadcast published",
		zap.String("sessionId", sessionID),
		zap.String("event", EventNewHandwriting),
		zap.Int("subscribers", delivered),
	)
	return nil
}

// SubscriberCount reports the number of active subscribers for a
// session, for health reporting and tests.
func (h *Hub) SubscriberCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

package events

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// Event types broadcast to connected clients
const (
	ProjectCreated = "project_created"
	MemberAdded    = "member_added"
	MemberRemoved  = "member_removed"
)

// Event describes a mutation within an organization. Clients use these
// to refresh their project list or an open membership panel.
type Event struct {
	Type         string `json:"type"`
	OrgID        string `json:"orgId"`
	ProjectID    string `json:"projectId,omitempty"`
	ProfileID    string `json:"profileId,omitempty"`
	MembershipID string `json:"membershipId,omitempty"`
	Name         string `json:"name,omitempty"`
}

// Hub fans mutation events out to WebSocket subscribers. Events are
// scoped to the subscriber's organization; a slow subscriber drops
// events rather than blocking the publisher.
type Hub struct {
	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	logger *slog.Logger
}

type subscriber struct {
	conn  *websocket.Conn
	orgID string
	send  chan Event
}

// NewHub creates a new event hub
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[*subscriber]struct{}),
		logger: logger,
	}
}

// Publish delivers an event to every subscriber in the event's
// organization. Never blocks.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		if sub.orgID != ev.OrgID {
			continue
		}
		select {
		case sub.send <- ev:
		default:
			h.logger.Warn("dropping event for slow subscriber",
				slog.String("type", ev.Type),
				slog.String("org_id", ev.OrgID),
			)
		}
	}
}

// Serve registers the connection for an organization and pumps events
// to it until the peer disconnects. Blocks for the connection's
// lifetime; callers run it from the upgrading handler.
func (h *Hub) Serve(conn *websocket.Conn, orgID string) {
	sub := &subscriber{
		conn:  conn,
		orgID: orgID,
		send:  make(chan Event, 16),
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.subs, sub)
		h.mu.Unlock()
		conn.Close()
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Read loop only detects the peer going away; clients never
		// send application messages.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case ev := <-sub.send:
			if err := conn.WriteJSON(ev); err != nil {
				h.logger.Debug("event write failed", slog.String("error", err.Error()))
				return
			}
		}
	}
}

// Subscribers returns the number of live subscriptions
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

package sse

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/attendance"
)

const subscriberBuffer = 16

// Event is one message on a workspace stream.
type Event struct {
	ID          uint64      `json:"id"`
	Type        string      `json:"type"`
	WorkspaceID string      `json:"workspaceId"`
	UserID      string      `json:"userId,omitempty"`
	Data        interface{} `json:"data,omitempty"`
	OccurredAt  time.Time   `json:"occurredAt"`

	// Broadcast events reach every subscriber of the workspace. Others
	// reach their own user and workspace admins only.
	Broadcast bool `json:"-"`
}

// Viewer identifies who is listening on a stream.
type Viewer struct {
	UserID string
	// SeesAll lets the viewer receive every member's events.
	SeesAll bool
}

func (v Viewer) receives(e Event) bool {
	return v.SeesAll || e.Broadcast || e.UserID == v.UserID
}

// Hub fans events out to subscribers grouped by workspace.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]Viewer
	seq         atomic.Uint64
	dropped     atomic.Uint64
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]Viewer),
	}
}

// Subscribe registers a listener on a workspace and returns its channel and
// an unsubscribe func. The channel is closed on unsubscribe.
func (h *Hub) Subscribe(workspaceID string, viewer Viewer) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)

	if h.subscribers[workspaceID] == nil {
		h.subscribers[workspaceID] = make(map[chan Event]Viewer)
	}
	h.subscribers[workspaceID][ch] = viewer

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[workspaceID], ch)
			close(ch)
			if len(h.subscribers[workspaceID]) == 0 {
				delete(h.subscribers, workspaceID)
			}
		})
	}

	return ch, cleanup
}

// Publish stamps the event and delivers it to the subscribers of its
// workspace allowed to see it. Slow subscribers miss events rather than
// block the publisher.
func (h *Hub) Publish(event Event) Event {
	event.ID = h.seq.Add(1)
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch, viewer := range h.subscribers[event.WorkspaceID] {
		if !viewer.receives(event) {
			continue
		}
		select {
		case ch <- event:
		default:
			h.dropped.Add(1)
			slog.Warn("sse subscriber buffer full, event dropped",
				"workspace_id", event.WorkspaceID,
				"type", event.Type,
			)
		}
	}
	return event
}

// SubscriberCount returns the number of listeners on a workspace.
func (h *Hub) SubscriberCount(workspaceID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[workspaceID])
}

func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}

// Dropped counts events skipped because a subscriber was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Publisher adapts the hub to the attendance event port.
type Publisher struct {
	hub *Hub
}

func NewPublisher(hub *Hub) *Publisher {
	return &Publisher{hub: hub}
}

func (p *Publisher) Publish(_ context.Context, e attendance.Event) {
	p.hub.Publish(Event{
		Type:        e.Type,
		WorkspaceID: e.WorkspaceID,
		UserID:      e.UserID,
		Data:        e.Data,
		Broadcast:   e.Broadcast,
	})
}

var _ attendance.EventPublisher = (*Publisher)(nil)

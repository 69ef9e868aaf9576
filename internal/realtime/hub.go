package realtime

import (
	"sync"
	"time"
)

// PostEvent is one append-only insert notification from the post stream.
type PostEvent struct {
	PostID    uint      `json:"post_id"`
	PublicID  string    `json:"public_id"`
	UserID    uint      `json:"user_id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// Hub fans post-insert notifications out to in-process subscribers. Both the
// local write path and the remote websocket stream publish into it.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan PostEvent
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan PostEvent)}
}

// Subscribe registers a listener. The returned cancel func must be called
// when the listener is torn down; after cancel the channel is closed.
func (h *Hub) Subscribe() (<-chan PostEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan PostEvent, 16)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber. Slow subscribers with a
// full buffer miss the event; a missed notification only delays a refetch
// until the next one.
func (h *Hub) Publish(event PostEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

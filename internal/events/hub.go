// Package events fans out change notifications to a user's open clients.
package events

import (
	"log/slog"
	"sync"
	"time"

	"belongings/internal/domain/models/inventory"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 16

// Hub is an in-process pub/sub keyed by user id. Publish never blocks: a
// subscriber whose buffer is full misses the event.
type Hub struct {
	mu      sync.RWMutex
	subs    map[string]map[uint64]chan inventory.Event
	nextID  uint64
	buffer  int
	logger  *slog.Logger
	dropped func(eventType string)
}

// Option configures a Hub.
type Option func(*Hub)

// WithBuffer sets the per-subscriber buffer size.
func WithBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithDropHook is called with the event type whenever a slow subscriber
// misses an event.
func WithDropHook(fn func(eventType string)) Option {
	return func(h *Hub) { h.dropped = fn }
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger, opts ...Option) *Hub {
	h := &Hub{
		subs:   make(map[string]map[uint64]chan inventory.Event),
		buffer: DefaultBuffer,
		logger: logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Publish delivers event to every subscriber of event.UserID.
func (h *Hub) Publish(event inventory.Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subs[event.UserID] {
		select {
		case ch <- event:
		default:
			h.logger.Debug("subscriber buffer full, event dropped",
				"user_id", event.UserID,
				"subscriber", id,
				"type", event.Type,
			)
			if h.dropped != nil {
				h.dropped(event.Type)
			}
		}
	}
}

// Subscribe registers a subscriber for userID. The returned cancel func
// unregisters it and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(userID string) (<-chan inventory.Event, func()) {
	ch := make(chan inventory.Event, h.buffer)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[uint64]chan inventory.Event)
	}
	h.subs[userID][id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userID], id)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}

	return ch, cancel
}

// Subscribers returns the number of open subscriptions for userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// Package feed maintains the set of currently active food alerts: an
// initial bulk read merged with a live stream of insert events.
package feed

import (
	"sync"

	"github.com/bearbites/bearbites-backend/internal/models"
)

// Hub is the in-process insert-event stream for food_alerts. The alert
// creation path publishes every durably created row; the feed and any
// SSE clients subscribe.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan models.FoodAlert]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: map[chan models.FoodAlert]struct{}{}}
}

// Subscribe registers a buffered channel for insert events. Callers
// must Unsubscribe when done to avoid leaking the live connection.
func (h *Hub) Subscribe(buffer int) chan models.FoodAlert {
	if buffer <= 0 {
		buffer = 32
	}
	ch := make(chan models.FoodAlert, buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan models.FoodAlert) {
	h.mu.Lock()
	_, exists := h.subs[ch]
	if exists {
		delete(h.subs, ch)
	}
	h.mu.Unlock()
	if exists {
		close(ch)
	}
}

// Publish delivers the alert to every subscriber. Slow subscribers with
// full buffers are skipped rather than blocking the creation path.
func (h *Hub) Publish(alert models.FoodAlert) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- alert:
		default:
		}
	}
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

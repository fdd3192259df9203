// Package hub fans typed events out to subscribers. The core submits
// events here; delivery to remote peers is the transport layer's
// problem, not the graph's.
package hub

import (
	"sync"

	"github.com/lazypower/mindcity/internal/graph"
)

// Kind discriminates event payloads.
type Kind string

const (
	// KindSnapshot events carry a *graph.Snapshot.
	KindSnapshot Kind = "snapshot"
	// KindLayout events carry a layout frame.
	KindLayout Kind = "layout"
)

// Event is one typed message submitted to the hub.
type Event struct {
	Kind    Kind
	Payload any
}

// Hub retains the latest snapshot and fans events out to subscribers.
// Subscriber channels have capacity 1 with latest-wins semantics: a
// slow subscriber skips generations but never blocks a publisher.
type Hub struct {
	mu     sync.RWMutex
	latest *graph.Snapshot
	subs   map[int]chan Event
	nextID int
}

// New creates an empty Hub.
func New() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Publish submits an event. Snapshot events update the retained latest
// snapshot. Never blocks.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	if ev.Kind == KindSnapshot {
		if snap, ok := ev.Payload.(*graph.Snapshot); ok {
			h.latest = snap
		}
	}
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			// Drop the queued event in favor of the newer one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
	h.mu.Unlock()
}

// Latest returns the most recently published snapshot, or nil before
// the first publication.
func (h *Hub) Latest() *graph.Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

// Subscribe registers a new subscriber. The returned cancel func must
// be called when done.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	ch := make(chan Event, 1)
	h.subs[id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
	return ch, cancel
}

// SubscriberCount reports the number of live subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

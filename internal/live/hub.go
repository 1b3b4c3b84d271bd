// Package live implements the real-time fan-out subsystem: an in-memory
// registry of viewers subscribed per poll slug, a best-effort broadcaster,
// and the change-notification trigger invoked after every committed mutation.
package live

import (
	"sync"

	"go.uber.org/zap"
)

// Event is the minimal change signal pushed to subscribed viewers. It says
// something changed, not what changed; receivers re-fetch full poll state.
type Event struct {
	Event  string `json:"event"`
	PollID int64  `json:"poll_id"`
}

// EventUpdate is the only event kind currently emitted
const EventUpdate = "update"

// UpdateEvent builds the update signal for a poll
func UpdateEvent(pollID int64) Event {
	return Event{Event: EventUpdate, PollID: pollID}
}

// Subscriber is a live, push-capable connection to one viewer. Send must be
// safe for concurrent use; a failed Send marks the subscriber dead.
type Subscriber interface {
	Send(Event) error
	Close() error
}

// Hub tracks which viewers are subscribed to which poll slug and fans
// events out to them. All state is in-memory and process-local; viewers of
// a dead process reconnect and re-fetch.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[Subscriber]struct{}
	log         *zap.Logger
}

// NewHub creates an empty hub
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]map[Subscriber]struct{}),
		log:         log,
	}
}

// Subscribe registers sub under slug. The caller must have completed the
// connection handshake first, so no event reaches a subscriber before it is
// ready to receive.
func (h *Hub) Subscribe(slug string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subscribers[slug]
	if !ok {
		set = make(map[Subscriber]struct{})
		h.subscribers[slug] = set
	}
	set[sub] = struct{}{}

	h.log.Debug("viewer subscribed",
		zap.String("slug", slug),
		zap.Int("subscribers", len(set)))
}

// Unsubscribe removes sub from slug. Removing an absent subscriber, or
// removing from a slug with no entry, is a no-op. The slug's entry is
// deleted when its set becomes empty, so the map stays bounded by live
// connections rather than by ever-visited slugs.
func (h *Hub) Unsubscribe(slug string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subscribers[slug]
	if !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subscribers, slug)
	}

	h.log.Debug("viewer unsubscribed",
		zap.String("slug", slug),
		zap.Int("subscribers", len(set)))
}

// Count returns the number of live subscribers for slug
func (h *Hub) Count(slug string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[slug])
}

// Broadcast delivers ev to every subscriber currently registered for slug.
// Delivery is synchronous and best-effort per subscriber: one failed send
// never blocks the rest, and a failed subscriber is unregistered and closed
// so later broadcasts do not retry a dead peer. Broadcast never returns an
// error to its caller.
func (h *Hub) Broadcast(slug string, ev Event) {
	h.mu.RLock()
	subs := make([]Subscriber, 0, len(h.subscribers[slug]))
	for sub := range h.subscribers[slug] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	var dead []Subscriber
	for _, sub := range subs {
		if err := sub.Send(ev); err != nil {
			h.log.Warn("dropping dead subscriber",
				zap.String("slug", slug),
				zap.Int64("poll_id", ev.PollID),
				zap.Error(err))
			dead = append(dead, sub)
		}
	}

	for _, sub := range dead {
		h.Unsubscribe(slug, sub)
		_ = sub.Close()
	}
}

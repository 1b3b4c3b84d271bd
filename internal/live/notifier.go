package live

import (
	"go.uber.org/zap"
)

// Notifier is the change-notification trigger invoked by every mutating
// operation after its storage write committed. Delivery runs off the request
// goroutine and any broadcast failure is swallowed, so a push problem never
// fails or delays the write that triggered it.
type Notifier struct {
	hub *Hub
	log *zap.Logger
}

// NewNotifier creates a notifier backed by hub
func NewNotifier(hub *Hub, log *zap.Logger) *Notifier {
	return &Notifier{hub: hub, log: log}
}

// Changed signals that the poll behind slug changed. Repeated calls for the
// same change are harmless: receivers re-fetch full state, so duplicate
// update events converge.
func (n *Notifier) Changed(slug string, pollID int64) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				n.log.Error("broadcast panicked",
					zap.String("slug", slug),
					zap.Int64("poll_id", pollID),
					zap.Any("panic", r))
			}
		}()
		n.hub.Broadcast(slug, UpdateEvent(pollID))
	}()
}

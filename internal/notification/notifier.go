// Package notification dispatches best-effort events to listeners.
package notification

import (
	"context"
	"log"
)

// Event names seen by real-time listeners and the event bus.
const (
	EventNewOrder             = "newOrder"
	EventOrderStatusUpdated   = "orderStatusUpdated"
	EventNewReview            = "newReview"
	EventReviewUpdated        = "reviewUpdated"
	EventReviewDeleted        = "reviewDeleted"
	EventReviewHelpfulUpdated = "reviewHelpfulUpdated"
	EventSettingsUpdated      = "settingsUpdated"
)

// Notifier publishes an event. Callers treat errors as non-fatal.
type Notifier interface {
	Notify(ctx context.Context, event string, payload any) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(context.Context, string, any) error { return nil }

// Multi fans an event out to every notifier. A failing notifier does not
// stop the others; the first error is returned.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, event string, payload any) error {
	var firstErr error
	for _, n := range m {
		if err := n.Notify(ctx, event, payload); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Send notifies and logs a failure under the given component prefix.
func Send(ctx context.Context, n Notifier, component, event string, payload any) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, event, payload); err != nil {
		log.Printf("[%s] Failed to emit %s: %v", component, event, err)
	}
}

// Package events defines the immutable event records flowing through the
// event bus, and the closed set of event types.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is an immutable record of something that happened. Ownership
// transfers to the bus at publish time; the bus and each subscriber may
// retain independent references, so nothing may mutate an Event after
// construction. Payload is copied on construction for the same reason.
type Event struct {
	ID         uuid.UUID
	Type       EventType
	Source     string
	Message    string
	Payload    map[string]string
	OccurredAt time.Time
}

// Option configures an Event during construction.
type Option func(*Event)

// WithPayload attaches a structured key/value payload. The map is copied
// so later mutation by the caller cannot leak into the event.
func WithPayload(payload map[string]string) Option {
	return func(e *Event) {
		cp := make(map[string]string, len(payload))
		for k, v := range payload {
			cp[k] = v
		}
		e.Payload = cp
	}
}

// WithField adds a single payload entry.
func WithField(key, value string) Option {
	return func(e *Event) {
		if e.Payload == nil {
			e.Payload = make(map[string]string, 1)
		}
		e.Payload[key] = value
	}
}

// New creates an event with a fresh id and timestamp.
func New(eventType EventType, source, message string, opts ...Option) Event {
	e := Event{
		ID:         uuid.New(),
		Type:       eventType,
		Source:     source,
		Message:    message,
		OccurredAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Field returns the payload value for key, or "" when absent.
func (e Event) Field(key string) string {
	return e.Payload[key]
}

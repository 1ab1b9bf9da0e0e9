package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/caretkit/internal/event/topic"
)

// Event is a notification with a typed payload.
type Event[T any] struct {
	// Type is the notification topic, e.g. "object.selected".
	Type topic.Topic

	// Payload carries the notification data. Cancelable payloads are
	// pointers so handlers can mark them.
	Payload T

	// Metadata contains standard event information.
	Metadata Metadata
}

// Metadata contains standard information attached to every event.
type Metadata struct {
	ID        string
	Timestamp time.Time
	Source    string
}

// NewEvent creates an event with a fresh ID.
func NewEvent[T any](eventType topic.Topic, payload T, source string) Event[T] {
	return Event[T]{
		Type:    eventType,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// Topic returns the event topic.
func (e Event[T]) Topic() topic.Topic {
	return e.Type
}

// Topiced is implemented by every Event.
type Topiced interface {
	Topic() topic.Topic
}

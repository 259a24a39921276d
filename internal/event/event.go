// Package event is a small synchronous publish/subscribe bus.
//
// Publishers send an Event with a dotted Topic; subscribers register a
// pattern that may use "*" (one segment) and "**" (any number of segments).
// Delivery happens on the publishing goroutine, in subscription order.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is a published message.
type Event struct {
	Topic   Topic
	Payload any
	Meta    Metadata
}

// Metadata is attached to every event.
type Metadata struct {
	ID        string
	Timestamp time.Time
	Source    string
}

// New creates an event with a fresh ID and the current time.
func New(t Topic, payload any, source string) Event {
	return Event{
		Topic:   t,
		Payload: payload,
		Meta: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// ColumnToggled is the payload of TopicColumnToggled.
type ColumnToggled struct {
	Key     string
	Visible bool
}

// CellActivated is the payload of TopicCellActivated.
type CellActivated struct {
	Row   any
	Field string
}

// CellCommitted is the payload of TopicCellCommitted.
type CellCommitted struct {
	Row   any
	Field string
	Value string
}

// CellRejected is the payload of TopicCellRejected.
type CellRejected struct {
	Row    any
	Field  string
	Value  string
	Reason string
}

// CellStale is the payload of TopicCellStale: the row vanished before the
// write landed.
type CellStale struct {
	Row   any
	Field string
}

// CellCancelled is the payload of TopicCellCancelled.
type CellCancelled struct {
	Row   any
	Field string
}

// ConfigReloaded is the payload of TopicConfigReloaded.
type ConfigReloaded struct {
	Path string
	Err  error
}

package events

import "time"

const (
	TypeSummaryCreated       = "SUMMARY_CREATED"
	TypeMonthlyLimitExceeded = "MONTHLY_LIMIT_EXCEEDED"

	// PayloadOccurredAt carries the event time inside the payload on the wire.
	PayloadOccurredAt = "occurred_at"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SUMMARY_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

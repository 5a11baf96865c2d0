package events

import "time"

// Event codes published by the session layer.
const (
	SessionInvited = "SESSION_INVITED"
	RequestDecided = "REQUEST_DECIDED"
	SessionClosed  = "SESSION_CLOSED"
)

// Event is the contract every bus event satisfies.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
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

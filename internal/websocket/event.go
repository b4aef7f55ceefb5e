package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventTypeSnapshot EventType = "snapshot"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeLedger EntityType = "ledger"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "ledger.snapshot"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "ledger"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerSnapshot creates a ledger.snapshot event. The payload is the full
// order-applied snapshot; clients replace their state with it wholesale.
func LedgerSnapshot(payload interface{}) Event {
	return NewEvent(EventTypeSnapshot, EntityTypeLedger, payload)
}

// Package events publishes notifications about ledger writes.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Type names what happened to a ledger record.
type Type string

const (
	ExpenseRecorded    Type = "expense.recorded"
	ExpenseDeleted     Type = "expense.deleted"
	SettlementRecorded Type = "settlement.recorded"
	SettlementDeleted  Type = "settlement.deleted"
)

// Event is a lightweight notification. Consumers fetch the record itself
// from the API when they need more than the IDs.
type Event struct {
	Type       Type      `json:"type"`
	GroupID    string    `json:"group_id"`
	EntityID   string    `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New builds an event stamped with the current time.
func New(t Type, groupID, entityID string) Event {
	return Event{
		Type:       t,
		GroupID:    groupID,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON decodes an event.
func FromJSON(data []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(data, &e)
	return e, err
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

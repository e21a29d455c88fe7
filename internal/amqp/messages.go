package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType names the mutation an ExpenseEvent reports.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
	EventCleared EventType = "cleared"
)

// ExpenseEvent is a lightweight change notification. It carries only the id;
// consumers read the current state from the store.
type ExpenseEvent struct {
	Type      EventType `json:"type"`
	ID        string    `json:"id,omitempty"` // empty for EventCleared
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseEvent(typ EventType, id string, at time.Time) *ExpenseEvent {
	return &ExpenseEvent{Type: typ, ID: id, Timestamp: at}
}

func (e *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ExpenseEventFromJSON decodes and checks an event body.
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var ev ExpenseEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	switch ev.Type {
	case EventCreated, EventUpdated, EventDeleted:
		if ev.ID == "" {
			return nil, fmt.Errorf("%s event without id", ev.Type)
		}
	case EventCleared:
	default:
		return nil, fmt.Errorf("unknown event type %q", ev.Type)
	}
	return &ev, nil
}

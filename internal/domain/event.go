package domain

import (
	"strconv"
	"time"
)

// EventType represents the type of a catalog or directory event
type EventType string

const (
	EventProductCreated       EventType = "product.created"
	EventProductUpdated       EventType = "product.updated"
	EventProductDeleted       EventType = "product.deleted"
	EventProductStockAdjusted EventType = "product.stock_adjusted"

	EventUserCreated         EventType = "user.created"
	EventUserUpdated         EventType = "user.updated"
	EventUserDeactivated     EventType = "user.deactivated"
	EventUserUnlocked        EventType = "user.unlocked"
	EventUserPasswordChanged EventType = "user.password_changed"
	EventUserLocked          EventType = "user.locked"
)

// Event is a domain event published after a successful mutation
type Event struct {
	EventID     string      `json:"event_id"`
	EventType   EventType   `json:"event_type"`
	AggregateID string      `json:"aggregate_id"`
	OccurredAt  time.Time   `json:"occurred_at"`
	Version     int         `json:"version"`
	Data        interface{} `json:"data,omitempty"`
}

// Key returns the partition key, so events of one aggregate stay ordered
func (e *Event) Key() string {
	return e.AggregateID
}

// NewProductEvent creates an event carrying the public product view
func NewProductEvent(eventType EventType, eventID string, productID int, data *PublicProduct) *Event {
	e := &Event{
		EventID:     eventID,
		EventType:   eventType,
		AggregateID: "product-" + strconv.Itoa(productID),
		OccurredAt:  time.Now().UTC(),
		Version:     1,
	}
	if data != nil {
		e.Data = data
	}
	return e
}

// NewUserEvent creates an event carrying the public user view. The password
// hash is never part of an event.
func NewUserEvent(eventType EventType, eventID string, userID int, data *PublicUser) *Event {
	e := &Event{
		EventID:     eventID,
		EventType:   eventType,
		AggregateID: "user-" + strconv.Itoa(userID),
		OccurredAt:  time.Now().UTC(),
		Version:     1,
	}
	if data != nil {
		e.Data = data
	}
	return e
}

package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types on the storefront topic.
const (
	TypeOrderPlaced = "order.placed"
	TypeOrderClosed = "order.closed"
	TypeOrderPaid   = "order.paid" // produced by the payment system
)

type Event struct {
	EventID   string         `json:"event_id"`
	Type      string         `json:"type"`
	OrderID   int64          `json:"order_id"`
	UserID    int64          `json:"user_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// New stamps a fresh event id and time.
func New(eventType string, orderID, userID int64, payload map[string]any) Event {
	return Event{
		EventID:   uuid.NewString(),
		Type:      eventType,
		OrderID:   orderID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
		Payload:   payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

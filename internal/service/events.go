package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

type UserEvent struct {
	Type   string    `json:"type"`
	UserID uuid.UUID `json:"userID"`
	Email  string    `json:"email"`
}

type ItemEvent struct {
	Type   string    `json:"type"`
	ItemID uuid.UUID `json:"itemID"`
	UserID uuid.UUID `json:"userID"`
	Title  string    `json:"title,omitempty"`
	Price  int64     `json:"price,omitempty"`
}

type CartEvent struct {
	Type       string    `json:"type"`
	UserID     uuid.UUID `json:"userID"`
	ItemID     uuid.UUID `json:"itemID"`
	CartItemID uuid.UUID `json:"cartItemID"`
	Quantity   uint      `json:"quantity"`
}

type OrderEvent struct {
	Type    string    `json:"type"`
	OrderID uuid.UUID `json:"orderID"`
	UserID  uuid.UUID `json:"userID"`
	Total   int64     `json:"total"`
	Charge  string    `json:"charge"`
	Items   int       `json:"items"`
}

// publish is best effort: a failed publish is logged and never fails the
// operation that produced the event.
func publish(ctx context.Context, pub EventPublisher, topic, key string, event any) {
	if pub == nil {
		return
	}
	if err := pub.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "topic", topic, "key", key, "error", err)
	}
}

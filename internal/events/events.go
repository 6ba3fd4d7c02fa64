// Package events carries order lifecycle events between the API and the
// background workers. RabbitMQ and Kafka transports share one envelope.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	OrderCreated       Type = "order.created"
	OrderStatusChanged Type = "order.status_changed"
)

type OrderEvent struct {
	ID         uuid.UUID `json:"id"`
	Type       Type      `json:"type"`
	OrderID    uuid.UUID `json:"order_id"`
	ShopID     uuid.UUID `json:"shop_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewOrderEvent(t Type, orderID, shopID uuid.UUID, status string, at time.Time) OrderEvent {
	return OrderEvent{ID: uuid.New(), Type: t, OrderID: orderID, ShopID: shopID, Status: status, OccurredAt: at}
}

type Publisher interface {
	Publish(ctx context.Context, ev OrderEvent) error
}

// Handler processes one event. Returning an error dead-letters or retries it.
type Handler func(ctx context.Context, ev OrderEvent) error

type Subscriber interface {
	Subscribe(ctx context.Context, h Handler) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, OrderEvent) error { return nil }

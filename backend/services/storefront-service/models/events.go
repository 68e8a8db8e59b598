package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated      = "order.created"
	EventOrderCompleted    = "order.completed"
	EventDeliveryCompleted = "delivery.completed"
)

// OrderEvent is published after an order commits or completes.
type OrderEvent struct {
	Event       string          `json:"event"`
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	UserID      uuid.UUID       `json:"user_id"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	BonusUsed   int64           `json:"bonus_used"`
	BonusEarned int64           `json:"bonus_earned"`
	Timestamp   time.Time       `json:"timestamp"`
}

func NewOrderEvent(event string, o *Order, at time.Time) OrderEvent {
	return OrderEvent{
		Event:       event,
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		BonusUsed:   o.BonusUsed,
		BonusEarned: o.BonusEarned,
		Timestamp:   at,
	}
}

// FulfillmentEvent arrives from the delivery side and completes an order.
type FulfillmentEvent struct {
	Event     string    `json:"event"`
	OrderID   string    `json:"order_id"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

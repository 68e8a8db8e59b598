package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
)

func (s OrderStatus) Valid() bool {
	return s == OrderStatusPending || s == OrderStatusCompleted
}

// CanTransitionTo allows only pending -> completed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return s == OrderStatusPending && next == OrderStatusCompleted
}

type PaymentStatus string

const PaymentStatusPaid PaymentStatus = "paid"

const PaymentMethodCard = "card"

// Order is created only by checkout. TotalAmount is what was charged after the
// bonus discount; BonusEarned was computed from the pre-discount subtotal.
type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderNumber     string          `gorm:"type:varchar(40);uniqueIndex;not null" json:"order_number"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	CardID          uuid.UUID       `gorm:"type:uuid;not null" json:"card_id"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(20);not null" json:"payment_status"`
	PaymentMethod   string          `gorm:"type:varchar(20);not null" json:"payment_method"`
	SubtotalAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal_amount"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	BonusUsed       int64           `gorm:"not null" json:"bonus_used"`
	BonusEarned     int64           `gorm:"not null" json:"bonus_earned"`
	DeliveryAddress string          `gorm:"type:text;not null" json:"delivery_address"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	OrderItems      []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem is an immutable snapshot of a cart line at checkout time.
type OrderItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName  string          `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	PricePerUnit decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price_per_unit"`
}

func (o *Order) ItemsCount() int {
	n := 0
	for _, it := range o.OrderItems {
		n += it.Quantity
	}
	return n
}

// NewOrderNumber formats ORD-YYYYMMDD-HHMMSS-xxxxxxxx.
func NewOrderNumber(now time.Time, id uuid.UUID) string {
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102-150405"), id.String()[:8])
}

// OrderSummary is returned by checkout.
type OrderSummary struct {
	OrderID         uuid.UUID       `json:"order_id"`
	OrderNumber     string          `json:"order_number"`
	Status          OrderStatus     `json:"status"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	SubtotalAmount  decimal.Decimal `json:"original_amount"`
	Discount        decimal.Decimal `json:"discount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	BonusUsed       int64           `json:"bonus_used"`
	BonusEarned     int64           `json:"bonus_earned"`
	BonusBalance    int64           `json:"bonus_balance"`
	DeliveryAddress string          `json:"delivery_address"`
	ItemsCount      int             `json:"items_count"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PendingOrder is a row of the fulfillment queue shown to admins.
type PendingOrder struct {
	ID              uuid.UUID       `json:"id"`
	OrderNumber     string          `json:"order_number"`
	UserID          uuid.UUID       `json:"user_id"`
	FirstName       string          `json:"first_name"`
	LastName        string          `json:"last_name"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	DeliveryAddress string          `json:"delivery_address"`
	CreatedAt       time.Time       `json:"created_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is the single server-side cart of a user. Version is bumped by every
// mutation and checked by checkout.
type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Version   int64      `gorm:"not null" json:"version"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CartID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product" json:"cart_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product" json:"product_id"`
	Quantity  int       `gorm:"not null;check:chk_cart_items_quantity_positive,quantity > 0" json:"quantity"`
	AddedAt   time.Time `gorm:"autoCreateTime" json:"added_at"`
}

// CartLine is a cart item joined with the current product name and price.
type CartLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

func (l CartLine) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartSnapshot is what checkout reads before opening its transaction.
type CartSnapshot struct {
	CartID  uuid.UUID
	Version int64
	Lines   []CartLine
}

// Subtotal is the sum of price x quantity over all lines.
func (s *CartSnapshot) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Total())
	}
	return total
}

func (s *CartSnapshot) ItemCount() int {
	n := 0
	for _, l := range s.Lines {
		n += l.Quantity
	}
	return n
}

// LineQuantity is a product/quantity pair as sent by clients and kept in guest carts.
type LineQuantity struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
}

// MergeLines folds guest lines into the server lines. Quantities of the same
// product are summed, first-seen order is kept and non-positive entries are
// dropped. It never mutates its inputs.
func MergeLines(server, guest []LineQuantity) []LineQuantity {
	merged := make([]LineQuantity, 0, len(server)+len(guest))
	index := make(map[uuid.UUID]int, len(server)+len(guest))

	add := func(l LineQuantity) {
		if l.Quantity <= 0 {
			return
		}
		if i, ok := index[l.ProductID]; ok {
			merged[i].Quantity += l.Quantity
			return
		}
		index[l.ProductID] = len(merged)
		merged = append(merged, l)
	}

	for _, l := range server {
		add(l)
	}
	for _, l := range guest {
		add(l)
	}
	return merged
}

// CartView is the API representation of a cart.
type CartView struct {
	Lines    []CartLineView  `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Count    int             `json:"items_count"`
}

type CartLineView struct {
	CartLine
	LineTotal decimal.Decimal `json:"line_total"`
}

func NewCartView(lines []CartLine) CartView {
	snap := CartSnapshot{Lines: lines}
	view := CartView{Lines: make([]CartLineView, 0, len(lines)), Subtotal: snap.Subtotal(), Count: snap.ItemCount()}
	for _, l := range lines {
		view.Lines = append(view.Lines, CartLineView{CartLine: l, LineTotal: l.Total()})
	}
	return view
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. QuantityInStock is decremented only by checkout.
type Product struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	Description     string          `gorm:"type:text" json:"description"`
	Price           decimal.Decimal `gorm:"type:numeric(10,2);not null;check:chk_products_price_positive,price > 0" json:"price"`
	QuantityInStock int             `gorm:"not null;check:chk_products_stock_non_negative,quantity_in_stock >= 0" json:"quantity_in_stock"`
	SKU             string          `gorm:"column:sku;type:varchar(64);uniqueIndex;not null" json:"sku"`
	ImageURL        string          `gorm:"type:varchar(500)" json:"image_url"`
	Category        string          `gorm:"type:varchar(100);index" json:"category"`
	IsActive        bool            `gorm:"not null;index" json:"is_active"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	CartItems  []CartItem  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	OrderItems []OrderItem `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
}

// Purchasable reports whether the product shows in the storefront listing.
func (p *Product) Purchasable() bool {
	return p.IsActive && p.QuantityInStock > 0
}

// ProductUpdate carries a partial admin update; nil fields are left untouched.
type ProductUpdate struct {
	Name            *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description     *string          `json:"description"`
	Price           *decimal.Decimal `json:"price"`
	QuantityInStock *int             `json:"quantity_in_stock" validate:"omitempty,gte=0"`
	Category        *string          `json:"category" validate:"omitempty,max=100"`
	IsActive        *bool            `json:"is_active"`
}

// Empty reports whether the update names no field at all.
func (u ProductUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil &&
		u.QuantityInStock == nil && u.Category == nil && u.IsActive == nil
}

// Columns returns the column map for a gorm Updates call.
func (u ProductUpdate) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.Description != nil {
		cols["description"] = *u.Description
	}
	if u.Price != nil {
		cols["price"] = *u.Price
	}
	if u.QuantityInStock != nil {
		cols["quantity_in_stock"] = *u.QuantityInStock
	}
	if u.Category != nil {
		cols["category"] = *u.Category
	}
	if u.IsActive != nil {
		cols["is_active"] = *u.IsActive
	}
	return cols
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products []Product `json:"products"`
	Total    int64     `json:"total"`
}

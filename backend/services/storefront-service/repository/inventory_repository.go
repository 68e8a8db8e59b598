package repository

import (
	"context"
	"fmt"

	apperrors "github.com/LiverNeZelc/vikaproject/backend/services/common/errors"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryRepository owns stock levels. It has no increment operation:
// stock only moves down through checkout or is set by an admin product update.
type InventoryRepository interface {
	// Decrement removes qty units if that many are available and returns the
	// remaining stock.
	Decrement(ctx context.Context, productID uuid.UUID, qty int) (int, error)
}

type GormInventoryRepository struct {
	db *gorm.DB
}

func NewGormInventoryRepository(db *gorm.DB) InventoryRepository {
	return &GormInventoryRepository{db: db}
}

func (r *GormInventoryRepository) Decrement(ctx context.Context, productID uuid.UUID, qty int) (int, error) {
	if qty <= 0 {
		return 0, apperrors.ErrValidation.WithMessage("quantity must be positive")
	}

	var product models.Product
	res := r.db.WithContext(ctx).
		Model(&product).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "quantity_in_stock"}}}).
		Where("id = ? AND quantity_in_stock >= ?", productID, qty).
		UpdateColumn("quantity_in_stock", gorm.Expr("quantity_in_stock - ?", qty))
	if res.Error != nil {
		return 0, fmt.Errorf("decrement stock of %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, apperrors.ErrInsufficientStock.WithMessage("Insufficient stock for product %s", productID)
	}
	return product.QuantityInStock, nil
}

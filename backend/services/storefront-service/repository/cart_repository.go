package repository

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/LiverNeZelc/vikaproject/backend/services/common/errors"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository persists the per-user cart. Every mutating method bumps the
// cart version in the same transaction as the line change, and bumps it first:
// the carts row is always locked before any cart_items row, the same order
// checkout takes.
type CartRepository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Lines(ctx context.Context, cartID uuid.UUID) ([]models.CartLine, error)
	// Snapshot returns an empty snapshot when the user has no cart yet.
	Snapshot(ctx context.Context, userID uuid.UUID) (*models.CartSnapshot, error)
	AddItem(ctx context.Context, cartID, productID uuid.UUID, qty int) error
	// ChangeQuantity applies delta and removes the line when the result is not
	// positive. It returns the resulting quantity, 0 when removed.
	ChangeQuantity(ctx context.Context, cartID, productID uuid.UUID, delta int) (int, error)
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error
	// ReplaceLines writes merged lines if the cart is still at expectedVersion.
	ReplaceLines(ctx context.Context, cartID uuid.UUID, expectedVersion int64, lines []models.LineQuantity) error
	// LockVersion is the optimistic check used by checkout.
	LockVersion(ctx context.Context, cartID uuid.UUID, version int64) error
	Clear(ctx context.Context, cartID uuid.UUID) error
}

type GormCartRepository struct {
	db *gorm.DB
}

func NewGormCartRepository(db *gorm.DB) CartRepository {
	return &GormCartRepository{db: db}
}

func (r *GormCartRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	fresh := models.Cart{ID: uuid.New(), UserID: userID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&fresh).Error
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}

	var cart models.Cart
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return &cart, nil
}

func (r *GormCartRepository) Lines(ctx context.Context, cartID uuid.UUID) ([]models.CartLine, error) {
	lines := []models.CartLine{}
	err := r.db.WithContext(ctx).
		Table("cart_items ci").
		Select("ci.product_id, p.name, p.price, ci.quantity").
		Joins("JOIN products p ON p.id = ci.product_id").
		Where("ci.cart_id = ?", cartID).
		Order("ci.added_at ASC").
		Scan(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("load cart lines: %w", err)
	}
	return lines, nil
}

func (r *GormCartRepository) Snapshot(ctx context.Context, userID uuid.UUID) (*models.CartSnapshot, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.CartSnapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	lines, err := r.Lines(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	return &models.CartSnapshot{CartID: cart.ID, Version: cart.Version, Lines: lines}, nil
}

func (r *GormCartRepository) AddItem(ctx context.Context, cartID, productID uuid.UUID, qty int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bumpVersion(tx, cartID); err != nil {
			return err
		}
		return upsertLine(tx, cartID, productID, qty, true)
	})
	return lockConflict(err)
}

func (r *GormCartRepository) ChangeQuantity(ctx context.Context, cartID, productID uuid.UUID, delta int) (int, error) {
	var result int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bumpVersion(tx, cartID); err != nil {
			return err
		}

		var item models.CartItem
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("cart_id = ? AND product_id = ?", cartID, productID).
			First(&item).Error
		if err != nil {
			return translate(err, apperrors.ErrNotFound.WithMessage("Product is not in the cart"))
		}

		result = item.Quantity + delta
		if result <= 0 {
			result = 0
			err = tx.Where("id = ?", item.ID).Delete(&models.CartItem{}).Error
		} else {
			err = tx.Model(&models.CartItem{}).Where("id = ?", item.ID).UpdateColumn("quantity", result).Error
		}
		return err
	})
	return result, lockConflict(err)
}

func (r *GormCartRepository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bumpVersion(tx, cartID); err != nil {
			return err
		}
		res := tx.Where("cart_id = ? AND product_id = ?", cartID, productID).Delete(&models.CartItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound.WithMessage("Product is not in the cart")
		}
		return nil
	})
	return lockConflict(err)
}

func (r *GormCartRepository) ReplaceLines(ctx context.Context, cartID uuid.UUID, expectedVersion int64, lines []models.LineQuantity) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := NewGormCartRepository(tx).LockVersion(ctx, cartID, expectedVersion); err != nil {
			return err
		}
		for _, l := range lines {
			if err := upsertLine(tx, cartID, l.ProductID, l.Quantity, false); err != nil {
				return err
			}
		}
		return nil
	})
	return lockConflict(err)
}

func (r *GormCartRepository) LockVersion(ctx context.Context, cartID uuid.UUID, version int64) error {
	res := r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ? AND version = ?", cartID, version).
		UpdateColumn("version", gorm.Expr("version + 1"))
	if res.Error != nil {
		return fmt.Errorf("lock cart: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrConcurrentModification
	}
	return nil
}

func (r *GormCartRepository) Clear(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

// upsertLine inserts a line or, on (cart_id, product_id) conflict, either adds
// to or overwrites the stored quantity.
func upsertLine(tx *gorm.DB, cartID, productID uuid.UUID, qty int, increment bool) error {
	onConflict := gorm.Expr("excluded.quantity")
	if increment {
		onConflict = gorm.Expr("cart_items.quantity + excluded.quantity")
	}
	item := models.CartItem{ID: uuid.New(), CartID: cartID, ProductID: productID, Quantity: qty}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"quantity": onConflict}),
	}).Create(&item).Error
	if err != nil {
		return fmt.Errorf("upsert cart line: %w", err)
	}
	return nil
}

func bumpVersion(tx *gorm.DB, cartID uuid.UUID) error {
	err := tx.Model(&models.Cart{}).
		Where("id = ?", cartID).
		UpdateColumn("version", gorm.Expr("version + 1")).Error
	if err != nil {
		return fmt.Errorf("bump cart version: %w", err)
	}
	return nil
}

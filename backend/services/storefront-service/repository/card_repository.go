package repository

import (
	"context"
	"fmt"

	apperrors "github.com/LiverNeZelc/vikaproject/backend/services/common/errors"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CardRepository interface {
	FindByIDAndUserID(ctx context.Context, id, userID uuid.UUID) (*models.Card, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.Card, error)
	// Debit fails with ErrInsufficientFunds rather than let the balance go negative.
	Debit(ctx context.Context, id, userID uuid.UUID, amount decimal.Decimal) error
}

type GormCardRepository struct {
	db *gorm.DB
}

func NewGormCardRepository(db *gorm.DB) CardRepository {
	return &GormCardRepository{db: db}
}

func (r *GormCardRepository) FindByIDAndUserID(ctx context.Context, id, userID uuid.UUID) (*models.Card, error) {
	var card models.Card
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&card).Error
	if err != nil {
		return nil, translate(err, apperrors.ErrPaymentInstrumentNotFound)
	}
	return &card, nil
}

func (r *GormCardRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.Card, error) {
	var cards []models.Card
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&cards).Error
	return cards, err
}

func (r *GormCardRepository) Debit(ctx context.Context, id, userID uuid.UUID, amount decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&models.Card{}).
		Where("id = ? AND user_id = ? AND balance >= ?", id, userID, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return fmt.Errorf("debit card: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrInsufficientFunds
	}
	return nil
}

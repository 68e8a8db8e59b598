package repository

import (
	"context"
	"fmt"

	apperrors "github.com/LiverNeZelc/vikaproject/backend/services/common/errors"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// AdjustBonus adds earned and subtracts redeemed in one conditional update and
	// returns the new balance. It fails with ErrBonusOverLimit if the balance
	// cannot cover redeemed.
	AdjustBonus(ctx context.Context, userID uuid.UUID, earned, redeemed int64) (int64, error)
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return translate(err, apperrors.ErrNotFound)
	}
	return nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err, apperrors.ErrNotFound.WithMessage("User not found"))
	}
	return &user, nil
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, apperrors.ErrNotFound.WithMessage("User not found"))
	}
	return &user, nil
}

func (r *GormUserRepository) AdjustBonus(ctx context.Context, userID uuid.UUID, earned, redeemed int64) (int64, error) {
	var balance int64
	res := r.db.WithContext(ctx).
		Raw(`UPDATE users SET bonus = bonus + ?, updated_at = NOW() WHERE id = ? AND bonus >= ? RETURNING bonus`,
			earned-redeemed, userID, redeemed).
		Scan(&balance)
	if res.Error != nil {
		return 0, fmt.Errorf("adjust bonus: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, apperrors.ErrBonusOverLimit.WithMessage("Bonus balance changed, not enough points to redeem")
	}
	return balance, nil
}

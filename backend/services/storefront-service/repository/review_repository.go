package repository

import (
	"context"

	apperrors "github.com/LiverNeZelc/vikaproject/backend/services/common/errors"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	ListAll(ctx context.Context) ([]models.ReviewView, error)
	ListPublished(ctx context.Context) ([]models.ReviewView, error)
	// Publish reports false when the review is not in the unverified state.
	Publish(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateComment(ctx context.Context, id uuid.UUID, comment string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormReviewRepository struct {
	db *gorm.DB
}

func NewGormReviewRepository(db *gorm.DB) ReviewRepository {
	return &GormReviewRepository{db: db}
}

func (r *GormReviewRepository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *GormReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&review).Error; err != nil {
		return nil, translate(err, apperrors.ErrNotFound.WithMessage("Review not found"))
	}
	return &review, nil
}

func (r *GormReviewRepository) views() *gorm.DB {
	return r.db.Table("reviews r").
		Select(`r.id, r.user_id, COALESCE(u.first_name || ' ' || u.last_name, 'Guest') AS author_name,
			r.rating, r.comment, r.status, r.created_at`).
		Joins("LEFT JOIN users u ON u.id = r.user_id")
}

// ListAll is the moderation queue, oldest first.
func (r *GormReviewRepository) ListAll(ctx context.Context) ([]models.ReviewView, error) {
	views := []models.ReviewView{}
	err := r.views().WithContext(ctx).Order("r.created_at ASC").Scan(&views).Error
	return views, err
}

func (r *GormReviewRepository) ListPublished(ctx context.Context) ([]models.ReviewView, error) {
	views := []models.ReviewView{}
	err := r.views().WithContext(ctx).
		Where("r.status = ?", models.ReviewStatusPublished).
		Order("r.created_at DESC").
		Scan(&views).Error
	return views, err
}

func (r *GormReviewRepository) Publish(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ? AND status = ?", id, models.ReviewStatusUnverified).
		Update("status", models.ReviewStatusPublished)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormReviewRepository) UpdateComment(ctx context.Context, id uuid.UUID, comment string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ?", id).
		Update("comment", comment)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound.WithMessage("Review not found")
	}
	return nil
}

func (r *GormReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Review{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound.WithMessage("Review not found")
	}
	return nil
}

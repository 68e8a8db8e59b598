package repository

import (
	"context"
	"fmt"

	apperrors "github.com/LiverNeZelc/vikaproject/backend/services/common/errors"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	// ListAvailable is the storefront listing: active products with stock left.
	ListAvailable(ctx context.Context, page, limit int) ([]models.Product, int64, error)
	ListAll(ctx context.Context, page, limit int) ([]models.Product, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id uuid.UUID, update models.ProductUpdate) (*models.Product, error)
	Count(ctx context.Context) (int64, error)
}

type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) ListAvailable(ctx context.Context, page, limit int) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ? AND quantity_in_stock > 0", true)
	return r.paginate(query, page, limit)
}

func (r *GormProductRepository) ListAll(ctx context.Context, page, limit int) ([]models.Product, int64, error) {
	return r.paginate(r.db.WithContext(ctx).Model(&models.Product{}), page, limit)
}

func (r *GormProductRepository) paginate(query *gorm.DB, page, limit int) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.
		Offset((page - 1) * limit).
		Limit(limit).
		Order("created_at DESC").
		Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translate(err, apperrors.ErrNotFound.WithMessage("Product not found"))
	}
	return &p, nil
}

func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *GormProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("create product: %w", translate(err, apperrors.ErrNotFound))
	}
	return nil
}

func (r *GormProductRepository) Update(ctx context.Context, id uuid.UUID, update models.ProductUpdate) (*models.Product, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(update.Columns())
	if res.Error != nil {
		return nil, translate(res.Error, apperrors.ErrNotFound)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrNotFound.WithMessage("Product not found")
	}
	return r.FindByID(ctx, id)
}

func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error
	return n, err
}

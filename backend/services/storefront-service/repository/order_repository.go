package repository

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/LiverNeZelc/vikaproject/backend/services/common/errors"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error)
	ListPending(ctx context.Context) ([]models.PendingOrder, error)
	// MarkCompleted reports false when no pending order with that id exists.
	MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	// DeleteCompleted removes the order only if it is completed and owned by userID.
	DeleteCompleted(ctx context.Context, id, userID uuid.UUID) (bool, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
}

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

// Create inserts the order together with its item snapshots.
func (r *GormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("create order: %w", translate(err, apperrors.ErrNotFound))
	}
	return nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("OrderItems").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, translate(err, apperrors.ErrNotFound.WithMessage("Order not found"))
	}
	return &order, nil
}

// FindByUserID retrieves orders for a specific user with pagination, newest first.
func (r *GormOrderRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("OrderItems").
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// ListPending is the fulfillment queue, oldest first.
func (r *GormOrderRepository) ListPending(ctx context.Context) ([]models.PendingOrder, error) {
	var rows []models.PendingOrder
	err := r.db.WithContext(ctx).
		Table("orders o").
		Select("o.id, o.order_number, o.user_id, u.first_name, u.last_name, o.total_amount, o.delivery_address, o.created_at").
		Joins("JOIN users u ON u.id = o.user_id").
		Where("o.status = ?", models.OrderStatusPending).
		Order("o.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormOrderRepository) MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, models.OrderStatusPending).
		UpdateColumns(map[string]interface{}{
			"status":       models.OrderStatusCompleted,
			"completed_at": at,
			"updated_at":   at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormOrderRepository) DeleteCompleted(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, models.OrderStatusCompleted).
		Delete(&models.Order{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormOrderRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

package repository

import (
	"context"
	"time"

	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AnalyticsRepository runs the read-only aggregates of the admin dashboard.
// Every method counts rows created at or after since.
type AnalyticsRepository interface {
	Profit(ctx context.Context, since time.Time) (decimal.Decimal, error)
	OrderCount(ctx context.Context, since time.Time) (int64, error)
	ItemsSold(ctx context.Context, since time.Time) (int64, error)
	NewUsers(ctx context.Context, since time.Time) (int64, error)
	AverageCheck(ctx context.Context, since time.Time) (decimal.Decimal, error)
	RatingStats(ctx context.Context, since time.Time) (decimal.Decimal, int64, error)
}

type GormAnalyticsRepository struct {
	db *gorm.DB
}

func NewGormAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &GormAnalyticsRepository{db: db}
}

// Profit sums what was charged for completed orders.
func (r *GormAnalyticsRepository) Profit(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	return r.completedOrderAggregate(ctx, "COALESCE(SUM(total_amount), 0)", since)
}

func (r *GormAnalyticsRepository) OrderCount(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("created_at >= ?", since).
		Count(&n).Error
	return n, err
}

func (r *GormAnalyticsRepository) ItemsSold(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Table("order_items oi").
		Select("COALESCE(SUM(oi.quantity), 0)").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.created_at >= ?", since).
		Scan(&n).Error
	return n, err
}

func (r *GormAnalyticsRepository) NewUsers(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("created_at >= ?", since).
		Count(&n).Error
	return n, err
}

func (r *GormAnalyticsRepository) AverageCheck(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	return r.completedOrderAggregate(ctx, "COALESCE(AVG(total_amount), 0)", since)
}

func (r *GormAnalyticsRepository) completedOrderAggregate(ctx context.Context, expr string, since time.Time) (decimal.Decimal, error) {
	var row struct {
		Value decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select(expr+" AS value").
		Where("status = ? AND created_at >= ?", models.OrderStatusCompleted, since).
		Scan(&row).Error
	return row.Value, err
}

func (r *GormAnalyticsRepository) RatingStats(ctx context.Context, since time.Time) (decimal.Decimal, int64, error) {
	var row struct {
		AvgRating decimal.Decimal
		Total     int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg_rating, COUNT(*) AS total").
		Where("created_at >= ?", since).
		Scan(&row).Error
	return row.AvgRating, row.Total, err
}

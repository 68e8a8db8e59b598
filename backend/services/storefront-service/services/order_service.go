package services

import (
	"context"
	"time"

	aws_pkg "github.com/LiverNeZelc/vikaproject/backend/pkg/aws"
	apperrors "github.com/LiverNeZelc/vikaproject/backend/services/common/errors"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/events"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderResponse struct {
	Orders []models.Order `json:"orders"`
	Meta   MetaData       `json:"meta"`
}

type OrderService struct {
	orderRepo repository.OrderRepository
	publisher events.Publisher
	cw        *aws_pkg.MetricsClient
	log       *zap.Logger
	now       func() time.Time
}

func NewOrderService(orderRepo repository.OrderRepository, publisher events.Publisher, cw *aws_pkg.MetricsClient, log *zap.Logger) *OrderService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &OrderService{
		orderRepo: orderRepo,
		publisher: publisher,
		cw:        cw,
		log:       log,
		now:       time.Now,
	}
}

// GetUserOrders retrieves paginated orders for a specific user
func (s *OrderService) GetUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) (*OrderResponse, *ServiceError) {
	orders, total, err := s.orderRepo.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to fetch orders")
	}
	return &OrderResponse{Orders: orders, Meta: newMetaData(page, limit, total)}, nil
}

// GetOrderByID returns an order to its owner or to an admin. Other users get
// a 404 so order ids cannot be guessed at.
func (s *OrderService) GetOrderByID(ctx context.Context, userID uuid.UUID, isAdmin bool, orderID uuid.UUID) (*models.Order, *ServiceError) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to fetch order")
	}
	if !isAdmin && order.UserID != userID {
		return nil, newServiceError(apperrors.ErrNotFound, "Order not found")
	}
	return order, nil
}

// NextOrderNumber is the number the caller's next order will carry: their
// order count plus one.
func (s *OrderService) NextOrderNumber(ctx context.Context, userID uuid.UUID) (int64, *ServiceError) {
	n, err := s.orderRepo.CountByUserID(ctx, userID)
	if err != nil {
		return 0, serviceError(s.log, err, "Failed to count orders")
	}
	return n + 1, nil
}

func (s *OrderService) ListPending(ctx context.Context) ([]models.PendingOrder, *ServiceError) {
	pending, err := s.orderRepo.ListPending(ctx)
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to fetch pending orders")
	}
	return pending, nil
}

// CompleteOrder moves a pending order to completed. Completing an order that
// is already completed changes nothing and returns it as is.
func (s *OrderService) CompleteOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, *ServiceError) {
	now := s.now().UTC()
	changed, err := s.orderRepo.MarkCompleted(ctx, orderID, now)
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to complete order")
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to fetch order")
	}
	if !changed {
		return order, nil
	}

	s.log.Info("Order completed", zap.String("order_id", order.ID.String()), zap.String("order_number", order.OrderNumber))
	s.publisher.PublishOrderEvent(ctx, models.NewOrderEvent(models.EventOrderCompleted, order, now))
	recordAsync(s.cw, s.log, func(ctx context.Context, cw *aws_pkg.MetricsClient) error {
		return cw.RecordCount(ctx, aws_pkg.MetricOrdersCompleted, map[string]string{"Service": "storefront"})
	})
	return order, nil
}

// DeleteOrder removes a completed order of the caller. Pending orders cannot
// be deleted; there is no cancellation.
func (s *OrderService) DeleteOrder(ctx context.Context, userID, orderID uuid.UUID) *ServiceError {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return serviceError(s.log, err, "Failed to fetch order")
	}
	if order.UserID != userID {
		return newServiceError(apperrors.ErrForbidden, "You can only delete your own orders")
	}
	if order.Status != models.OrderStatusCompleted {
		return serviceError(s.log, apperrors.ErrInvalidStateForDeletion, "Order not deletable")
	}

	deleted, err := s.orderRepo.DeleteCompleted(ctx, orderID, userID)
	if err != nil {
		return serviceError(s.log, err, "Failed to delete order")
	}
	if !deleted {
		return newServiceError(apperrors.ErrNotFound, "Order not found")
	}
	s.log.Info("Order deleted", zap.String("order_id", orderID.String()), zap.String("user_id", userID.String()))
	return nil
}

package controllers

import (
	"context"
	"net/http"

	apperrors "github.com/LiverNeZelc/vikaproject/backend/services/common/errors"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/middleware"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderService is implemented by *services.OrderService.
type OrderService interface {
	GetUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) (*services.OrderResponse, *services.ServiceError)
	GetOrderByID(ctx context.Context, userID uuid.UUID, isAdmin bool, orderID uuid.UUID) (*models.Order, *services.ServiceError)
	NextOrderNumber(ctx context.Context, userID uuid.UUID) (int64, *services.ServiceError)
	ListPending(ctx context.Context) ([]models.PendingOrder, *services.ServiceError)
	CompleteOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, *services.ServiceError)
	DeleteOrder(ctx context.Context, userID, orderID uuid.UUID) *services.ServiceError
}

type OrderController struct {
	orderService OrderService
}

func NewOrderController(orderService OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

// GetOrders returns paginated orders for the authenticated user
func (oc *OrderController) GetOrders(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	page, limit := parsePaginationParams(ctx)

	result, serviceErr := oc.orderService.GetUserOrders(ctx.Request.Context(), userID, page, limit)
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// GetOrderByID returns a specific order; admins may read any order.
func (oc *OrderController) GetOrderByID(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	orderID, ok := uuidParam(ctx, "id", "order")
	if !ok {
		return
	}

	order, serviceErr := oc.orderService.GetOrderByID(ctx.Request.Context(), userID, middleware.IsAdmin(ctx), orderID)
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

func (oc *OrderController) NextOrderNumber(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	next, serviceErr := oc.orderService.NextOrderNumber(ctx.Request.Context(), userID)
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"next_order_number": next})
}

// GetPendingOrders is the admin fulfillment queue, oldest first.
func (oc *OrderController) GetPendingOrders(ctx *gin.Context) {
	orders, serviceErr := oc.orderService.ListPending(ctx.Request.Context())
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (oc *OrderController) CompleteOrder(ctx *gin.Context) {
	orderID, ok := uuidParam(ctx, "id", "order")
	if !ok {
		return
	}

	order, serviceErr := oc.orderService.CompleteOrder(ctx.Request.Context(), orderID)
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"order_id": order.ID, "status": order.Status})
}

type deleteOrderRequest struct {
	UserID *uuid.UUID `json:"user_id"`
}

func (oc *OrderController) DeleteOrder(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	orderID, ok := uuidParam(ctx, "id", "order")
	if !ok {
		return
	}

	// the body is optional; when it names a user it must be the caller
	var req deleteOrderRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			respondBindError(ctx, err)
			return
		}
	}
	if req.UserID != nil && *req.UserID != userID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own orders", "reason": apperrors.ReasonForbidden})
		return
	}

	if serviceErr := oc.orderService.DeleteOrder(ctx.Request.Context(), userID, orderID); serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

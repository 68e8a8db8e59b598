package controllers

import (
	"context"
	"net/http"

	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CheckoutService interface {
	Checkout(ctx context.Context, userID uuid.UUID, idemKey string, req *services.CheckoutRequest) (*models.OrderSummary, bool, *services.ServiceError)
	Quote(ctx context.Context, userID uuid.UUID, req *services.QuoteRequest) (*services.QuoteResponse, *services.ServiceError)
}

type CheckoutController struct {
	checkoutService CheckoutService
}

func NewCheckoutController(checkoutService CheckoutService) *CheckoutController {
	return &CheckoutController{checkoutService: checkoutService}
}

// Checkout answers 201 for a new order and 200 when an Idempotency-Key replays
// an order that was already placed.
func (cc *CheckoutController) Checkout(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req services.CheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	summary, replayed, serviceErr := cc.checkoutService.Checkout(ctx.Request.Context(), userID, ctx.GetHeader(IdempotencyHeader), &req)
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	ctx.JSON(status, summary)
}

func (cc *CheckoutController) Quote(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req services.QuoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	quote, serviceErr := cc.checkoutService.Quote(ctx.Request.Context(), userID, &req)
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.JSON(http.StatusOK, quote)
}

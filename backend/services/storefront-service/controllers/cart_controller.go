package controllers

import (
	"context"
	"net/http"

	apperrors "github.com/LiverNeZelc/vikaproject/backend/services/common/errors"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*models.CartView, *services.ServiceError)
	AddItem(ctx context.Context, userID uuid.UUID, req *services.AddItemRequest) (*models.CartView, *services.ServiceError)
	ChangeQuantity(ctx context.Context, userID uuid.UUID, req *services.ChangeQuantityRequest) (int, *services.ServiceError)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) *services.ServiceError
	Merge(ctx context.Context, userID uuid.UUID, sessionID, idemKey string, req *services.MergeRequest) (*services.MergeResult, *services.ServiceError)
	GetGuestCart(ctx context.Context, sessionID string) (*models.CartView, *services.ServiceError)
	AddGuestItem(ctx context.Context, sessionID string, req *services.AddItemRequest) (*models.CartView, *services.ServiceError)
	ClearGuestCart(ctx context.Context, sessionID string) *services.ServiceError
}

type CartController struct {
	cartService CartService
}

func NewCartController(cartService CartService) *CartController {
	return &CartController{cartService: cartService}
}

func (cc *CartController) GetCart(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	cart, serviceErr := cc.cartService.GetCart(ctx.Request.Context(), userID)
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.JSON(http.StatusOK, cart)
}

func (cc *CartController) AddItem(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	var req services.AddItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	cart, serviceErr := cc.cartService.AddItem(ctx.Request.Context(), userID, &req)
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.JSON(http.StatusOK, cart)
}

func (cc *CartController) ChangeQuantity(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	var req services.ChangeQuantityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	quantity, serviceErr := cc.cartService.ChangeQuantity(ctx.Request.Context(), userID, &req)
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "quantity": quantity})
}

func (cc *CartController) RemoveItem(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	productID, ok := uuidParam(ctx, "product_id", "product")
	if !ok {
		return
	}
	if serviceErr := cc.cartService.RemoveItem(ctx.Request.Context(), userID, productID); serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// Merge folds a guest cart into the caller's cart at login. Items come from the
// body or, when the body has none, from the server-side guest cart named by
// X-Session-ID.
func (cc *CartController) Merge(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	var req services.MergeRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			respondBindError(ctx, err)
			return
		}
	}
	result, serviceErr := cc.cartService.Merge(ctx.Request.Context(), userID,
		ctx.GetHeader(SessionHeader), ctx.GetHeader(IdempotencyHeader), &req)
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

func sessionID(ctx *gin.Context) (string, bool) {
	sid := ctx.GetHeader(SessionHeader)
	if sid == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": SessionHeader + " header is required", "reason": apperrors.ReasonValidation})
		return "", false
	}
	return sid, true
}

func (cc *CartController) GetGuestCart(ctx *gin.Context) {
	sid, ok := sessionID(ctx)
	if !ok {
		return
	}
	cart, serviceErr := cc.cartService.GetGuestCart(ctx.Request.Context(), sid)
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.JSON(http.StatusOK, cart)
}

func (cc *CartController) AddGuestItem(ctx *gin.Context) {
	sid, ok := sessionID(ctx)
	if !ok {
		return
	}
	var req services.AddItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	cart, serviceErr := cc.cartService.AddGuestItem(ctx.Request.Context(), sid, &req)
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.JSON(http.StatusOK, cart)
}

func (cc *CartController) ClearGuestCart(ctx *gin.Context) {
	sid, ok := sessionID(ctx)
	if !ok {
		return
	}
	if serviceErr := cc.cartService.ClearGuestCart(ctx.Request.Context(), sid); serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.Status(http.StatusNoContent)
}

package controllers

import (
	"net/http"
	"strconv"

	apperrors "github.com/LiverNeZelc/vikaproject/backend/services/common/errors"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/middleware"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionHeader     = "X-Session-ID"
	IdempotencyHeader = "Idempotency-Key"
)

func respondError(ctx *gin.Context, err *services.ServiceError) {
	ctx.JSON(err.StatusCode, gin.H{"error": err.Message, "reason": err.Reason})
}

func respondBindError(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request",
		"reason":  apperrors.ReasonValidation,
		"details": err.Error(),
	})
}

// requireUser writes 401 and returns false when the request is anonymous.
func requireUser(ctx *gin.Context) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "reason": apperrors.ReasonUnauthorized})
		return uuid.Nil, false
	}
	return userID, true
}

func uuidParam(ctx *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + what + " ID format", "reason": apperrors.ReasonValidation})
		return uuid.Nil, false
	}
	return id, true
}

// parsePaginationParams extracts and validates pagination parameters
func parsePaginationParams(ctx *gin.Context) (int, int) {
	const MaxLimit = 100
	const DefaultPage = 1
	const DefaultLimit = 10

	page := ctx.DefaultQuery("page", "1")
	limit := ctx.DefaultQuery("limit", "10")

	pageInt := DefaultPage
	limitInt := DefaultLimit

	if p, err := strconv.Atoi(page); err == nil && p > 0 {
		pageInt = p
	}

	if l, err := strconv.Atoi(limit); err == nil && l > 0 {
		limitInt = l
		if limitInt > MaxLimit {
			limitInt = MaxLimit
		}
	}

	return pageInt, limitInt
}

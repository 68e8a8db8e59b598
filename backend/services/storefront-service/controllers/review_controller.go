package controllers

import (
	"context"
	"net/http"

	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/middleware"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReviewService interface {
	CreateReview(ctx context.Context, userID *uuid.UUID, req *services.CreateReviewRequest) (*models.Review, *services.ServiceError)
	ListPublished(ctx context.Context) ([]models.ReviewView, *services.ServiceError)
	ListAll(ctx context.Context) ([]models.ReviewView, *services.ServiceError)
	Publish(ctx context.Context, id uuid.UUID) (*models.Review, *services.ServiceError)
	EditComment(ctx context.Context, id uuid.UUID, req *services.UpdateReviewRequest) (*models.Review, *services.ServiceError)
	Delete(ctx context.Context, id uuid.UUID) *services.ServiceError
}

type ReviewController struct {
	reviewService ReviewService
}

func NewReviewController(reviewService ReviewService) *ReviewController {
	return &ReviewController{reviewService: reviewService}
}

// CreateReview accepts reviews from guests as well; the author is recorded
// only when the caller is signed in.
func (rc *ReviewController) CreateReview(ctx *gin.Context) {
	var req services.CreateReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	review, serviceErr := rc.reviewService.CreateReview(ctx.Request.Context(), middleware.OptionalUserID(ctx), &req)
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"review": review})
}

func (rc *ReviewController) ListPublished(ctx *gin.Context) {
	reviews, serviceErr := rc.reviewService.ListPublished(ctx.Request.Context())
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

func (rc *ReviewController) ListAll(ctx *gin.Context) {
	reviews, serviceErr := rc.reviewService.ListAll(ctx.Request.Context())
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

func (rc *ReviewController) Publish(ctx *gin.Context) {
	id, ok := uuidParam(ctx, "id", "review")
	if !ok {
		return
	}
	review, serviceErr := rc.reviewService.Publish(ctx.Request.Context(), id)
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"review": review})
}

func (rc *ReviewController) EditComment(ctx *gin.Context) {
	id, ok := uuidParam(ctx, "id", "review")
	if !ok {
		return
	}
	var req services.UpdateReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	review, serviceErr := rc.reviewService.EditComment(ctx.Request.Context(), id, &req)
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"review": review})
}

func (rc *ReviewController) Delete(ctx *gin.Context) {
	id, ok := uuidParam(ctx, "id", "review")
	if !ok {
		return
	}
	if serviceErr := rc.reviewService.Delete(ctx.Request.Context(), id); serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

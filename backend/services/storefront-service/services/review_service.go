package services

import (
	"context"
	"strings"

	apperrors "github.com/LiverNeZelc/vikaproject/backend/services/common/errors"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required"`
}

type UpdateReviewRequest struct {
	Comment string `json:"comment" binding:"required"`
}

type ReviewService struct {
	repo repository.ReviewRepository
	log  *zap.Logger
}

func NewReviewService(repo repository.ReviewRepository, log *zap.Logger) *ReviewService {
	return &ReviewService{repo: repo, log: log}
}

// CreateReview stores a review awaiting moderation. userID is nil for guests.
func (s *ReviewService) CreateReview(ctx context.Context, userID *uuid.UUID, req *CreateReviewRequest) (*models.Review, *ServiceError) {
	comment := strings.TrimSpace(req.Comment)
	if comment == "" {
		return nil, newServiceError(apperrors.ErrValidation, "Comment is required")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, newServiceError(apperrors.ErrValidation, "Rating must be between 1 and 5")
	}

	review := &models.Review{
		ID:      uuid.New(),
		UserID:  userID,
		Rating:  req.Rating,
		Comment: comment,
		Status:  models.ReviewStatusUnverified,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, serviceError(s.log, err, "Failed to create review")
	}
	return review, nil
}

func (s *ReviewService) ListPublished(ctx context.Context) ([]models.ReviewView, *ServiceError) {
	reviews, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to fetch reviews")
	}
	return reviews, nil
}

func (s *ReviewService) ListAll(ctx context.Context) ([]models.ReviewView, *ServiceError) {
	reviews, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to fetch reviews")
	}
	return reviews, nil
}

// Publish is one-way; publishing a published review returns it unchanged.
func (s *ReviewService) Publish(ctx context.Context, id uuid.UUID) (*models.Review, *ServiceError) {
	if _, err := s.repo.Publish(ctx, id); err != nil {
		return nil, serviceError(s.log, err, "Failed to publish review")
	}
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to fetch review")
	}
	return review, nil
}

func (s *ReviewService) EditComment(ctx context.Context, id uuid.UUID, req *UpdateReviewRequest) (*models.Review, *ServiceError) {
	comment := strings.TrimSpace(req.Comment)
	if comment == "" {
		return nil, newServiceError(apperrors.ErrValidation, "Comment is required")
	}
	if err := s.repo.UpdateComment(ctx, id, comment); err != nil {
		return nil, serviceError(s.log, err, "Failed to update review")
	}
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to fetch review")
	}
	return review, nil
}

func (s *ReviewService) Delete(ctx context.Context, id uuid.UUID) *ServiceError {
	if err := s.repo.Delete(ctx, id); err != nil {
		return serviceError(s.log, err, "Failed to delete review")
	}
	s.log.Info("Review deleted", zap.String("review_id", id.String()))
	return nil
}

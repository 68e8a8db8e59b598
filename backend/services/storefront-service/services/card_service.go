package services

import (
	"context"

	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CardService struct {
	repo repository.CardRepository
	log  *zap.Logger
}

func NewCardService(repo repository.CardRepository, log *zap.Logger) *CardService {
	return &CardService{repo: repo, log: log}
}

func (s *CardService) ListCards(ctx context.Context, userID uuid.UUID) ([]models.Card, *ServiceError) {
	cards, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to fetch cards")
	}
	return cards, nil
}

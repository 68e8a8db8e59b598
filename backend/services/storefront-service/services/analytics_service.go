package services

import (
	"context"
	"time"

	apperrors "github.com/LiverNeZelc/vikaproject/backend/services/common/errors"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AnalyticsService struct {
	repo repository.AnalyticsRepository
	log  *zap.Logger
	now  func() time.Time
}

func NewAnalyticsService(repo repository.AnalyticsRepository, log *zap.Logger) *AnalyticsService {
	return &AnalyticsService{repo: repo, log: log, now: time.Now}
}

// Summary computes the dashboard for period. The aggregates are independent
// reads and run concurrently.
func (s *AnalyticsService) Summary(ctx context.Context, period string) (*models.Analytics, *ServiceError) {
	p, err := models.ParseAnalyticsPeriod(period)
	if err != nil {
		return nil, newServiceError(apperrors.ErrValidation, "Unknown period %q, expected day, week, month or year", period)
	}
	since := p.Since(s.now())
	out := &models.Analytics{Period: p, Since: since}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Profit, err = s.repo.Profit(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		out.OrderCount, err = s.repo.OrderCount(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		out.ItemsSold, err = s.repo.ItemsSold(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		out.NewUsers, err = s.repo.NewUsers(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		out.AvgCheck, err = s.repo.AverageCheck(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		out.AvgRating, out.ReviewCount, err = s.repo.RatingStats(gctx, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, serviceError(s.log, err, "Failed to compute analytics")
	}

	out.Profit = out.Profit.Round(2)
	out.AvgCheck = out.AvgCheck.Round(2)
	out.AvgRating = out.AvgRating.Round(2)
	return out, nil
}

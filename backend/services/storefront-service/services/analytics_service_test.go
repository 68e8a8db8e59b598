package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	apperrors "github.com/LiverNeZelc/vikaproject/backend/services/common/errors"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockAnalyticsRepo struct {
	mock.Mock
}

func (m *mockAnalyticsRepo) Profit(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockAnalyticsRepo) OrderCount(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAnalyticsRepo) ItemsSold(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAnalyticsRepo) NewUsers(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAnalyticsRepo) AverageCheck(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockAnalyticsRepo) RatingStats(ctx context.Context, since time.Time) (decimal.Decimal, int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(decimal.Decimal), args.Get(1).(int64), args.Error(2)
}

func TestAnalyticsSummary_Week(t *testing.T) {
	now := time.Date(2026, 5, 20, 15, 45, 0, 0, time.UTC)
	since := time.Date(2026, 5, 13, 0, 0, 0, 0, time.UTC)

	repo := new(mockAnalyticsRepo)
	repo.On("Profit", mock.Anything, since).Return(dec("1234.5"), nil)
	repo.On("OrderCount", mock.Anything, since).Return(int64(12), nil)
	repo.On("ItemsSold", mock.Anything, since).Return(int64(30), nil)
	repo.On("NewUsers", mock.Anything, since).Return(int64(4), nil)
	repo.On("AverageCheck", mock.Anything, since).Return(dec("102.876"), nil)
	repo.On("RatingStats", mock.Anything, since).Return(dec("4.3333"), int64(3), nil)

	svc := NewAnalyticsService(repo, zap.NewNop())
	svc.now = func() time.Time { return now }

	out, svcErr := svc.Summary(context.Background(), "week")

	require.Nil(t, svcErr)
	assert.Equal(t, models.PeriodWeek, out.Period)
	assert.Equal(t, since, out.Since)
	assert.Equal(t, "1234.50", out.Profit.StringFixed(2))
	assert.Equal(t, "102.88", out.AvgCheck.String())
	assert.Equal(t, "4.33", out.AvgRating.String())
	assert.Equal(t, int64(12), out.OrderCount)
	assert.Equal(t, int64(30), out.ItemsSold)
	assert.Equal(t, int64(4), out.NewUsers)
	assert.Equal(t, int64(3), out.ReviewCount)
	repo.AssertExpectations(t)
}

func TestAnalyticsSummary_UnknownPeriod(t *testing.T) {
	_, svcErr := NewAnalyticsService(new(mockAnalyticsRepo), zap.NewNop()).Summary(context.Background(), "decade")
	assertRejected(t, svcErr, http.StatusBadRequest, apperrors.ReasonValidation)
}

func TestAnalyticsSummary_QueryFailure(t *testing.T) {
	repo := new(mockAnalyticsRepo)
	repo.On("Profit", mock.Anything, mock.Anything).Return(decimal.Zero, errors.New("timeout"))
	repo.On("OrderCount", mock.Anything, mock.Anything).Return(int64(0), nil)
	repo.On("ItemsSold", mock.Anything, mock.Anything).Return(int64(0), nil)
	repo.On("NewUsers", mock.Anything, mock.Anything).Return(int64(0), nil)
	repo.On("AverageCheck", mock.Anything, mock.Anything).Return(decimal.Zero, nil)
	repo.On("RatingStats", mock.Anything, mock.Anything).Return(decimal.Zero, int64(0), nil)

	_, svcErr := NewAnalyticsService(repo, zap.NewNop()).Summary(context.Background(), "day")

	assertRejected(t, svcErr, http.StatusInternalServerError, apperrors.ReasonInternal)
}

package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	apperrors "github.com/LiverNeZelc/vikaproject/backend/services/common/errors"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockOrderRepo struct {
	mock.Mock
}

var _ repository.OrderRepository = (*mockOrderRepo)(nil)

func (m *mockOrderRepo) Create(ctx context.Context, order *models.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *mockOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Error(1)
}

func (m *mockOrderRepo) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	orders, _ := args.Get(0).([]models.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *mockOrderRepo) ListPending(ctx context.Context) ([]models.PendingOrder, error) {
	args := m.Called(ctx)
	pending, _ := args.Get(0).([]models.PendingOrder)
	return pending, args.Error(1)
}

func (m *mockOrderRepo) MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrderRepo) DeleteCompleted(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrderRepo) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// memOrders keeps orders, with their items, in the memStore.
type memOrders struct{ s *memStore }

func (m memOrders) Create(_ context.Context, order *models.Order) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.st.orders[order.ID] = *order
	return nil
}

func (m memOrders) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return m.s.FindByID(ctx, id)
}

func (m memOrders) FindByUserID(_ context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []models.Order
	for _, o := range m.s.st.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

func (m memOrders) ListPending(context.Context) ([]models.PendingOrder, error) {
	return nil, nil
}

func (m memOrders) MarkCompleted(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	o, ok := m.s.st.orders[id]
	if !ok || o.Status != models.OrderStatusPending {
		return false, nil
	}
	o.Status = models.OrderStatusCompleted
	o.CompletedAt = &at
	m.s.st.orders[id] = o
	return true, nil
}

func (m memOrders) DeleteCompleted(_ context.Context, id, userID uuid.UUID) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	o, ok := m.s.st.orders[id]
	if !ok || o.Status != models.OrderStatusCompleted || o.UserID != userID {
		return false, nil
	}
	delete(m.s.st.orders, id)
	return true, nil
}

func (m memOrders) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for _, o := range m.s.st.orders {
		if o.UserID == userID {
			n++
		}
	}
	return n, nil
}

func TestDeleteOrder_OnlyAfterCompletion(t *testing.T) {
	f := newCheckoutFixture(t, 0, "100.00")
	productID := f.store.addProduct("Mug", "20.00", 4)
	f.store.putInCart(f.userID, productID, 2)
	summary, _, svcErr := f.svc.Checkout(context.Background(), f.userID, "", f.request(0))
	require.Nil(t, svcErr)

	pub := &recordingPublisher{}
	orders := NewOrderService(memOrders{s: f.store}, pub, nil, zap.NewNop())

	svcErr = orders.DeleteOrder(context.Background(), f.userID, summary.OrderID)
	assertRejected(t, svcErr, http.StatusBadRequest, apperrors.ReasonInvalidStateForDeletion)
	require.Contains(t, f.store.snapshot().orders, summary.OrderID)

	completed, svcErr := orders.CompleteOrder(context.Background(), summary.OrderID)
	require.Nil(t, svcErr)
	assert.Equal(t, models.OrderStatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)

	require.Nil(t, orders.DeleteOrder(context.Background(), f.userID, summary.OrderID))
	assert.NotContains(t, f.store.snapshot().orders, summary.OrderID)

	evts := pub.published()
	require.Len(t, evts, 1)
	assert.Equal(t, models.EventOrderCompleted, evts[0].Event)
}

func TestDeleteOrder_NotOwner(t *testing.T) {
	repo := new(mockOrderRepo)
	orderID, owner := uuid.New(), uuid.New()
	repo.On("FindByID", mock.Anything, orderID).
		Return(&models.Order{ID: orderID, UserID: owner, Status: models.OrderStatusCompleted}, nil)

	svc := NewOrderService(repo, nil, nil, zap.NewNop())
	svcErr := svc.DeleteOrder(context.Background(), uuid.New(), orderID)

	assertRejected(t, svcErr, http.StatusForbidden, apperrors.ReasonForbidden)
	repo.AssertNotCalled(t, "DeleteCompleted", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteOrder_Missing(t *testing.T) {
	repo := new(mockOrderRepo)
	orderID := uuid.New()
	repo.On("FindByID", mock.Anything, orderID).Return(nil, apperrors.ErrNotFound.WithMessage("Order not found"))

	svc := NewOrderService(repo, nil, nil, zap.NewNop())
	svcErr := svc.DeleteOrder(context.Background(), uuid.New(), orderID)

	assertRejected(t, svcErr, http.StatusNotFound, apperrors.ReasonNotFound)
	assert.Equal(t, "Order not found", svcErr.Message)
}

func TestCompleteOrder_AlreadyCompletedIsNoop(t *testing.T) {
	repo := new(mockOrderRepo)
	orderID := uuid.New()
	done := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	repo.On("MarkCompleted", mock.Anything, orderID, mock.AnythingOfType("time.Time")).Return(false, nil)
	repo.On("FindByID", mock.Anything, orderID).
		Return(&models.Order{ID: orderID, Status: models.OrderStatusCompleted, CompletedAt: &done}, nil)
	pub := &recordingPublisher{}

	svc := NewOrderService(repo, pub, nil, zap.NewNop())
	order, svcErr := svc.CompleteOrder(context.Background(), orderID)

	require.Nil(t, svcErr)
	assert.Equal(t, done, *order.CompletedAt)
	assert.Empty(t, pub.published())
	repo.AssertExpectations(t)
}

func TestCompleteOrder_Missing(t *testing.T) {
	repo := new(mockOrderRepo)
	orderID := uuid.New()
	repo.On("MarkCompleted", mock.Anything, orderID, mock.Anything).Return(false, nil)
	repo.On("FindByID", mock.Anything, orderID).Return(nil, apperrors.ErrNotFound.WithMessage("Order not found"))

	svc := NewOrderService(repo, nil, nil, zap.NewNop())
	_, svcErr := svc.CompleteOrder(context.Background(), orderID)

	assertRejected(t, svcErr, http.StatusNotFound, apperrors.ReasonNotFound)
}

func TestCompleteOrder_DatabaseError(t *testing.T) {
	repo := new(mockOrderRepo)
	orderID := uuid.New()
	repo.On("MarkCompleted", mock.Anything, orderID, mock.Anything).Return(false, errors.New("connection refused"))

	svc := NewOrderService(repo, nil, nil, zap.NewNop())
	_, svcErr := svc.CompleteOrder(context.Background(), orderID)

	assertRejected(t, svcErr, http.StatusInternalServerError, apperrors.ReasonInternal)
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestGetUserOrders_Pagination(t *testing.T) {
	repo := new(mockOrderRepo)
	userID := uuid.New()
	repo.On("FindByUserID", mock.Anything, userID, 2, 10).Return([]models.Order{{ID: uuid.New()}}, int64(21), nil)

	svc := NewOrderService(repo, nil, nil, zap.NewNop())
	resp, svcErr := svc.GetUserOrders(context.Background(), userID, 2, 10)

	require.Nil(t, svcErr)
	assert.Len(t, resp.Orders, 1)
	assert.Equal(t, MetaData{Page: 2, Limit: 10, Total: 21, TotalPages: 3, HasMore: true}, resp.Meta)
}

func TestGetOrderByID_HidesOtherUsersOrders(t *testing.T) {
	repo := new(mockOrderRepo)
	orderID, owner := uuid.New(), uuid.New()
	repo.On("FindByID", mock.Anything, orderID).Return(&models.Order{ID: orderID, UserID: owner}, nil)
	svc := NewOrderService(repo, nil, nil, zap.NewNop())

	_, svcErr := svc.GetOrderByID(context.Background(), uuid.New(), false, orderID)
	assertRejected(t, svcErr, http.StatusNotFound, apperrors.ReasonNotFound)

	order, svcErr := svc.GetOrderByID(context.Background(), uuid.New(), true, orderID)
	require.Nil(t, svcErr)
	assert.Equal(t, owner, order.UserID)

	_, svcErr = svc.GetOrderByID(context.Background(), owner, false, orderID)
	require.Nil(t, svcErr)
}

func TestNextOrderNumber(t *testing.T) {
	repo := new(mockOrderRepo)
	userID := uuid.New()
	repo.On("CountByUserID", mock.Anything, userID).Return(int64(41), nil)

	n, svcErr := NewOrderService(repo, nil, nil, zap.NewNop()).NextOrderNumber(context.Background(), userID)

	require.Nil(t, svcErr)
	assert.Equal(t, int64(42), n)
}

func TestNextOrderNumber_CountsOnlyTheCallersOrders(t *testing.T) {
	orders := memOrders{s: newMemStore()}
	alice, bob := uuid.New(), uuid.New()
	for _, owner := range []uuid.UUID{alice, alice, alice, bob} {
		require.NoError(t, orders.Create(context.Background(), &models.Order{ID: uuid.New(), UserID: owner, Status: models.OrderStatusPending}))
	}
	svc := NewOrderService(orders, nil, nil, zap.NewNop())

	n, svcErr := svc.NextOrderNumber(context.Background(), alice)
	require.Nil(t, svcErr)
	assert.Equal(t, int64(4), n)

	n, svcErr = svc.NextOrderNumber(context.Background(), bob)
	require.Nil(t, svcErr)
	assert.Equal(t, int64(2), n)

	n, svcErr = svc.NextOrderNumber(context.Background(), uuid.New())
	require.Nil(t, svcErr)
	assert.Equal(t, int64(1), n)
}

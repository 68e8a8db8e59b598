package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.CartView, *services.ServiceError) {
	args := m.Called(ctx, userID)
	v, _ := args.Get(0).(*models.CartView)
	e, _ := args.Get(1).(*services.ServiceError)
	return v, e
}

func (m *MockCartService) AddItem(ctx context.Context, userID uuid.UUID, req *services.AddItemRequest) (*models.CartView, *services.ServiceError) {
	args := m.Called(ctx, userID, req)
	v, _ := args.Get(0).(*models.CartView)
	e, _ := args.Get(1).(*services.ServiceError)
	return v, e
}

func (m *MockCartService) ChangeQuantity(ctx context.Context, userID uuid.UUID, req *services.ChangeQuantityRequest) (int, *services.ServiceError) {
	args := m.Called(ctx, userID, req)
	e, _ := args.Get(1).(*services.ServiceError)
	return args.Int(0), e
}

func (m *MockCartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) *services.ServiceError {
	e, _ := m.Called(ctx, userID, productID).Get(0).(*services.ServiceError)
	return e
}

func (m *MockCartService) Merge(ctx context.Context, userID uuid.UUID, sessionID, idemKey string, req *services.MergeRequest) (*services.MergeResult, *services.ServiceError) {
	args := m.Called(ctx, userID, sessionID, idemKey, req)
	v, _ := args.Get(0).(*services.MergeResult)
	e, _ := args.Get(1).(*services.ServiceError)
	return v, e
}

func (m *MockCartService) GetGuestCart(ctx context.Context, sessionID string) (*models.CartView, *services.ServiceError) {
	args := m.Called(ctx, sessionID)
	v, _ := args.Get(0).(*models.CartView)
	e, _ := args.Get(1).(*services.ServiceError)
	return v, e
}

func (m *MockCartService) AddGuestItem(ctx context.Context, sessionID string, req *services.AddItemRequest) (*models.CartView, *services.ServiceError) {
	args := m.Called(ctx, sessionID, req)
	v, _ := args.Get(0).(*models.CartView)
	e, _ := args.Get(1).(*services.ServiceError)
	return v, e
}

func (m *MockCartService) ClearGuestCart(ctx context.Context, sessionID string) *services.ServiceError {
	e, _ := m.Called(ctx, sessionID).Get(0).(*services.ServiceError)
	return e
}

func TestChangeQuantityController(t *testing.T) {
	userID, productID := uuid.New(), uuid.New()
	svc := new(MockCartService)
	svc.On("ChangeQuantity", mock.Anything, userID, mock.MatchedBy(func(req *services.ChangeQuantityRequest) bool {
		return req.ProductID == productID && req.Change == -2
	})).Return(0, nil)

	r := gin.New()
	r.PUT("/cart/quantity", asUser(userID, models.RoleUser), NewCartController(svc).ChangeQuantity)

	w := doJSON(r, http.MethodPut, "/cart/quantity", `{"product_id":"`+productID.String()+`","change":-2}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"quantity":0}`, w.Body.String())
}

func TestMergeController_PassesHeaders(t *testing.T) {
	userID := uuid.New()
	svc := new(MockCartService)
	svc.On("Merge", mock.Anything, userID, "sess-1", "merge-1", &services.MergeRequest{}).
		Return(&services.MergeResult{}, nil)

	r := gin.New()
	r.POST("/cart/merge", asUser(userID, models.RoleUser), NewCartController(svc).Merge)

	w := doJSON(r, http.MethodPost, "/cart/merge", "", map[string]string{
		SessionHeader:     "sess-1",
		IdempotencyHeader: "merge-1",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestGuestCartController_RequiresSession(t *testing.T) {
	svc := new(MockCartService)
	svc.On("ClearGuestCart", mock.Anything, "sess-9").Return(nil)

	r := gin.New()
	c := NewCartController(svc)
	r.GET("/guest-cart", c.GetGuestCart)
	r.DELETE("/guest-cart", c.ClearGuestCart)

	w := doJSON(r, http.MethodGet, "/guest-cart", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), SessionHeader)

	w = doJSON(r, http.MethodDelete, "/guest-cart", "", map[string]string{SessionHeader: "sess-9"})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

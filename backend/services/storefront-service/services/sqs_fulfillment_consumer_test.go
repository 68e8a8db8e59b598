package services

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	aws_pkg "github.com/LiverNeZelc/vikaproject/backend/pkg/aws"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) CompleteOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, *ServiceError) {
	args := m.Called(ctx, orderID)
	order, _ := args.Get(0).(*models.Order)
	svcErr, _ := args.Get(1).(*ServiceError)
	return order, svcErr
}

// stubPoller feeds queued bodies to the handler once and returns.
type stubPoller struct {
	bodies []string
	errs   []error
}

func (p *stubPoller) StartPolling(ctx context.Context, handler aws_pkg.MessageHandler) error {
	for _, b := range p.bodies {
		p.errs = append(p.errs, handler(ctx, b))
	}
	return context.Canceled
}

func TestFulfillmentConsumer_CompletesOrder(t *testing.T) {
	orderID := uuid.New()
	completer := new(mockCompleter)
	completer.On("CompleteOrder", mock.Anything, orderID).
		Return(&models.Order{ID: orderID, Status: models.OrderStatusCompleted}, nil)

	c := NewSQSFulfillmentConsumer(nil, completer, nil, zap.NewNop())
	err := c.HandleMessage(context.Background(), `{"event":"delivery.completed","order_id":"`+orderID.String()+`"}`)

	require.NoError(t, err)
	completer.AssertExpectations(t)
}

func TestFulfillmentConsumer_UnwrapsSNSEnvelope(t *testing.T) {
	orderID := uuid.New()
	completer := new(mockCompleter)
	completer.On("CompleteOrder", mock.Anything, orderID).Return(&models.Order{ID: orderID}, nil)

	inner, _ := json.Marshal(models.FulfillmentEvent{Event: models.EventDeliveryCompleted, OrderID: orderID.String()})
	envelope, _ := json.Marshal(map[string]string{"Type": "Notification", "Message": string(inner)})

	poller := &stubPoller{bodies: []string{string(envelope)}}
	NewSQSFulfillmentConsumer(poller, completer, nil, zap.NewNop()).Start(context.Background())

	assert.Equal(t, []error{nil}, poller.errs)
	completer.AssertExpectations(t)
}

func TestFulfillmentConsumer_DropsBadMessages(t *testing.T) {
	completer := new(mockCompleter)
	c := NewSQSFulfillmentConsumer(nil, completer, nil, zap.NewNop())

	for _, body := range []string{
		`not json`,
		`{"event":"order.created","order_id":"` + uuid.NewString() + `"}`,
		`{"event":"delivery.completed","order_id":"nope"}`,
	} {
		assert.NoError(t, c.HandleMessage(context.Background(), body), body)
	}
	completer.AssertNotCalled(t, "CompleteOrder", mock.Anything, mock.Anything)
}

func TestFulfillmentConsumer_RetriesOnlyServerErrors(t *testing.T) {
	missing, broken := uuid.New(), uuid.New()
	completer := new(mockCompleter)
	completer.On("CompleteOrder", mock.Anything, missing).
		Return(nil, &ServiceError{StatusCode: http.StatusNotFound, Reason: "NOT_FOUND", Message: "Order not found"})
	completer.On("CompleteOrder", mock.Anything, broken).
		Return(nil, &ServiceError{StatusCode: http.StatusInternalServerError, Reason: "INTERNAL", Message: "Internal server error"})

	c := NewSQSFulfillmentConsumer(nil, completer, nil, zap.NewNop())

	assert.NoError(t, c.HandleMessage(context.Background(), `{"event":"delivery.completed","order_id":"`+missing.String()+`"}`))
	assert.Error(t, c.HandleMessage(context.Background(), `{"event":"delivery.completed","order_id":"`+broken.String()+`"}`))
}

package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/events"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockSNS struct {
	mock.Mock
}

func (m *mockSNS) Publish(ctx context.Context, topicArn, eventType string, message []byte) error {
	args := m.Called(ctx, topicArn, eventType, message)
	return args.Error(0)
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) SendOrderEvent(ctx context.Context, evt models.OrderEvent) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

func TestDispatcher_FansOutToKafkaAndSNS(t *testing.T) {
	sink, sns := new(mockSink), new(mockSNS)
	evt := models.OrderEvent{Event: models.EventOrderCreated, OrderID: uuid.New()}

	sink.On("SendOrderEvent", mock.Anything, evt).Return(nil).Once()
	sns.On("Publish", mock.Anything, "arn:orders", models.EventOrderCreated, mock.MatchedBy(func(b []byte) bool {
		var decoded models.OrderEvent
		return json.Unmarshal(b, &decoded) == nil && decoded.OrderID == evt.OrderID
	})).Return(nil).Once()

	events.NewDispatcher(sink, sns, "arn:orders", zap.NewNop()).PublishOrderEvent(context.Background(), evt)

	sink.AssertExpectations(t)
	sns.AssertExpectations(t)
}

func TestDispatcher_KafkaFailureStillPublishesToSNS(t *testing.T) {
	sink, sns := new(mockSink), new(mockSNS)
	evt := models.OrderEvent{Event: models.EventOrderCompleted, OrderID: uuid.New()}

	sink.On("SendOrderEvent", mock.Anything, evt).Return(errors.New("broker down")).Once()
	sns.On("Publish", mock.Anything, "arn:orders", models.EventOrderCompleted, mock.Anything).Return(nil).Once()

	events.NewDispatcher(sink, sns, "arn:orders", zap.NewNop()).PublishOrderEvent(context.Background(), evt)

	sns.AssertExpectations(t)
}

func TestDispatcher_SkipsSNSWithoutTopic(t *testing.T) {
	sns := new(mockSNS)
	d := events.NewDispatcher(nil, sns, "", zap.NewNop())

	assert.NotPanics(t, func() {
		d.PublishOrderEvent(context.Background(), models.OrderEvent{Event: models.EventOrderCreated})
	})
	sns.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

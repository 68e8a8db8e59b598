package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	aws_pkg "github.com/LiverNeZelc/vikaproject/backend/pkg/aws"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type QueuePoller interface {
	StartPolling(ctx context.Context, handler aws_pkg.MessageHandler) error
}

type OrderCompleter interface {
	CompleteOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, *ServiceError)
}

// SQSFulfillmentConsumer completes orders when the delivery side reports them
// as delivered.
type SQSFulfillmentConsumer struct {
	poller QueuePoller
	orders OrderCompleter
	cw     *aws_pkg.MetricsClient
	log    *zap.Logger
}

func NewSQSFulfillmentConsumer(poller QueuePoller, orders OrderCompleter, cw *aws_pkg.MetricsClient, log *zap.Logger) *SQSFulfillmentConsumer {
	return &SQSFulfillmentConsumer{poller: poller, orders: orders, cw: cw, log: log}
}

// Start blocks until ctx is cancelled.
func (c *SQSFulfillmentConsumer) Start(ctx context.Context) {
	c.log.Info("Starting fulfillment queue consumer")
	err := c.poller.StartPolling(ctx, c.HandleMessage)
	if err != nil && !errors.Is(err, context.Canceled) {
		c.log.Error("Fulfillment queue polling stopped", zap.Error(err))
	}
}

// HandleMessage returns an error only for failures worth retrying; malformed
// or unknown messages are logged and dropped.
func (c *SQSFulfillmentConsumer) HandleMessage(ctx context.Context, body string) error {
	// unwrap SNS envelope if present
	var envelope struct {
		Message string `json:"Message"`
	}
	if err := json.Unmarshal([]byte(body), &envelope); err == nil && envelope.Message != "" {
		body = envelope.Message
	}

	var evt models.FulfillmentEvent
	if err := json.Unmarshal([]byte(body), &evt); err != nil {
		c.log.Warn("Dropping invalid fulfillment message", zap.Error(err), zap.String("payload", body))
		return nil
	}
	if evt.Event != models.EventDeliveryCompleted {
		c.log.Debug("Ignoring fulfillment event", zap.String("event", evt.Event))
		return nil
	}
	orderID, err := uuid.Parse(evt.OrderID)
	if err != nil {
		c.log.Warn("Dropping fulfillment message with bad order id", zap.String("order_id", evt.OrderID))
		return nil
	}

	order, svcErr := c.orders.CompleteOrder(ctx, orderID)
	if svcErr != nil {
		if svcErr.StatusCode >= http.StatusInternalServerError {
			return svcErr
		}
		c.log.Warn("Fulfillment for unknown order", zap.String("order_id", evt.OrderID), zap.String("reason", svcErr.Reason))
		return nil
	}

	c.log.Info("Order fulfilled", zap.String("order_id", order.ID.String()), zap.String("status", string(order.Status)))
	recordAsync(c.cw, c.log, func(ctx context.Context, cw *aws_pkg.MetricsClient) error {
		return cw.RecordCount(ctx, aws_pkg.MetricSQSMessages, map[string]string{"Queue": "fulfillment"})
	})
	return nil
}

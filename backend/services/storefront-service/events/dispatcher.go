package events

import (
	"context"
	"encoding/json"
	"time"

	aws_pkg "github.com/LiverNeZelc/vikaproject/backend/pkg/aws"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"go.uber.org/zap"
)

// Publisher announces order lifecycle changes. Publishing happens after the
// database commit and never fails the caller.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, evt models.OrderEvent)
}

// OrderEventSink is the Kafka side of the dispatcher.
type OrderEventSink interface {
	SendOrderEvent(ctx context.Context, evt models.OrderEvent) error
}

// Dispatcher fans an event out to Kafka and SNS. Either side may be nil.
type Dispatcher struct {
	kafka    OrderEventSink
	sns      aws_pkg.SNSPublisher
	topicArn string
	timeout  time.Duration
	log      *zap.Logger
}

func NewDispatcher(kafka OrderEventSink, sns aws_pkg.SNSPublisher, topicArn string, log *zap.Logger) *Dispatcher {
	return &Dispatcher{kafka: kafka, sns: sns, topicArn: topicArn, timeout: 5 * time.Second, log: log}
}

func (d *Dispatcher) PublishOrderEvent(ctx context.Context, evt models.OrderEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	fields := []zap.Field{zap.String("event", evt.Event), zap.String("order_id", evt.OrderID.String())}

	if d.kafka != nil {
		if err := d.kafka.SendOrderEvent(ctx, evt); err != nil {
			d.log.Warn("failed to publish order event to kafka", append(fields, zap.Error(err))...)
		}
	}

	if d.sns != nil && d.topicArn != "" {
		payload, err := json.Marshal(evt)
		if err != nil {
			d.log.Warn("failed to marshal order event", append(fields, zap.Error(err))...)
			return
		}
		if err := d.sns.Publish(ctx, d.topicArn, evt.Event, payload); err != nil {
			d.log.Warn("failed to publish order event to sns", append(fields, zap.Error(err))...)
		}
	}
}

// Noop discards events; used when no broker is configured.
type Noop struct{}

func (Noop) PublishOrderEvent(context.Context, models.OrderEvent) {}

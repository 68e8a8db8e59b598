package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes order events keyed by order id, so every event of one order
// lands on the same partition in order.
type Producer struct {
	writer messageWriter
	topic  string
}

func NewProducer(brokers []string, topic string) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Producer{writer: w, topic: topic}
}

func (p *Producer) SendOrderEvent(ctx context.Context, evt models.OrderEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", evt.Event, err)
	}
	msg := kafka.Message{
		Key:   []byte(evt.OrderID.String()),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.Event)},
		},
		Time: evt.Timestamp,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write to %s: %w", p.topic, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

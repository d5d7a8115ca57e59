package broker

import (
	"context"
	"errors"

	"github.com/Apurer/food-marketplace-api/internal/domains/notifications/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/notifications/ports"
	"github.com/Apurer/food-marketplace-api/internal/platform/messaging"
)

// DefaultTopic receives order events keyed by order id.
const DefaultTopic = "order-notifications"

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

// KafkaPublisher writes order events to a Kafka topic. Keys are order ids so one order's events stay ordered.
type KafkaPublisher struct {
	writer messaging.MessageWriter
}

func NewKafkaPublisher(writer messaging.MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event domain.OrderEvent) error {
	if p == nil || p.writer == nil {
		return errors.New("kafka publisher not configured")
	}
	return messaging.PublishJSON(ctx, p.writer, event.OrderID, toMessage(event))
}

func (p *KafkaPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

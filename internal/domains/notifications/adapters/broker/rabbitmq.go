package broker

import (
	"context"
	"errors"

	"github.com/Apurer/food-marketplace-api/internal/domains/notifications/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/notifications/ports"
)

// DefaultExchange is the fanout exchange order events are published to.
const DefaultExchange = "order_notifications_fanout"

// AMQPPublisher is satisfied by *messaging.RabbitMQ.
type AMQPPublisher interface {
	PublishJSON(ctx context.Context, exchange, kind, routingKey string, payload any) error
	Close() error
}

var _ ports.EventPublisher = (*RabbitPublisher)(nil)

// RabbitPublisher fans order events out through a RabbitMQ exchange.
type RabbitPublisher struct {
	conn     AMQPPublisher
	exchange string
}

// NewRabbitPublisher publishes to exchange, or DefaultExchange when empty.
func NewRabbitPublisher(conn AMQPPublisher, exchange string) *RabbitPublisher {
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &RabbitPublisher{conn: conn, exchange: exchange}
}

func (p *RabbitPublisher) Publish(ctx context.Context, event domain.OrderEvent) error {
	if p == nil || p.conn == nil {
		return errors.New("rabbitmq publisher not configured")
	}
	return p.conn.PublishJSON(ctx, p.exchange, "fanout", "", toMessage(event))
}

func (p *RabbitPublisher) Close() error {
	if p == nil || p.conn == nil {
		return nil
	}
	return p.conn.Close()
}

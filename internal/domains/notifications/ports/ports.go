package ports

import (
	"context"

	"github.com/Apurer/food-marketplace-api/internal/domains/notifications/domain"
	orderdomain "github.com/Apurer/food-marketplace-api/internal/domains/orders/domain"
	restaurantdomain "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/domain"
	userdomain "github.com/Apurer/food-marketplace-api/internal/domains/users/domain"
)

// Orders reads the order a notification is about.
type Orders interface {
	GetByID(ctx context.Context, id string) (*orderdomain.Order, error)
}

// Restaurants reads the restaurant named in messages.
type Restaurants interface {
	GetByID(ctx context.Context, id string) (*restaurantdomain.Restaurant, error)
}

// Users reads the customer's name, phone number and channel preferences.
type Users interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// EmailSender delivers rendered emails.
type EmailSender interface {
	SendEmail(ctx context.Context, msg domain.EmailMessage) error
}

// SMSSender delivers rendered text messages.
type SMSSender interface {
	SendSMS(ctx context.Context, msg domain.SMSMessage) error
}

// EventPublisher emits order events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.OrderEvent) error
	Close() error
}

// Service delivers one notification request over every enabled channel, or over one channel at a time.
type Service interface {
	Deliver(ctx context.Context, req domain.Request) error
	DeliverChannel(ctx context.Context, req domain.Request, channel domain.Channel) error
}

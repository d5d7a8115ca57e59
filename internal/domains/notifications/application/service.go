package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Apurer/food-marketplace-api/internal/domains/notifications/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/notifications/ports"
	orderdomain "github.com/Apurer/food-marketplace-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/food-marketplace-api/internal/domains/orders/ports"
	restaurantports "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/ports"
	userdomain "github.com/Apurer/food-marketplace-api/internal/domains/users/domain"
	userports "github.com/Apurer/food-marketplace-api/internal/domains/users/ports"
)

// Service renders order notifications and sends them over the customer's enabled channels.
type Service struct {
	orders      ports.Orders
	restaurants ports.Restaurants
	users       ports.Users
	email       ports.EmailSender
	sms         ports.SMSSender
	publisher   ports.EventPublisher
	logger      *slog.Logger
	now         func() time.Time
	currency    string
}

type Option func(*Service)

func WithEmailSender(sender ports.EmailSender) Option {
	return func(s *Service) { s.email = sender }
}

func WithSMSSender(sender ports.SMSSender) Option {
	return func(s *Service) { s.sms = sender }
}

func WithEventPublisher(publisher ports.EventPublisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCurrency sets the ISO code used to format order totals. Defaults to usd.
func WithCurrency(code string) Option {
	return func(s *Service) {
		if code = strings.TrimSpace(code); code != "" {
			s.currency = code
		}
	}
}

func NewService(orders ports.Orders, restaurants ports.Restaurants, users ports.Users, opts ...Option) *Service {
	s := &Service{
		orders:      orders,
		restaurants: restaurants,
		users:       users,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:         time.Now,
		currency:    defaultCurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// envelope is everything a channel needs to send one notification.
type envelope struct {
	req   domain.Request
	order *orderdomain.Order
	prefs userdomain.NotificationPreferences
	phone string
	data  messageData
}

// Deliver sends email, SMS and the broker event concurrently. A failing channel does not stop the others;
// the first error is returned. Retrying Deliver repeats every channel, so durable callers use DeliverChannel.
func (s *Service) Deliver(ctx context.Context, req domain.Request) error {
	env, err := s.prepare(ctx, req)
	if err != nil {
		return err
	}
	var g errgroup.Group
	for _, channel := range domain.Channels {
		g.Go(func() error { return s.send(ctx, env, channel) })
	}
	return g.Wait()
}

// DeliverChannel sends the notification over a single channel so each can be retried on its own.
func (s *Service) DeliverChannel(ctx context.Context, req domain.Request, channel domain.Channel) error {
	if err := channel.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	env, err := s.prepare(ctx, req)
	if err != nil {
		return err
	}
	return s.send(ctx, env, channel)
}

func (s *Service) prepare(ctx context.Context, req domain.Request) (*envelope, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	order, err := s.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, orderports.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, req.OrderID)
		}
		return nil, err
	}

	restaurantName := defaultRestaurantName
	restaurant, err := s.restaurants.GetByID(ctx, order.RestaurantID)
	switch {
	case err == nil:
		restaurantName = restaurant.Name
	case errors.Is(err, restaurantports.ErrNotFound):
		s.logger.WarnContext(ctx, "restaurant missing for notification", slog.String("order.id", order.ID))
	default:
		return nil, err
	}

	prefs := userdomain.DefaultPreferences()
	customerName := defaultCustomerName
	phone := strings.TrimSpace(order.DeliveryDetails.PhoneNumber)
	user, err := s.users.GetByID(ctx, order.UserID)
	switch {
	case err == nil:
		prefs = user.NotificationPreferences
		if name := strings.TrimSpace(user.Name); name != "" {
			customerName = name
		}
		if phone == "" {
			phone = strings.TrimSpace(user.PhoneNumber)
		}
	case errors.Is(err, userports.ErrNotFound):
		s.logger.WarnContext(ctx, "customer missing for notification", slog.String("order.id", order.ID))
	default:
		return nil, err
	}

	return &envelope{
		req:   req,
		order: order,
		prefs: prefs,
		phone: phone,
		data:  newMessageData(req, order, restaurantName, customerName, s.currency),
	}, nil
}

// send delivers env over one channel. Disabled or unconfigured channels are a no-op.
func (s *Service) send(ctx context.Context, env *envelope, channel domain.Channel) error {
	order := env.order
	switch channel {
	case domain.ChannelEmail:
		to := strings.TrimSpace(order.DeliveryDetails.Email)
		if s.email == nil || !env.prefs.Email || to == "" {
			return nil
		}
		msg, err := renderEmail(env.req.Kind, to, env.data)
		if err != nil {
			return fmt.Errorf("render email: %w", err)
		}
		if err := s.email.SendEmail(ctx, msg); err != nil {
			return fmt.Errorf("send email: %w", err)
		}
		s.logger.InfoContext(ctx, "notification email sent", slog.String("order.id", order.ID), slog.String("kind", string(env.req.Kind)))
	case domain.ChannelSMS:
		if s.sms == nil || !env.prefs.SMS || env.phone == "" {
			return nil
		}
		msg, err := renderSMS(env.req.Kind, env.phone, env.data)
		if err != nil {
			return fmt.Errorf("render sms: %w", err)
		}
		if err := s.sms.SendSMS(ctx, msg); err != nil {
			return fmt.Errorf("send sms: %w", err)
		}
		s.logger.InfoContext(ctx, "notification sms sent", slog.String("order.id", order.ID), slog.String("kind", string(env.req.Kind)))
	case domain.ChannelEvent:
		if s.publisher == nil {
			return nil
		}
		event := domain.OrderEvent{
			Kind:         env.req.Kind,
			OrderID:      order.ID,
			RestaurantID: order.RestaurantID,
			UserID:       order.UserID,
			Status:       env.data.Status,
			TotalAmount:  order.TotalAmount,
			OccurredAt:   s.now().UTC(),
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			return fmt.Errorf("publish order event: %w", err)
		}
	default:
		return fmt.Errorf("%w: %w", ErrInvalidRequest, domain.ErrInvalidChannel)
	}
	return nil
}

var _ ports.Service = (*Service)(nil)

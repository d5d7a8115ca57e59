package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/food-marketplace-api/internal/domains/orders/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/orders/ports"
	restaurantdomain "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/domain"
	restaurantports "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/ports"
)

// DefaultGatewayTimeout bounds a checkout session request when none is configured.
const DefaultGatewayTimeout = 10 * time.Second

// Service orchestrates the order lifecycle: checkout, payment confirmation and fulfillment.
type Service struct {
	repo           ports.Repository
	catalog        ports.Catalog
	customers      ports.Customers
	gateway        ports.PaymentGateway
	notifier       ports.Notifier
	events         ports.PaymentEventStore
	logger         *slog.Logger
	now            func() time.Time
	newID          func() string
	frontendURL    string
	gatewayTimeout time.Duration
}

// Option customises the service.
type Option func(*Service)

// WithNotifier wires the notification fan-out.
func WithNotifier(notifier ports.Notifier) Option {
	return func(s *Service) {
		if notifier != nil {
			s.notifier = notifier
		}
	}
}

// WithPaymentEventStore enables provider event de-duplication and auditing.
func WithPaymentEventStore(store ports.PaymentEventStore) Option {
	return func(s *Service) { s.events = store }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides order id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithFrontendURL sets the base for checkout success and cancel redirects.
func WithFrontendURL(base string) Option {
	return func(s *Service) { s.frontendURL = strings.TrimRight(strings.TrimSpace(base), "/") }
}

// WithGatewayTimeout bounds each checkout session request.
func WithGatewayTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.gatewayTimeout = timeout
		}
	}
}

// NewService wires the order service with its collaborators.
func NewService(repo ports.Repository, catalog ports.Catalog, customers ports.Customers, gateway ports.PaymentGateway, opts ...Option) *Service {
	s := &Service{
		repo:           repo,
		catalog:        catalog,
		customers:      customers,
		gateway:        gateway,
		notifier:       ports.NoopNotifier,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:            time.Now,
		newID:          uuid.NewString,
		gatewayTimeout: DefaultGatewayTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCheckoutSession validates the cart against the live menu, records a placed order and
// requests a hosted payment page. Validation failures persist nothing; a gateway failure leaves
// the placed order behind.
func (s *Service) CreateCheckoutSession(ctx context.Context, input ports.CheckoutInput) (*ports.CheckoutResult, error) {
	restaurant, err := s.catalog.GetByID(ctx, strings.TrimSpace(input.RestaurantID))
	if err != nil {
		return nil, mapError(err)
	}
	lines, err := resolveCart(restaurant, input.CartItems)
	if err != nil {
		return nil, err
	}
	order, err := domain.NewOrder(s.newID(), input.UserID, restaurant.ID, cartItems(lines), input.DeliveryDetails, s.now().UTC())
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, mapError(err)
	}
	session, err := s.requestSession(ctx, saved, restaurant, lines)
	if err != nil {
		return nil, err
	}
	return &ports.CheckoutResult{OrderID: saved.ID, SessionID: session.ID, URL: session.URL}, nil
}

func (s *Service) requestSession(ctx context.Context, order *domain.Order, restaurant *restaurantdomain.Restaurant, lines []pricedLine) (*ports.CheckoutSession, error) {
	ctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()
	session, err := s.gateway.CreateCheckoutSession(ctx, ports.CheckoutSessionRequest{
		LineItems:      lineItems(lines),
		ShippingAmount: restaurant.DeliveryPrice,
		SuccessURL:     s.frontendURL + "/order-status?success=true",
		CancelURL:      s.frontendURL + "/detail/" + url.PathEscape(restaurant.ID) + "?cancelled=true",
		Metadata: map[string]string{
			ports.MetadataOrderID:      order.ID,
			ports.MetadataRestaurantID: restaurant.ID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGateway, err)
	}
	if session == nil || strings.TrimSpace(session.URL) == "" {
		return nil, fmt.Errorf("%w: checkout session has no url", ErrGateway)
	}
	return session, nil
}

// HandlePaymentWebhook authenticates a provider event and, for completed checkout sessions,
// moves the order from placed to paid exactly once. Once authenticated the event is always
// acknowledged unless the ledger itself fails.
func (s *Service) HandlePaymentWebhook(ctx context.Context, payload []byte, signature string) (*ports.WebhookResult, error) {
	event, err := s.gateway.ParseEvent(payload, signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	result := &ports.WebhookResult{EventID: event.ID, EventType: event.Type}
	if event.Type != ports.EventCheckoutSessionCompleted {
		result.Outcome = ports.OutcomeIgnored
		return result, nil
	}
	result.OrderID = strings.TrimSpace(event.Metadata[ports.MetadataOrderID])

	seen, err := s.eventSeen(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	if seen {
		result.Outcome = ports.OutcomeDuplicateEvent
		return result, nil
	}

	order, transitioned, err := s.repo.MarkPaid(ctx, result.OrderID, event.AmountTotal)
	switch {
	case errors.Is(err, ports.ErrNotFound):
		s.logger.LogAttrs(ctx, slog.LevelWarn, "payment confirmed for unknown order",
			slog.String("order_id", result.OrderID), slog.String("event_id", event.ID))
		result.Outcome = ports.OutcomeOrderNotFound
	case err != nil:
		return nil, mapError(err)
	case !transitioned:
		result.Outcome = ports.OutcomeAlreadyProcessed
	default:
		result.Outcome = ports.OutcomeConfirmed
		if err := s.notifier.OrderConfirmed(ctx, order.ID); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "order confirmation notification failed",
				slog.String("order_id", order.ID), slog.String("error", err.Error()))
		}
	}
	s.recordEvent(ctx, event, result)
	return result, nil
}

func (s *Service) eventSeen(ctx context.Context, eventID string) (bool, error) {
	if s.events == nil || eventID == "" {
		return false, nil
	}
	return s.events.Seen(ctx, eventID)
}

func (s *Service) recordEvent(ctx context.Context, event *ports.PaymentEvent, result *ports.WebhookResult) {
	if s.events == nil || event.ID == "" {
		return
	}
	err := s.events.Record(ctx, ports.PaymentEventRecord{
		EventID:    event.ID,
		EventType:  event.Type,
		OrderID:    result.OrderID,
		Outcome:    result.Outcome,
		ReceivedAt: s.now().UTC(),
	})
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to record payment event",
			slog.String("event_id", event.ID), slog.String("error", err.Error()))
	}
}

// UpdateStatus lets the restaurant's manager move an order through fulfillment.
// Any known stage except paid may be set; the paid stage belongs to payment confirmation.
func (s *Service) UpdateStatus(ctx context.Context, input ports.UpdateStatusInput) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, strings.TrimSpace(input.OrderID))
	if err != nil {
		return nil, mapError(err)
	}
	if err := s.authorizeManager(ctx, order, input.ManagerID); err != nil {
		return nil, err
	}
	status, err := domain.ParseStatus(input.Status)
	if err != nil {
		return nil, mapError(err)
	}
	if err := order.SetStatus(status, s.now().UTC()); err != nil {
		return nil, mapError(err)
	}
	updated, err := s.repo.UpdateStatus(ctx, order.ID, status, input.ManagerID)
	if err != nil {
		return nil, mapError(err)
	}
	if err := s.notifier.OrderStatusChanged(ctx, updated.ID, updated.Status); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "order status notification failed",
			slog.String("order_id", updated.ID), slog.String("status", string(updated.Status)), slog.String("error", err.Error()))
	}
	return updated, nil
}

func (s *Service) authorizeManager(ctx context.Context, order *domain.Order, callerID string) error {
	restaurant, err := s.catalog.GetByID(ctx, order.RestaurantID)
	if errors.Is(err, restaurantports.ErrNotFound) {
		return ErrUnauthorized
	}
	if err != nil {
		return mapError(err)
	}
	if callerID == "" || restaurant.ManagerID != callerID {
		return ErrUnauthorized
	}
	return nil
}

// ListForCustomer returns the customer's orders, newest first, with restaurant and customer summaries.
func (s *Service) ListForCustomer(ctx context.Context, userID string) ([]*ports.OrderView, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}
	sortNewestFirst(orders)
	customer := s.customerSummary(ctx, userID)
	restaurants := map[string]*ports.RestaurantSummary{}
	views := make([]*ports.OrderView, 0, len(orders))
	for _, order := range orders {
		summary, ok := restaurants[order.RestaurantID]
		if !ok {
			summary = s.restaurantSummary(ctx, order.RestaurantID)
			restaurants[order.RestaurantID] = summary
		}
		views = append(views, &ports.OrderView{Order: order, Restaurant: summary, Customer: customer})
	}
	return views, nil
}

// ListForRestaurant returns the orders of the manager's restaurant, newest first.
func (s *Service) ListForRestaurant(ctx context.Context, managerID string) ([]*ports.OrderView, error) {
	restaurant, err := s.catalog.GetByManager(ctx, managerID)
	if err != nil {
		return nil, mapError(err)
	}
	orders, err := s.repo.ListByRestaurant(ctx, restaurant.ID)
	if err != nil {
		return nil, mapError(err)
	}
	sortNewestFirst(orders)
	summary := toRestaurantSummary(restaurant)
	customers := map[string]*ports.CustomerSummary{}
	views := make([]*ports.OrderView, 0, len(orders))
	for _, order := range orders {
		customer, ok := customers[order.UserID]
		if !ok {
			customer = s.customerSummary(ctx, order.UserID)
			customers[order.UserID] = customer
		}
		views = append(views, &ports.OrderView{Order: order, Restaurant: summary, Customer: customer})
	}
	return views, nil
}

// History returns the status trail of an order to its customer or its restaurant's manager.
func (s *Service) History(ctx context.Context, input ports.HistoryInput) ([]domain.StatusChange, error) {
	order, err := s.repo.GetByID(ctx, strings.TrimSpace(input.OrderID))
	if err != nil {
		return nil, mapError(err)
	}
	if input.CallerID == "" || order.UserID != input.CallerID {
		if err := s.authorizeManager(ctx, order, input.CallerID); err != nil {
			return nil, err
		}
	}
	changes, err := s.repo.History(ctx, order.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return changes, nil
}

func (s *Service) restaurantSummary(ctx context.Context, restaurantID string) *ports.RestaurantSummary {
	restaurant, err := s.catalog.GetByID(ctx, restaurantID)
	if err != nil {
		if !errors.Is(err, restaurantports.ErrNotFound) {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to load restaurant summary",
				slog.String("restaurant_id", restaurantID), slog.String("error", err.Error()))
		}
		return nil
	}
	return toRestaurantSummary(restaurant)
}

func (s *Service) customerSummary(ctx context.Context, userID string) *ports.CustomerSummary {
	if s.customers == nil {
		return nil
	}
	user, err := s.customers.GetByID(ctx, userID)
	if err != nil {
		return nil
	}
	return &ports.CustomerSummary{ID: user.ID, Name: user.Name, Email: user.Email}
}

func toRestaurantSummary(restaurant *restaurantdomain.Restaurant) *ports.RestaurantSummary {
	return &ports.RestaurantSummary{
		ID:                    restaurant.ID,
		Name:                  restaurant.Name,
		ImageURL:              restaurant.ImageURL,
		City:                  restaurant.City,
		DeliveryPrice:         restaurant.DeliveryPrice,
		EstimatedDeliveryTime: restaurant.EstimatedDeliveryTime,
	}
}

func sortNewestFirst(orders []*domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
}

var _ ports.Service = (*Service)(nil)

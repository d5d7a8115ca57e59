package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/food-marketplace-api/internal/domains/orders/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/food-marketplace-api/internal/domains/orders/adapters/observability/service"

// Service decorates the order lifecycle port with tracing, logging and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) CreateCheckoutSession(ctx context.Context, input ports.CheckoutInput) (*ports.CheckoutResult, error) {
	ctx, span := s.startSpan(ctx, "OrderService.CreateCheckoutSession",
		attribute.String("restaurant.id", input.RestaurantID),
		attribute.Int("order.cart.lines", len(input.CartItems)),
	)
	defer span.End()

	s.logInfo(ctx, "creating checkout session", slog.String("restaurant.id", input.RestaurantID), slog.String("user.id", input.UserID))
	result, err := s.inner.CreateCheckoutSession(ctx, input)
	if err != nil {
		s.metrics.recordCheckout(ctx, false)
		return nil, s.handleError(ctx, span, err, "failed to create checkout session", slog.String("restaurant.id", input.RestaurantID))
	}
	s.metrics.recordCheckout(ctx, true)
	span.SetAttributes(attribute.String("order.id", result.OrderID))
	s.logInfo(ctx, "checkout session created", slog.String("order.id", result.OrderID), slog.String("session.id", result.SessionID))
	return result, nil
}

// HandlePaymentWebhook never logs the payload or signature.
func (s *Service) HandlePaymentWebhook(ctx context.Context, payload []byte, signature string) (*ports.WebhookResult, error) {
	ctx, span := s.startSpan(ctx, "OrderService.HandlePaymentWebhook", attribute.Int("webhook.payload.bytes", len(payload)))
	defer span.End()

	result, err := s.inner.HandlePaymentWebhook(ctx, payload, signature)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to handle payment webhook")
	}
	span.SetAttributes(
		attribute.String("webhook.event.id", result.EventID),
		attribute.String("webhook.event.type", result.EventType),
		attribute.String("webhook.outcome", result.Outcome),
	)
	s.metrics.recordWebhook(ctx, result.Outcome)
	s.logInfo(ctx, "payment webhook handled",
		slog.String("event.id", result.EventID),
		slog.String("order.id", result.OrderID),
		slog.String("outcome", result.Outcome),
	)
	return result, nil
}

func (s *Service) UpdateStatus(ctx context.Context, input ports.UpdateStatusInput) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "OrderService.UpdateStatus",
		attribute.String("order.id", input.OrderID),
		attribute.String("order.status.requested", input.Status),
	)
	defer span.End()

	s.logInfo(ctx, "updating order status", slog.String("order.id", input.OrderID), slog.String("status", input.Status))
	order, err := s.inner.UpdateStatus(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order status", slog.String("order.id", input.OrderID))
	}
	s.metrics.recordStatus(ctx, order.Status)
	s.logInfo(ctx, "order status updated", slog.String("order.id", order.ID), slog.String("status", string(order.Status)))
	return order, nil
}

func (s *Service) ListForCustomer(ctx context.Context, userID string) ([]*ports.OrderView, error) {
	ctx, span := s.startSpan(ctx, "OrderService.ListForCustomer")
	defer span.End()

	result, err := s.inner.ListForCustomer(ctx, userID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list customer orders", slog.String("user.id", userID))
	}
	span.SetAttributes(attribute.Int("order.result.count", len(result)))
	return result, nil
}

func (s *Service) ListForRestaurant(ctx context.Context, managerID string) ([]*ports.OrderView, error) {
	ctx, span := s.startSpan(ctx, "OrderService.ListForRestaurant")
	defer span.End()

	result, err := s.inner.ListForRestaurant(ctx, managerID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list restaurant orders", slog.String("manager.id", managerID))
	}
	span.SetAttributes(attribute.Int("order.result.count", len(result)))
	return result, nil
}

func (s *Service) History(ctx context.Context, input ports.HistoryInput) ([]domain.StatusChange, error) {
	ctx, span := s.startSpan(ctx, "OrderService.History", attribute.String("order.id", input.OrderID))
	defer span.End()

	result, err := s.inner.History(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order history", slog.String("order.id", input.OrderID))
	}
	span.SetAttributes(attribute.Int("order.history.count", len(result)))
	return result, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	checkouts     metric.Int64Counter
	webhooks      metric.Int64Counter
	statusUpdates metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	checkouts, _ := m.Int64Counter("orders.service.checkout_sessions", metric.WithDescription("Number of checkout session attempts"))
	webhooks, _ := m.Int64Counter("orders.service.payment_webhooks", metric.WithDescription("Number of authenticated payment events by outcome"))
	statusUpdates, _ := m.Int64Counter("orders.service.status_updates", metric.WithDescription("Number of fulfillment status changes"))
	return serviceMetrics{
		checkouts:     checkouts,
		webhooks:      webhooks,
		statusUpdates: statusUpdates,
	}
}

func (m serviceMetrics) recordCheckout(ctx context.Context, ok bool) {
	addCounter(ctx, m.checkouts, 1, attribute.Bool("success", ok))
}

func (m serviceMetrics) recordWebhook(ctx context.Context, outcome string) {
	addCounter(ctx, m.webhooks, 1, attribute.String("outcome", outcome))
}

func (m serviceMetrics) recordStatus(ctx context.Context, status domain.Status) {
	addCounter(ctx, m.statusUpdates, 1, attribute.String("order.status", string(status)))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)

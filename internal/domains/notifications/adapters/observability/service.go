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

	"github.com/Apurer/food-marketplace-api/internal/domains/notifications/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/notifications/ports"
)

const tracerName = "github.com/Apurer/food-marketplace-api/internal/domains/notifications/adapters/observability/service"

// Service decorates notification delivery with tracing, logging and metrics.
type Service struct {
	inner      ports.Service
	tracer     trace.Tracer
	logger     *slog.Logger
	deliveries metric.Int64Counter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		if m == nil {
			return
		}
		s.deliveries, _ = m.Int64Counter("notifications.service.deliveries", metric.WithDescription("Number of notification delivery attempts"))
	}
}

func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:  inner,
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) Deliver(ctx context.Context, req domain.Request) error {
	return s.observe(ctx, "NotificationService.Deliver", req, "all", func(ctx context.Context) error {
		return s.inner.Deliver(ctx, req)
	})
}

func (s *Service) DeliverChannel(ctx context.Context, req domain.Request, channel domain.Channel) error {
	return s.observe(ctx, "NotificationService.DeliverChannel", req, string(channel), func(ctx context.Context) error {
		return s.inner.DeliverChannel(ctx, req, channel)
	})
}

func (s *Service) observe(ctx context.Context, spanName string, req domain.Request, channel string, deliver func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.String("order.id", req.OrderID),
		attribute.String("notification.kind", string(req.Kind)),
		attribute.String("notification.channel", channel),
	))
	defer span.End()
	err := deliver(ctx)
	if s.deliveries != nil {
		s.deliveries.Add(ctx, 1, metric.WithAttributes(
			attribute.String("notification.kind", string(req.Kind)),
			attribute.String("notification.channel", channel),
			attribute.Bool("success", err == nil),
		))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.LogAttrs(ctx, slog.LevelWarn, "notification delivery failed",
			slog.String("order.id", req.OrderID), slog.String("channel", channel), slog.String("error", err.Error()))
		return err
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "notification delivered",
		slog.String("order.id", req.OrderID), slog.String("kind", string(req.Kind)), slog.String("channel", channel))
	return nil
}

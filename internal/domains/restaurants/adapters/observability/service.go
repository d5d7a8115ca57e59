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

	"github.com/Apurer/food-marketplace-api/internal/domains/restaurants/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/restaurants/ports"
)

const tracerName = "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/adapters/observability/service"

// Service decorates the catalog service with tracing, logging and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	changes metric.Int64Counter
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
		s.changes, _ = m.Int64Counter("restaurants.service.changes", metric.WithDescription("Number of restaurant listing changes"))
	}
}

// New wraps the core catalog service.
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

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Restaurant, error) {
	ctx, span := s.tracer.Start(ctx, "RestaurantService.GetByID", trace.WithAttributes(attribute.String("restaurant.id", id)))
	defer span.End()
	result, err := s.inner.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to load restaurant", slog.String("restaurant.id", id))
	}
	return result, nil
}

func (s *Service) GetMine(ctx context.Context, managerID string) (*domain.Restaurant, error) {
	ctx, span := s.tracer.Start(ctx, "RestaurantService.GetMine", trace.WithAttributes(attribute.String("manager.id", managerID)))
	defer span.End()
	result, err := s.inner.GetMine(ctx, managerID)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to load manager restaurant", slog.String("manager.id", managerID))
	}
	return result, nil
}

func (s *Service) CreateMine(ctx context.Context, managerID string, details domain.Details) (*domain.Restaurant, error) {
	ctx, span := s.tracer.Start(ctx, "RestaurantService.CreateMine", trace.WithAttributes(attribute.String("manager.id", managerID)))
	defer span.End()
	result, err := s.inner.CreateMine(ctx, managerID, details)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to create restaurant", slog.String("manager.id", managerID))
	}
	s.record(ctx, "created")
	s.logger.LogAttrs(ctx, slog.LevelInfo, "restaurant created", slog.String("restaurant.id", result.ID))
	return result, nil
}

func (s *Service) UpdateMine(ctx context.Context, managerID string, details domain.Details) (*domain.Restaurant, error) {
	ctx, span := s.tracer.Start(ctx, "RestaurantService.UpdateMine", trace.WithAttributes(attribute.String("manager.id", managerID)))
	defer span.End()
	result, err := s.inner.UpdateMine(ctx, managerID, details)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to update restaurant", slog.String("manager.id", managerID))
	}
	s.record(ctx, "updated")
	return result, nil
}

func (s *Service) SetApproval(ctx context.Context, id string, status domain.ApprovalStatus) (*domain.Restaurant, error) {
	ctx, span := s.tracer.Start(ctx, "RestaurantService.SetApproval", trace.WithAttributes(
		attribute.String("restaurant.id", id),
		attribute.String("restaurant.approval", string(status)),
	))
	defer span.End()
	result, err := s.inner.SetApproval(ctx, id, status)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to set restaurant approval", slog.String("restaurant.id", id))
	}
	s.record(ctx, "approval")
	s.logger.LogAttrs(ctx, slog.LevelInfo, "restaurant approval changed", slog.String("restaurant.id", id), slog.String("status", string(status)))
	return result, nil
}

func (s *Service) fail(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

func (s *Service) record(ctx context.Context, kind string) {
	if s.changes != nil {
		s.changes.Add(ctx, 1, metric.WithAttributes(attribute.String("change", kind)))
	}
}

var _ ports.Service = (*Service)(nil)

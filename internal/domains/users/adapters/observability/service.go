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

	userdomain "github.com/Apurer/food-marketplace-api/internal/domains/users/domain"
	userports "github.com/Apurer/food-marketplace-api/internal/domains/users/ports"
)

const tracerName = "github.com/Apurer/food-marketplace-api/internal/domains/users/adapters/observability/service"

// Service decorates the identity service with tracing, logging and metrics.
type Service struct {
	inner   userports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core identity service.
func New(inner userports.Service, opts ...Option) userports.Service {
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

func (s *Service) Register(ctx context.Context, input userports.RegisterInput) (*userports.RegisterResult, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Register", trace.WithAttributes(attribute.String("user.role", string(input.Role))))
	defer span.End()
	result, err := s.inner.Register(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to register user")
	}
	if result.Created {
		s.metrics.recordRegistered(ctx, result.User.Role)
		s.logInfo(ctx, "user registered", slog.String("user.id", result.User.ID), slog.String("role", string(result.User.Role)))
	}
	return result, nil
}

// Authenticate runs on every request, so only failures are logged.
func (s *Service) Authenticate(ctx context.Context, token string) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Authenticate")
	defer span.End()
	user, err := s.inner.Authenticate(ctx, token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "authentication failed")
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", user.ID))
	return user, nil
}

func (s *Service) GetCurrent(ctx context.Context, userID string) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetCurrent", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()
	return s.inner.GetCurrent(ctx, userID)
}

func (s *Service) UpdateCurrent(ctx context.Context, userID string, input userports.UpdateInput) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.UpdateCurrent", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()
	result, err := s.inner.UpdateCurrent(ctx, userID, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update user", slog.String("user.id", userID))
	}
	s.metrics.recordUpdated(ctx)
	return result, nil
}

func (s *Service) ListManagers(ctx context.Context) ([]*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.ListManagers")
	defer span.End()
	result, err := s.inner.ListManagers(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list managers")
	}
	span.SetAttributes(attribute.Int("user.result.count", len(result)))
	return result, nil
}

func (s *Service) SetApplicationStatus(ctx context.Context, userID string, status userdomain.ApplicationStatus) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.SetApplicationStatus", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("user.application_status", string(status)),
	))
	defer span.End()
	result, err := s.inner.SetApplicationStatus(ctx, userID, status)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to set application status", slog.String("user.id", userID))
	}
	s.logInfo(ctx, "manager application reviewed", slog.String("user.id", userID), slog.String("status", string(status)))
	return result, nil
}

func (s *Service) Logout(ctx context.Context, userID string) error {
	ctx, span := s.tracer.Start(ctx, "UserService.Logout", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()
	if err := s.inner.Logout(ctx, userID); err != nil {
		return s.handleError(ctx, span, err, "logout failed", slog.String("user.id", userID))
	}
	return nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

type serviceMetrics struct {
	usersRegistered metric.Int64Counter
	usersUpdated    metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	registered, _ := m.Int64Counter("users.service.registered", metric.WithDescription("Number of users registered"))
	updated, _ := m.Int64Counter("users.service.updated", metric.WithDescription("Number of profile updates"))
	return serviceMetrics{usersRegistered: registered, usersUpdated: updated}
}

func (m serviceMetrics) recordRegistered(ctx context.Context, role userdomain.Role) {
	if m.usersRegistered != nil {
		m.usersRegistered.Add(ctx, 1, metric.WithAttributes(attribute.String("user.role", string(role))))
	}
}

func (m serviceMetrics) recordUpdated(ctx context.Context) {
	if m.usersUpdated != nil {
		m.usersUpdated.Add(ctx, 1)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ userports.Service = (*Service)(nil)

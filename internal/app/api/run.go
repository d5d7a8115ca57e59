package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	marketplaceserver "github.com/Apurer/food-marketplace-api/go"
	stripeclient "github.com/Apurer/food-marketplace-api/internal/clients/payments/stripe"
	notificationworkflows "github.com/Apurer/food-marketplace-api/internal/domains/notifications/adapters/workflows"
	orderstripe "github.com/Apurer/food-marketplace-api/internal/domains/orders/adapters/external/stripe"
	orderobs "github.com/Apurer/food-marketplace-api/internal/domains/orders/adapters/observability"
	orderapp "github.com/Apurer/food-marketplace-api/internal/domains/orders/application"
	orderports "github.com/Apurer/food-marketplace-api/internal/domains/orders/ports"
	restaurantobs "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/adapters/observability"
	restaurantapp "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/application"
	userobs "github.com/Apurer/food-marketplace-api/internal/domains/users/adapters/observability"
	userapp "github.com/Apurer/food-marketplace-api/internal/domains/users/application"
	"github.com/Apurer/food-marketplace-api/internal/platform/metrics"
	platformobservability "github.com/Apurer/food-marketplace-api/internal/platform/observability"
)

const shutdownTimeout = 10 * time.Second

type sessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Run boots the marketplace HTTP API and blocks until ctx is cancelled or SIGINT/SIGTERM arrives.
func Run(ctx context.Context) error {
	const serviceName = "marketplace-api"
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	repos, cleanupRepos := OpenRepositories(ctx, cfg, logger)
	defer cleanupRepos()

	userService := userobs.New(
		userapp.NewService(repos.Users, repos.Sessions),
		userobs.WithLogger(logger),
		userobs.WithTracer(instruments.Tracer("internal.users.application")),
		userobs.WithMeter(instruments.Meter("internal.users.application")),
	)
	restaurantService := restaurantobs.New(
		restaurantapp.NewService(repos.Restaurants),
		restaurantobs.WithLogger(logger),
		restaurantobs.WithTracer(instruments.Tracer("internal.restaurants.application")),
		restaurantobs.WithMeter(instruments.Meter("internal.restaurants.application")),
	)

	notifier, stopNotifier := buildNotifier(cfg, repos, instruments)
	defer stopNotifier()

	orderService := orderobs.New(
		orderapp.NewService(
			repos.Orders,
			repos.Restaurants,
			repos.Users,
			buildPaymentGateway(cfg, logger),
			orderapp.WithNotifier(notifier),
			orderapp.WithPaymentEventStore(repos.PaymentEvents),
			orderapp.WithFrontendURL(cfg.FrontendURL),
			orderapp.WithGatewayTimeout(cfg.Payments.GatewayTimeout),
			orderapp.WithLogger(logger),
		),
		orderobs.WithLogger(logger),
		orderobs.WithTracer(instruments.Tracer("internal.orders.application")),
		orderobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	httpMetrics := metrics.NewHTTPMetrics("api")
	engine := gin.New()
	engine.Use(gin.Recovery(), otelgin.Middleware(serviceName), httpMetrics.Middleware())
	router := marketplaceserver.NewRouterWithGinEngine(engine, marketplaceserver.ApiHandleFunctions{
		Authenticator: userService,
		OrderAPI:      marketplaceserver.NewOrderAPI(orderService),
		RestaurantAPI: marketplaceserver.NewRestaurantAPI(restaurantService),
		UserAPI:       marketplaceserver.NewUserAPI(userService),
		AdminAPI:      marketplaceserver.NewAdminAPI(userService, restaurantService),
		HealthAPI:     marketplaceserver.NewHealthAPI(httpMetrics.Handler()),
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if purger, ok := repos.Sessions.(sessionPurger); ok && cfg.SessionPurgeIntervalMinute > 0 {
		go purgeSessions(ctx, purger, time.Duration(cfg.SessionPurgeIntervalMinute)*time.Minute, logger)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("marketplace API listening", slog.String("addr", server.Addr))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("marketplace API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down marketplace API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// buildNotifier prefers durable Temporal delivery and falls back to in-process goroutines.
func buildNotifier(cfg Config, repos *Repositories, instruments *platformobservability.Instruments) (orderports.Notifier, func()) {
	logger := instruments.Logger
	if temporalClient, err := ConnectTemporalClient(cfg.Temporal, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, delivering notifications inline", slog.String("error", err.Error()))
	} else {
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.Temporal.Namespace))
		return notificationworkflows.NewTemporalDispatcher(temporalClient), temporalClient.Close
	}

	service, cleanup := NewNotificationService(cfg, repos, instruments)
	dispatcher := notificationworkflows.NewInlineDispatcher(service, notificationworkflows.WithLogger(logger))
	return dispatcher, func() {
		dispatcher.Wait()
		cleanup()
	}
}

func buildPaymentGateway(cfg Config, logger *slog.Logger) orderports.PaymentGateway {
	client, err := stripeclient.NewClient(stripeclient.Config{
		APIKey:        cfg.Payments.StripeAPIKey,
		WebhookSecret: cfg.Payments.StripeWebhookSecret,
		Currency:      cfg.Payments.Currency,
		Timeout:       cfg.Payments.GatewayTimeout,
	})
	if err != nil {
		logger.Warn("stripe not configured, checkout and webhooks will fail", slog.String("error", err.Error()))
		return orderstripe.NewGateway(nil)
	}
	return orderstripe.NewGateway(client)
}

func purgeSessions(ctx context.Context, purger sessionPurger, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := purger.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("session purge failed", slog.String("error", err.Error()))
				continue
			}
			logger.Info("expired sessions purged", slog.Int64("removed", removed))
		}
	}
}

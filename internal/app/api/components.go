package api

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	notificationbroker "github.com/Apurer/food-marketplace-api/internal/domains/notifications/adapters/broker"
	notificationemail "github.com/Apurer/food-marketplace-api/internal/domains/notifications/adapters/email"
	notificationobs "github.com/Apurer/food-marketplace-api/internal/domains/notifications/adapters/observability"
	notificationsms "github.com/Apurer/food-marketplace-api/internal/domains/notifications/adapters/sms"
	notificationapp "github.com/Apurer/food-marketplace-api/internal/domains/notifications/application"
	notificationports "github.com/Apurer/food-marketplace-api/internal/domains/notifications/ports"
	ordermemory "github.com/Apurer/food-marketplace-api/internal/domains/orders/adapters/memory"
	orderpostgres "github.com/Apurer/food-marketplace-api/internal/domains/orders/adapters/persistence/postgres"
	orderports "github.com/Apurer/food-marketplace-api/internal/domains/orders/ports"
	restaurantmemory "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/adapters/memory"
	restaurantpostgres "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/adapters/persistence/postgres"
	restaurantports "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/ports"
	usermemory "github.com/Apurer/food-marketplace-api/internal/domains/users/adapters/memory"
	userpostgres "github.com/Apurer/food-marketplace-api/internal/domains/users/adapters/persistence/postgres"
	userports "github.com/Apurer/food-marketplace-api/internal/domains/users/ports"
	"github.com/Apurer/food-marketplace-api/internal/platform/messaging"
	"github.com/Apurer/food-marketplace-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/food-marketplace-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/food-marketplace-api/internal/platform/postgres"
)

// Repositories bundles the storage adapters shared by the API and the worker.
type Repositories struct {
	DB            *gorm.DB
	Users         userports.Repository
	Sessions      userports.SessionStore
	Restaurants   restaurantports.Repository
	Orders        orderports.Repository
	PaymentEvents orderports.PaymentEventStore
}

// OpenRepositories uses PostgreSQL when configured and reachable, in-memory adapters otherwise.
func OpenRepositories(ctx context.Context, cfg Config, logger *slog.Logger) (*Repositories, func()) {
	db, cleanup := platformpostgres.ConnectOrFallback(ctx, cfg.PostgresDSN, logger, migrations.Run)
	if db == nil {
		return &Repositories{
			Users:         usermemory.NewRepository(),
			Sessions:      usermemory.NewSessionStore(),
			Restaurants:   restaurantmemory.NewRepository(),
			Orders:        ordermemory.NewRepository(),
			PaymentEvents: ordermemory.NewPaymentEventStore(),
		}, cleanup
	}
	logger.Info("repositories configured with postgres")
	return &Repositories{
		DB:            db,
		Users:         userpostgres.NewRepository(db),
		Sessions:      userpostgres.NewSessionStore(db, cfg.SessionTTL),
		Restaurants:   restaurantpostgres.NewRepository(db),
		Orders:        orderpostgres.NewRepository(db),
		PaymentEvents: orderpostgres.NewPaymentEventStore(db),
	}, cleanup
}

// NewNotificationService wires the enabled channels and broker. The cleanup closes the broker.
func NewNotificationService(cfg Config, repos *Repositories, instruments *platformobservability.Instruments) (notificationports.Service, func()) {
	logger := instruments.Logger
	opts := []notificationapp.Option{
		notificationapp.WithLogger(logger),
		notificationapp.WithCurrency(cfg.Payments.Currency),
	}

	if cfg.SMTP.Enabled() {
		sender, err := notificationemail.NewSMTPSender(notificationemail.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
		if err != nil {
			logger.Warn("smtp sender unavailable, emails will be skipped", slog.String("error", err.Error()))
			opts = append(opts, notificationapp.WithEmailSender(notificationemail.LogSender{Logger: logger}))
		} else {
			opts = append(opts, notificationapp.WithEmailSender(sender))
		}
	} else {
		opts = append(opts, notificationapp.WithEmailSender(notificationemail.LogSender{Logger: logger}))
	}

	if cfg.Twilio.Enabled() {
		sender, err := notificationsms.NewTwilioSender(notificationsms.Config{
			AccountSID: cfg.Twilio.AccountSID,
			AuthToken:  cfg.Twilio.AuthToken,
			From:       cfg.Twilio.PhoneNumber,
		})
		if err != nil {
			logger.Warn("twilio sender unavailable, sms will be skipped", slog.String("error", err.Error()))
			opts = append(opts, notificationapp.WithSMSSender(notificationsms.LogSender{Logger: logger}))
		} else {
			opts = append(opts, notificationapp.WithSMSSender(sender))
		}
	} else {
		opts = append(opts, notificationapp.WithSMSSender(notificationsms.LogSender{Logger: logger}))
	}

	cleanup := func() {}
	publisher, err := newEventPublisher(cfg.Broker)
	switch {
	case err != nil:
		logger.Warn("event broker unavailable, order events will not be published",
			slog.String("broker", cfg.Broker.Kind), slog.String("error", err.Error()))
	case publisher != nil:
		opts = append(opts, notificationapp.WithEventPublisher(publisher))
		cleanup = func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("failed to close event broker", slog.String("error", err.Error()))
			}
		}
		logger.Info("order events enabled", slog.String("broker", cfg.Broker.Kind))
	}

	core := notificationapp.NewService(repos.Orders, repos.Restaurants, repos.Users, opts...)
	service := notificationobs.New(
		core,
		notificationobs.WithLogger(logger),
		notificationobs.WithTracer(instruments.Tracer("internal.notifications.application")),
		notificationobs.WithMeter(instruments.Meter("internal.notifications.application")),
	)
	return service, cleanup
}

func newEventPublisher(cfg BrokerConfig) (notificationports.EventPublisher, error) {
	switch cfg.Kind {
	case BrokerRabbitMQ:
		conn, err := messaging.DialRabbitMQ(cfg.AMQPURL)
		if err != nil {
			return nil, err
		}
		return notificationbroker.NewRabbitPublisher(conn, cfg.Exchange), nil
	case BrokerKafka:
		brokers := messaging.ParseBrokers(cfg.KafkaBrokers)
		if len(brokers) == 0 {
			return nil, errors.New("no kafka brokers configured")
		}
		topic := cfg.KafkaTopic
		if topic == "" {
			topic = notificationbroker.DefaultTopic
		}
		return notificationbroker.NewKafkaPublisher(messaging.NewKafkaWriter(brokers, topic)), nil
	default:
		return nil, nil
	}
}

// ConnectTemporalClient dials Temporal with tracing and structured logging.
func ConnectTemporalClient(cfg TemporalConfig, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.Disabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.Address,
		Namespace: cfg.Namespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

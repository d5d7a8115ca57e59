package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"
	"gopkg.in/yaml.v3"
)

// Broker kinds accepted by EVENT_BROKER.
const (
	BrokerNone     = "none"
	BrokerRabbitMQ = "rabbitmq"
	BrokerKafka    = "kafka"
)

// Config carries settings for the API and worker processes. Values come from an optional
// YAML file named by CONFIG_FILE, then environment variables override them.
type Config struct {
	Port                       string         `yaml:"port"`
	PostgresDSN                string         `yaml:"postgresDsn"`
	FrontendURL                string         `yaml:"frontendUrl"`
	SessionTTL                 time.Duration  `yaml:"sessionTtl"`
	SessionPurgeIntervalMinute int            `yaml:"sessionPurgeIntervalMinutes"`
	Payments                   PaymentsConfig `yaml:"payments"`
	SMTP                       SMTPConfig     `yaml:"smtp"`
	Twilio                     TwilioConfig   `yaml:"twilio"`
	Broker                     BrokerConfig   `yaml:"broker"`
	Temporal                   TemporalConfig `yaml:"temporal"`
}

type PaymentsConfig struct {
	StripeAPIKey        string        `yaml:"stripeApiKey"`
	StripeWebhookSecret string        `yaml:"stripeWebhookSecret"`
	Currency            string        `yaml:"currency"`
	GatewayTimeout      time.Duration `yaml:"gatewayTimeout"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Enabled reports whether email delivery is configured.
func (c SMTPConfig) Enabled() bool { return c.Host != "" && c.From != "" }

type TwilioConfig struct {
	AccountSID  string `yaml:"accountSid"`
	AuthToken   string `yaml:"authToken"`
	PhoneNumber string `yaml:"phoneNumber"`
}

// Enabled reports whether SMS delivery is configured.
func (c TwilioConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.PhoneNumber != ""
}

type BrokerConfig struct {
	Kind         string `yaml:"kind"`
	AMQPURL      string `yaml:"amqpUrl"`
	Exchange     string `yaml:"exchange"`
	KafkaBrokers string `yaml:"kafkaBrokers"`
	KafkaTopic   string `yaml:"kafkaTopic"`
}

type TemporalConfig struct {
	Address   string `yaml:"address"`
	Namespace string `yaml:"namespace"`
	Disabled  bool   `yaml:"disabled"`
}

// LoadConfig reads CONFIG_FILE when set, applies environment overrides and defaults, and
// validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{}
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	overrideString(&cfg.Port, "PORT")
	overrideString(&cfg.PostgresDSN, "POSTGRES_DSN")
	overrideString(&cfg.FrontendURL, "FRONTEND_URL")
	overrideString(&cfg.Payments.StripeAPIKey, "STRIPE_API_KEY")
	overrideString(&cfg.Payments.StripeWebhookSecret, "STRIPE_WEBHOOK_SECRET")
	overrideString(&cfg.Payments.Currency, "CURRENCY")
	overrideString(&cfg.SMTP.Host, "SMTP_HOST")
	overrideString(&cfg.SMTP.Username, "SMTP_USER")
	overrideString(&cfg.SMTP.Password, "SMTP_PASSWORD")
	overrideString(&cfg.SMTP.From, "EMAIL_FROM")
	overrideString(&cfg.Twilio.AccountSID, "TWILIO_ACCOUNT_SID")
	overrideString(&cfg.Twilio.AuthToken, "TWILIO_AUTH_TOKEN")
	overrideString(&cfg.Twilio.PhoneNumber, "TWILIO_PHONE_NUMBER")
	overrideString(&cfg.Broker.Kind, "EVENT_BROKER")
	overrideString(&cfg.Broker.AMQPURL, "AMQP_URL")
	overrideString(&cfg.Broker.Exchange, "AMQP_EXCHANGE")
	overrideString(&cfg.Broker.KafkaBrokers, "KAFKA_BROKERS")
	overrideString(&cfg.Broker.KafkaTopic, "KAFKA_TOPIC")
	overrideString(&cfg.Temporal.Address, "TEMPORAL_ADDRESS")
	overrideString(&cfg.Temporal.Namespace, "TEMPORAL_NAMESPACE")
	if raw, ok := lookup("TEMPORAL_DISABLED"); ok {
		cfg.Temporal.Disabled = isTruthy(raw)
	}
	if raw, ok := lookup("SMTP_PORT"); ok {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 {
			return Config{}, fmt.Errorf("SMTP_PORT must be a positive integer")
		}
		cfg.SMTP.Port = port
	}
	if raw, ok := lookup("PAYMENT_GATEWAY_TIMEOUT"); ok {
		timeout, err := time.ParseDuration(raw)
		if err != nil || timeout <= 0 {
			return Config{}, fmt.Errorf("PAYMENT_GATEWAY_TIMEOUT must be a positive duration")
		}
		cfg.Payments.GatewayTimeout = timeout
	}
	if raw, ok := lookup("SESSION_TTL_HOURS"); ok {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return Config{}, fmt.Errorf("SESSION_TTL_HOURS must be a positive integer")
		}
		cfg.SessionTTL = time.Duration(hours) * time.Hour
	}
	if raw, ok := lookup("SESSION_PURGE_INTERVAL_MINUTES"); ok {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			return Config{}, fmt.Errorf("SESSION_PURGE_INTERVAL_MINUTES must be a positive integer")
		}
		cfg.SessionPurgeIntervalMinute = minutes
	}

	applyDefaults(&cfg)
	switch cfg.Broker.Kind {
	case BrokerNone, BrokerRabbitMQ, BrokerKafka:
	default:
		return Config{}, fmt.Errorf("EVENT_BROKER must be one of none, rabbitmq, kafka")
	}
	if cfg.Broker.Kind == BrokerRabbitMQ && cfg.Broker.AMQPURL == "" {
		return Config{}, fmt.Errorf("AMQP_URL is required when EVENT_BROKER=rabbitmq")
	}
	if cfg.Broker.Kind == BrokerKafka && cfg.Broker.KafkaBrokers == "" {
		return Config{}, fmt.Errorf("KAFKA_BROKERS is required when EVENT_BROKER=kafka")
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	setDefault(&cfg.Port, "8080")
	setDefault(&cfg.FrontendURL, "http://localhost:5173")
	setDefault(&cfg.Payments.Currency, "usd")
	setDefault(&cfg.Broker.Kind, BrokerNone)
	setDefault(&cfg.Temporal.Address, client.DefaultHostPort)
	setDefault(&cfg.Temporal.Namespace, client.DefaultNamespace)
	cfg.Broker.Kind = strings.ToLower(cfg.Broker.Kind)
	if cfg.Payments.GatewayTimeout <= 0 {
		cfg.Payments.GatewayTimeout = 10 * time.Second
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
}

func lookup(key string) (string, bool) {
	val := strings.TrimSpace(os.Getenv(key))
	return val, val != ""
}

func overrideString(target *string, key string) {
	if val, ok := lookup(key); ok {
		*target = val
	}
}

func setDefault(target *string, fallback string) {
	if strings.TrimSpace(*target) == "" {
		*target = fallback
	}
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}

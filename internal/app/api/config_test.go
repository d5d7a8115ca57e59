package api

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
)

var configEnv = []string{
	"CONFIG_FILE", "PORT", "POSTGRES_DSN", "FRONTEND_URL", "STRIPE_API_KEY", "STRIPE_WEBHOOK_SECRET",
	"CURRENCY", "SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASSWORD", "EMAIL_FROM",
	"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN", "TWILIO_PHONE_NUMBER", "EVENT_BROKER", "AMQP_URL",
	"KAFKA_BROKERS", "TEMPORAL_ADDRESS", "TEMPORAL_NAMESPACE", "TEMPORAL_DISABLED",
	"PAYMENT_GATEWAY_TIMEOUT", "SESSION_TTL_HOURS", "SESSION_PURGE_INTERVAL_MINUTES",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "usd", cfg.Payments.Currency)
	assert.Equal(t, 10*time.Second, cfg.Payments.GatewayTimeout)
	assert.Equal(t, BrokerNone, cfg.Broker.Kind)
	assert.Equal(t, client.DefaultHostPort, cfg.Temporal.Address)
	assert.False(t, cfg.SMTP.Enabled())
	assert.False(t, cfg.Twilio.Enabled())
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9090"
frontendUrl: https://shop.example
payments:
  currency: gbp
  gatewayTimeout: 3s
smtp:
  host: smtp.example
  from: orders@example.com
broker:
  kind: kafka
  kafkaBrokers: kafka:9092
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7070")
	t.Setenv("TEMPORAL_DISABLED", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "https://shop.example", cfg.FrontendURL)
	assert.Equal(t, "gbp", cfg.Payments.Currency)
	assert.Equal(t, 3*time.Second, cfg.Payments.GatewayTimeout)
	assert.True(t, cfg.SMTP.Enabled())
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, BrokerKafka, cfg.Broker.Kind)
	assert.True(t, cfg.Temporal.Disabled)
}

func TestLoadConfig_Validation(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown broker":       {"EVENT_BROKER": "nats"},
		"rabbit without url":   {"EVENT_BROKER": "rabbitmq"},
		"kafka without broker": {"EVENT_BROKER": "kafka"},
		"bad timeout":          {"PAYMENT_GATEWAY_TIMEOUT": "soon"},
		"bad purge interval":   {"SESSION_PURGE_INTERVAL_MINUTES": "-1"},
		"bad smtp port":        {"SMTP_PORT": "smtp"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}

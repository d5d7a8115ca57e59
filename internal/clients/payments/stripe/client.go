package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	stripeapi "github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"
)

const (
	defaultCurrency = "usd"
	defaultTimeout  = 10 * time.Second
)

// ErrInvalidSignature is returned when a webhook payload does not verify against the signing secret.
var ErrInvalidSignature = errors.New("stripe webhook signature invalid")

// Config holds the credentials and transport settings for the Stripe API.
type Config struct {
	APIKey        string
	WebhookSecret string
	Currency      string
	Timeout       time.Duration
	// BackendURL overrides the API base URL. Used by tests.
	BackendURL string
	HTTPClient *http.Client
}

// Client wraps the stripe-go checkout session API and webhook verification.
type Client struct {
	sessions      checkoutsession.Client
	webhookSecret string
	currency      string
}

// LineItem is a priced product line in minor units.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// SessionRequest describes a hosted checkout page.
type SessionRequest struct {
	LineItems      []LineItem
	ShippingAmount int64
	SuccessURL     string
	CancelURL      string
	Metadata       map[string]string
}

// Session is the created hosted checkout page.
type Session struct {
	ID  string
	URL string
}

// Event is a verified webhook event. Session fields are populated for checkout.session.* events.
type Event struct {
	ID          string
	Type        string
	SessionID   string
	AmountTotal int64
	Metadata    map[string]string
}

// NewClient instantiates the Stripe client with a bounded HTTP timeout.
func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("stripe API key is required")
	}
	secret := strings.TrimSpace(cfg.WebhookSecret)
	if secret == "" {
		return nil, errors.New("stripe webhook secret is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	currency := strings.ToLower(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	backendCfg := &stripeapi.BackendConfig{
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripeapi.Int64(0),
		LeveledLogger:     &stripeapi.LeveledLogger{Level: stripeapi.LevelNull},
	}
	if url := strings.TrimSpace(cfg.BackendURL); url != "" {
		backendCfg.URL = stripeapi.String(url)
	}
	backend := stripeapi.GetBackendWithConfig(stripeapi.APIBackend, backendCfg)

	return &Client{
		sessions:      checkoutsession.Client{B: backend, Key: apiKey},
		webhookSecret: secret,
		currency:      currency,
	}, nil
}

// CreateCheckoutSession creates a payment-mode hosted checkout session.
func (c *Client) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	if c == nil {
		return nil, errors.New("stripe client not configured")
	}
	params := &stripeapi.CheckoutSessionParams{
		Mode:       stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		SuccessURL: stripeapi.String(req.SuccessURL),
		CancelURL:  stripeapi.String(req.CancelURL),
	}
	params.Context = ctx
	for _, line := range req.LineItems {
		params.LineItems = append(params.LineItems, &stripeapi.CheckoutSessionLineItemParams{
			PriceData: &stripeapi.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripeapi.String(c.currency),
				UnitAmount: stripeapi.Int64(line.UnitAmount),
				ProductData: &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripeapi.String(line.Name),
				},
			},
			Quantity: stripeapi.Int64(line.Quantity),
		})
	}
	params.ShippingOptions = []*stripeapi.CheckoutSessionShippingOptionParams{{
		ShippingRateData: &stripeapi.CheckoutSessionShippingOptionShippingRateDataParams{
			DisplayName: stripeapi.String("Delivery"),
			Type:        stripeapi.String("fixed_amount"),
			FixedAmount: &stripeapi.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
				Amount:   stripeapi.Int64(req.ShippingAmount),
				Currency: stripeapi.String(c.currency),
			},
		},
	}}
	for key, value := range req.Metadata {
		params.AddMetadata(key, value)
	}

	created, err := c.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create stripe checkout session: %w", err)
	}
	if created == nil || strings.TrimSpace(created.URL) == "" {
		return nil, errors.New("stripe returned a checkout session without a URL")
	}
	return &Session{ID: created.ID, URL: created.URL}, nil
}

// ParseEvent verifies the Stripe-Signature header and decodes the event.
func (c *Client) ParseEvent(payload []byte, signature string) (*Event, error) {
	if c == nil {
		return nil, errors.New("stripe client not configured")
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	out := &Event{ID: event.ID, Type: string(event.Type)}
	if !strings.HasPrefix(out.Type, "checkout.session.") || event.Data == nil {
		return out, nil
	}
	var session stripeapi.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	out.SessionID = session.ID
	out.AmountTotal = session.AmountTotal
	out.Metadata = session.Metadata
	return out, nil
}

package ports

import (
	"context"
	"errors"
	"time"
)

// EventCheckoutSessionCompleted is the only provider event that mutates orders.
const EventCheckoutSessionCompleted = "checkout.session.completed"

// Metadata keys attached to every checkout session.
const (
	MetadataOrderID      = "orderId"
	MetadataRestaurantID = "restaurantId"
)

var ErrInvalidSignature = errors.New("payment event signature verification failed")

// LineItem is one priced line sent to the payment provider.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// CheckoutSessionRequest describes the hosted payment page to create.
type CheckoutSessionRequest struct {
	LineItems      []LineItem
	ShippingAmount int64
	SuccessURL     string
	CancelURL      string
	Metadata       map[string]string
}

// CheckoutSession is the provider's answer to a session request.
type CheckoutSession struct {
	ID  string
	URL string
}

// PaymentEvent is a verified provider notification.
type PaymentEvent struct {
	ID          string
	Type        string
	SessionID   string
	AmountTotal int64
	Metadata    map[string]string
}

// PaymentGateway is the outbound port to the hosted-checkout provider.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error)
	// ParseEvent verifies the signature and decodes the event. Verification failures return ErrInvalidSignature.
	ParseEvent(payload []byte, signature string) (*PaymentEvent, error)
}

// PaymentEventRecord is the audit trail entry for a processed provider event.
type PaymentEventRecord struct {
	EventID    string
	EventType  string
	OrderID    string
	Outcome    string
	ReceivedAt time.Time
}

// PaymentEventStore remembers which provider events have been handled.
type PaymentEventStore interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	// Record stores the event; recording an already known event is not an error.
	Record(ctx context.Context, record PaymentEventRecord) error
}

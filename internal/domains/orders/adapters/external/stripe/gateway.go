package stripe

import (
	"context"
	"errors"
	"fmt"

	stripeclient "github.com/Apurer/food-marketplace-api/internal/clients/payments/stripe"
	"github.com/Apurer/food-marketplace-api/internal/domains/orders/ports"
)

// Gateway implements the payment gateway port on top of the Stripe client.
type Gateway struct {
	client *stripeclient.Client
}

// NewGateway wires a Stripe client into the orders payment port.
func NewGateway(client *stripeclient.Client) *Gateway {
	return &Gateway{client: client}
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, req ports.CheckoutSessionRequest) (*ports.CheckoutSession, error) {
	if g == nil || g.client == nil {
		return nil, errors.New("stripe gateway not configured")
	}
	lines := make([]stripeclient.LineItem, 0, len(req.LineItems))
	for _, line := range req.LineItems {
		lines = append(lines, stripeclient.LineItem{Name: line.Name, UnitAmount: line.UnitAmount, Quantity: line.Quantity})
	}
	session, err := g.client.CreateCheckoutSession(ctx, stripeclient.SessionRequest{
		LineItems:      lines,
		ShippingAmount: req.ShippingAmount,
		SuccessURL:     req.SuccessURL,
		CancelURL:      req.CancelURL,
		Metadata:       req.Metadata,
	})
	if err != nil {
		return nil, err
	}
	return &ports.CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func (g *Gateway) ParseEvent(payload []byte, signature string) (*ports.PaymentEvent, error) {
	if g == nil || g.client == nil {
		return nil, errors.New("stripe gateway not configured")
	}
	event, err := g.client.ParseEvent(payload, signature)
	if err != nil {
		if errors.Is(err, stripeclient.ErrInvalidSignature) {
			return nil, fmt.Errorf("%w: %w", ports.ErrInvalidSignature, err)
		}
		return nil, err
	}
	return &ports.PaymentEvent{
		ID:          event.ID,
		Type:        event.Type,
		SessionID:   event.SessionID,
		AmountTotal: event.AmountTotal,
		Metadata:    event.Metadata,
	}, nil
}

var _ ports.PaymentGateway = (*Gateway)(nil)

package ports

import (
	"context"

	"github.com/Apurer/food-marketplace-api/internal/domains/orders/domain"
)

// CartLineInput is a cart line as submitted by the client. Only the menu item and quantity are trusted.
type CartLineInput struct {
	MenuItemID string
	Name       string
	Quantity   string
}

// CheckoutInput starts a checkout for the authenticated customer.
type CheckoutInput struct {
	UserID          string
	RestaurantID    string
	DeliveryDetails domain.DeliveryDetails
	CartItems       []CartLineInput
}

// CheckoutResult carries the created order and the hosted payment page.
type CheckoutResult struct {
	OrderID   string
	SessionID string
	URL       string
}

// Webhook outcomes.
const (
	OutcomeConfirmed        = "confirmed"
	OutcomeAlreadyProcessed = "already_processed"
	OutcomeDuplicateEvent   = "duplicate_event"
	OutcomeIgnored          = "ignored"
	OutcomeOrderNotFound    = "order_not_found"
)

// WebhookResult describes how an authenticated provider event was handled.
type WebhookResult struct {
	EventID   string
	EventType string
	OrderID   string
	Outcome   string
}

// UpdateStatusInput is a fulfillment transition requested by a restaurant manager.
type UpdateStatusInput struct {
	ManagerID string
	OrderID   string
	Status    string
}

// HistoryInput identifies an order history read.
type HistoryInput struct {
	CallerID string
	OrderID  string
}

// RestaurantSummary is the restaurant view attached to customer order listings.
type RestaurantSummary struct {
	ID                    string
	Name                  string
	ImageURL              string
	City                  string
	DeliveryPrice         int64
	EstimatedDeliveryTime int
}

// CustomerSummary is the user view attached to order listings.
type CustomerSummary struct {
	ID    string
	Name  string
	Email string
}

// OrderView is an order with its related summaries.
type OrderView struct {
	Order      *domain.Order
	Restaurant *RestaurantSummary
	Customer   *CustomerSummary
}

// Service exposes the order lifecycle use cases to adapters.
type Service interface {
	CreateCheckoutSession(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
	HandlePaymentWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*domain.Order, error)
	ListForCustomer(ctx context.Context, userID string) ([]*OrderView, error)
	ListForRestaurant(ctx context.Context, managerID string) ([]*OrderView, error)
	History(ctx context.Context, input HistoryInput) ([]domain.StatusChange, error)
}

package mapper

import (
	"encoding/json"
	"time"

	"github.com/Apurer/food-marketplace-api/internal/domains/orders/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/orders/ports"
)

// CartItem is the HTTP representation of a cart line. Quantity accepts a number or a numeric string.
type CartItem struct {
	MenuItemID string      `json:"menuItemId"`
	Name       string      `json:"name"`
	Quantity   json.Number `json:"quantity"`
}

// DeliveryDetails mirrors the delivery block of checkout requests and order responses.
type DeliveryDetails struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	AddressLine1 string `json:"addressLine1"`
	City         string `json:"city"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
}

// CheckoutSessionRequest is the body of POST /api/order/checkout/create-checkout-session.
type CheckoutSessionRequest struct {
	CartItems       []CartItem      `json:"cartItems"`
	DeliveryDetails DeliveryDetails `json:"deliveryDetails"`
	RestaurantID    string          `json:"restaurantId"`
}

// CheckoutSessionResponse returns the hosted payment page.
type CheckoutSessionResponse struct {
	URL     string `json:"url"`
	OrderID string `json:"orderId"`
}

// StatusUpdateRequest is the body of PATCH /api/my/restaurant/order/:orderId/status.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// OrderLine is a persisted cart line.
type OrderLine struct {
	MenuItemID string `json:"menuItemId"`
	Name       string `json:"name"`
	Quantity   int64  `json:"quantity"`
}

// RestaurantSummary is embedded in customer order listings.
type RestaurantSummary struct {
	ID                    string `json:"id"`
	Name                  string `json:"restaurantName"`
	ImageURL              string `json:"imageUrl,omitempty"`
	City                  string `json:"city"`
	DeliveryPrice         int64  `json:"deliveryPrice"`
	EstimatedDeliveryTime int    `json:"estimatedDeliveryTime"`
}

// CustomerSummary is embedded in order listings.
type CustomerSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// Order is the HTTP representation of an order.
type Order struct {
	ID              string             `json:"id"`
	RestaurantID    string             `json:"restaurantId"`
	UserID          string             `json:"userId"`
	Restaurant      *RestaurantSummary `json:"restaurant,omitempty"`
	User            *CustomerSummary   `json:"user,omitempty"`
	DeliveryDetails DeliveryDetails    `json:"deliveryDetails"`
	CartItems       []OrderLine        `json:"cartItems"`
	TotalAmount     *int64             `json:"totalAmount,omitempty"`
	Status          string             `json:"status"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// StatusChange is one history row.
type StatusChange struct {
	From      string    `json:"from,omitempty"`
	To        string    `json:"to"`
	ChangedBy string    `json:"changedBy,omitempty"`
	Source    string    `json:"source"`
	At        time.Time `json:"at"`
}

// ToCheckoutInput maps a checkout request for the authenticated customer.
func ToCheckoutInput(userID string, req CheckoutSessionRequest) ports.CheckoutInput {
	lines := make([]ports.CartLineInput, 0, len(req.CartItems))
	for _, item := range req.CartItems {
		lines = append(lines, ports.CartLineInput{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Quantity:   item.Quantity.String(),
		})
	}
	return ports.CheckoutInput{
		UserID:       userID,
		RestaurantID: req.RestaurantID,
		DeliveryDetails: domain.DeliveryDetails{
			Email:        req.DeliveryDetails.Email,
			Name:         req.DeliveryDetails.Name,
			AddressLine1: req.DeliveryDetails.AddressLine1,
			City:         req.DeliveryDetails.City,
			PhoneNumber:  req.DeliveryDetails.PhoneNumber,
		},
		CartItems: lines,
	}
}

// FromOrder maps a domain order without related summaries.
func FromOrder(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	lines := make([]OrderLine, 0, len(order.CartItems))
	for _, item := range order.CartItems {
		lines = append(lines, OrderLine{MenuItemID: item.MenuItemID, Name: item.Name, Quantity: item.Quantity})
	}
	return Order{
		ID:           order.ID,
		RestaurantID: order.RestaurantID,
		UserID:       order.UserID,
		DeliveryDetails: DeliveryDetails{
			Email:        order.DeliveryDetails.Email,
			Name:         order.DeliveryDetails.Name,
			AddressLine1: order.DeliveryDetails.AddressLine1,
			City:         order.DeliveryDetails.City,
			PhoneNumber:  order.DeliveryDetails.PhoneNumber,
		},
		CartItems:   lines,
		TotalAmount: order.TotalAmount,
		Status:      string(order.Status),
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}

// FromOrderView maps an order with its restaurant and customer summaries.
func FromOrderView(view *ports.OrderView) Order {
	if view == nil {
		return Order{}
	}
	out := FromOrder(view.Order)
	if r := view.Restaurant; r != nil {
		out.Restaurant = &RestaurantSummary{
			ID:                    r.ID,
			Name:                  r.Name,
			ImageURL:              r.ImageURL,
			City:                  r.City,
			DeliveryPrice:         r.DeliveryPrice,
			EstimatedDeliveryTime: r.EstimatedDeliveryTime,
		}
	}
	if u := view.Customer; u != nil {
		out.User = &CustomerSummary{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return out
}

// FromOrderViews maps a listing.
func FromOrderViews(views []*ports.OrderView) []Order {
	result := make([]Order, 0, len(views))
	for _, view := range views {
		result = append(result, FromOrderView(view))
	}
	return result
}

// FromHistory maps the status trail.
func FromHistory(changes []domain.StatusChange) []StatusChange {
	result := make([]StatusChange, 0, len(changes))
	for _, change := range changes {
		result = append(result, StatusChange{
			From:      string(change.From),
			To:        string(change.To),
			ChangedBy: change.ChangedBy,
			Source:    string(change.Source),
			At:        change.At,
		})
	}
	return result
}

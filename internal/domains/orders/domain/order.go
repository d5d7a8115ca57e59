package domain

import (
	"errors"
	"strings"
	"time"
)

// Status enumerates the order lifecycle.
type Status string

const (
	StatusPlaced         Status = "placed"
	StatusPaid           Status = "paid"
	StatusInProgress     Status = "inProgress"
	StatusOutForDelivery Status = "outForDelivery"
	StatusDelivered      Status = "delivered"
)

var lifecycle = []Status{
	StatusPlaced,
	StatusPaid,
	StatusInProgress,
	StatusOutForDelivery,
	StatusDelivered,
}

var (
	ErrMissingUser       = errors.New("order user is required")
	ErrMissingRestaurant = errors.New("order restaurant is required")
	ErrEmptyCart         = errors.New("cart must contain at least one item")
	ErrInvalidQuantity   = errors.New("quantity must be a non-negative integer")
	ErrInvalidDelivery   = errors.New("delivery details require email, name, addressLine1 and city")
	ErrInvalidStatus     = errors.New("order status is invalid")
	ErrInvalidAmount     = errors.New("total amount must not be negative")
	ErrAlreadyPaid       = errors.New("order has already been paid")
	ErrPaidReserved      = errors.New("paid status can only be set by payment confirmation")
)

// Valid reports whether the status belongs to the lifecycle.
func (s Status) Valid() bool {
	return s.Rank() >= 0
}

// Rank returns the position of the status in the lifecycle, or -1 when unknown.
func (s Status) Rank() int {
	for i, candidate := range lifecycle {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Terminal reports whether no later stage exists.
func (s Status) Terminal() bool {
	return s == StatusDelivered
}

// ParseStatus converts caller input into a lifecycle status.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.TrimSpace(raw))
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// Statuses returns the lifecycle in order.
func Statuses() []Status {
	out := make([]Status, len(lifecycle))
	copy(out, lifecycle)
	return out
}

// CartItem is the checkout-time snapshot of one cart line.
type CartItem struct {
	MenuItemID string
	Name       string
	Quantity   int64
}

// DeliveryDetails is captured at checkout, independent of the customer profile.
type DeliveryDetails struct {
	Email        string
	Name         string
	AddressLine1 string
	City         string
	PhoneNumber  string
}

// Normalize trims all fields.
func (d DeliveryDetails) Normalize() DeliveryDetails {
	return DeliveryDetails{
		Email:        strings.TrimSpace(d.Email),
		Name:         strings.TrimSpace(d.Name),
		AddressLine1: strings.TrimSpace(d.AddressLine1),
		City:         strings.TrimSpace(d.City),
		PhoneNumber:  strings.TrimSpace(d.PhoneNumber),
	}
}

// Validate requires everything except the phone number.
func (d DeliveryDetails) Validate() error {
	d = d.Normalize()
	if d.Email == "" || !strings.Contains(d.Email, "@") || d.Name == "" || d.AddressLine1 == "" || d.City == "" {
		return ErrInvalidDelivery
	}
	return nil
}

// Order is the aggregate manipulated by checkout, payment confirmation and fulfillment.
type Order struct {
	ID              string
	UserID          string
	RestaurantID    string
	CartItems       []CartItem
	DeliveryDetails DeliveryDetails
	// TotalAmount is in minor currency units and stays nil until payment is confirmed.
	TotalAmount *int64
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrder builds an order in the placed state.
func NewOrder(id, userID, restaurantID string, items []CartItem, delivery DeliveryDetails, createdAt time.Time) (*Order, error) {
	order := &Order{
		ID:              strings.TrimSpace(id),
		UserID:          strings.TrimSpace(userID),
		RestaurantID:    strings.TrimSpace(restaurantID),
		CartItems:       append([]CartItem(nil), items...),
		DeliveryDetails: delivery.Normalize(),
		Status:          StatusPlaced,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if o.UserID == "" {
		return ErrMissingUser
	}
	if o.RestaurantID == "" {
		return ErrMissingRestaurant
	}
	if len(o.CartItems) == 0 {
		return ErrEmptyCart
	}
	for _, item := range o.CartItems {
		if item.Quantity < 0 {
			return ErrInvalidQuantity
		}
	}
	if err := o.DeliveryDetails.Validate(); err != nil {
		return err
	}
	if !o.Status.Valid() {
		return ErrInvalidStatus
	}
	if o.TotalAmount != nil && *o.TotalAmount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// MarkPaid records the settled amount. Only a placed order can become paid.
func (o *Order) MarkPaid(amount int64, at time.Time) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	if o.Status != StatusPlaced {
		return ErrAlreadyPaid
	}
	o.TotalAmount = &amount
	o.Status = StatusPaid
	o.UpdatedAt = at
	return nil
}

// SetStatus applies a fulfillment transition. Any known stage except paid is accepted.
func (o *Order) SetStatus(status Status, at time.Time) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	if status == StatusPaid {
		return ErrPaidReserved
	}
	o.Status = status
	o.UpdatedAt = at
	return nil
}

// Clone returns a deep copy so adapters never share slices or pointers with callers.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.CartItems = append([]CartItem(nil), o.CartItems...)
	if o.TotalAmount != nil {
		amount := *o.TotalAmount
		clone.TotalAmount = &amount
	}
	return &clone
}

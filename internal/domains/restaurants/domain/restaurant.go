package domain

import (
	"errors"
	"strings"
	"time"
)

// ApprovalStatus is the admin review state of a restaurant listing.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

var (
	ErrEmptyName         = errors.New("restaurant name is required")
	ErrMissingLocation   = errors.New("restaurant city and country are required")
	ErrMissingManager    = errors.New("restaurant manager is required")
	ErrInvalidDelivery   = errors.New("delivery price and estimated delivery time must not be negative")
	ErrEmptyCuisines     = errors.New("at least one cuisine is required")
	ErrInvalidMenuItem   = errors.New("menu items require a name and a non-negative price")
	ErrDuplicateMenuItem = errors.New("menu item ids must be unique")
	ErrInvalidApproval   = errors.New("approval status must be pending, approved or rejected")
)

// Valid reports whether the approval status is known.
func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	default:
		return false
	}
}

// MenuItem is a priced item offered by a restaurant. Price is in minor units.
type MenuItem struct {
	ID       string
	Name     string
	Price    int64
	ImageURL string
}

// Restaurant is the catalog aggregate.
type Restaurant struct {
	ID                    string
	ManagerID             string
	Name                  string
	City                  string
	Country               string
	DeliveryPrice         int64
	EstimatedDeliveryTime int
	Cuisines              []string
	MenuItems             []MenuItem
	ImageURL              string
	ApprovalStatus        ApprovalStatus
	LastUpdated           time.Time
}

// Details groups the manager-editable fields of a restaurant.
type Details struct {
	Name                  string
	City                  string
	Country               string
	DeliveryPrice         int64
	EstimatedDeliveryTime int
	Cuisines              []string
	MenuItems             []MenuItem
	ImageURL              string
}

// NewRestaurant creates an approved listing owned by the manager.
func NewRestaurant(id, managerID string, details Details, now time.Time) (*Restaurant, error) {
	r := &Restaurant{
		ID:             strings.TrimSpace(id),
		ManagerID:      strings.TrimSpace(managerID),
		ApprovalStatus: ApprovalApproved,
	}
	if err := r.Apply(details, now); err != nil {
		return nil, err
	}
	return r, nil
}

// Apply replaces the editable fields and validates the result.
func (r *Restaurant) Apply(details Details, now time.Time) error {
	r.Name = strings.TrimSpace(details.Name)
	r.City = strings.TrimSpace(details.City)
	r.Country = strings.TrimSpace(details.Country)
	r.DeliveryPrice = details.DeliveryPrice
	r.EstimatedDeliveryTime = details.EstimatedDeliveryTime
	r.ImageURL = strings.TrimSpace(details.ImageURL)
	r.Cuisines = make([]string, 0, len(details.Cuisines))
	for _, cuisine := range details.Cuisines {
		if cuisine = strings.TrimSpace(cuisine); cuisine != "" {
			r.Cuisines = append(r.Cuisines, cuisine)
		}
	}
	r.MenuItems = make([]MenuItem, 0, len(details.MenuItems))
	for _, item := range details.MenuItems {
		item.ID = strings.TrimSpace(item.ID)
		item.Name = strings.TrimSpace(item.Name)
		item.ImageURL = strings.TrimSpace(item.ImageURL)
		r.MenuItems = append(r.MenuItems, item)
	}
	r.LastUpdated = now
	return r.Validate()
}

// Validate enforces the listing invariants.
func (r *Restaurant) Validate() error {
	if r.ManagerID == "" {
		return ErrMissingManager
	}
	if r.Name == "" {
		return ErrEmptyName
	}
	if r.City == "" || r.Country == "" {
		return ErrMissingLocation
	}
	if r.DeliveryPrice < 0 || r.EstimatedDeliveryTime < 0 {
		return ErrInvalidDelivery
	}
	if len(r.Cuisines) == 0 {
		return ErrEmptyCuisines
	}
	seen := make(map[string]struct{}, len(r.MenuItems))
	for _, item := range r.MenuItems {
		if item.Name == "" || item.Price < 0 {
			return ErrInvalidMenuItem
		}
		if item.ID == "" {
			continue
		}
		if _, dup := seen[item.ID]; dup {
			return ErrDuplicateMenuItem
		}
		seen[item.ID] = struct{}{}
	}
	if !r.ApprovalStatus.Valid() {
		return ErrInvalidApproval
	}
	return nil
}

// SetApproval records an admin decision.
func (r *Restaurant) SetApproval(status ApprovalStatus, now time.Time) error {
	if !status.Valid() {
		return ErrInvalidApproval
	}
	r.ApprovalStatus = status
	r.LastUpdated = now
	return nil
}

// MenuItem looks up a live menu item by id.
func (r *Restaurant) MenuItem(id string) (MenuItem, bool) {
	id = strings.TrimSpace(id)
	for _, item := range r.MenuItems {
		if item.ID == id {
			return item, true
		}
	}
	return MenuItem{}, false
}

// Clone returns a deep copy.
func (r *Restaurant) Clone() *Restaurant {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Cuisines = append([]string(nil), r.Cuisines...)
	clone.MenuItems = append([]MenuItem(nil), r.MenuItems...)
	return &clone
}

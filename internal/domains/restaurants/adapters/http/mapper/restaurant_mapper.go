package mapper

import (
	"time"

	"github.com/Apurer/food-marketplace-api/internal/domains/restaurants/domain"
)

// MenuItem is the HTTP representation of a menu entry. Price is in minor units.
type MenuItem struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// RestaurantRequest is the body of POST and PUT /api/my/restaurant.
type RestaurantRequest struct {
	RestaurantName        string     `json:"restaurantName"`
	City                  string     `json:"city"`
	Country               string     `json:"country"`
	DeliveryPrice         int64      `json:"deliveryPrice"`
	EstimatedDeliveryTime int        `json:"estimatedDeliveryTime"`
	Cuisines              []string   `json:"cuisines"`
	MenuItems             []MenuItem `json:"menuItems"`
	ImageURL              string     `json:"imageUrl,omitempty"`
}

// ApprovalRequest is the body of the admin approval route.
type ApprovalRequest struct {
	Status string `json:"status"`
}

// Restaurant is the HTTP representation of a listing.
type Restaurant struct {
	ID                    string     `json:"id"`
	ManagerID             string     `json:"user"`
	RestaurantName        string     `json:"restaurantName"`
	City                  string     `json:"city"`
	Country               string     `json:"country"`
	DeliveryPrice         int64      `json:"deliveryPrice"`
	EstimatedDeliveryTime int        `json:"estimatedDeliveryTime"`
	Cuisines              []string   `json:"cuisines"`
	MenuItems             []MenuItem `json:"menuItems"`
	ImageURL              string     `json:"imageUrl,omitempty"`
	ApprovalStatus        string     `json:"approvalStatus"`
	LastUpdated           time.Time  `json:"lastUpdated"`
}

// ToDetails maps a request body into editable listing fields.
func ToDetails(req RestaurantRequest) domain.Details {
	items := make([]domain.MenuItem, 0, len(req.MenuItems))
	for _, item := range req.MenuItems {
		items = append(items, domain.MenuItem{ID: item.ID, Name: item.Name, Price: item.Price, ImageURL: item.ImageURL})
	}
	return domain.Details{
		Name:                  req.RestaurantName,
		City:                  req.City,
		Country:               req.Country,
		DeliveryPrice:         req.DeliveryPrice,
		EstimatedDeliveryTime: req.EstimatedDeliveryTime,
		Cuisines:              append([]string(nil), req.Cuisines...),
		MenuItems:             items,
		ImageURL:              req.ImageURL,
	}
}

// FromDomain maps a listing for responses.
func FromDomain(r *domain.Restaurant) Restaurant {
	if r == nil {
		return Restaurant{}
	}
	items := make([]MenuItem, 0, len(r.MenuItems))
	for _, item := range r.MenuItems {
		items = append(items, MenuItem{ID: item.ID, Name: item.Name, Price: item.Price, ImageURL: item.ImageURL})
	}
	cuisines := append([]string{}, r.Cuisines...)
	return Restaurant{
		ID:                    r.ID,
		ManagerID:             r.ManagerID,
		RestaurantName:        r.Name,
		City:                  r.City,
		Country:               r.Country,
		DeliveryPrice:         r.DeliveryPrice,
		EstimatedDeliveryTime: r.EstimatedDeliveryTime,
		Cuisines:              cuisines,
		MenuItems:             items,
		ImageURL:              r.ImageURL,
		ApprovalStatus:        string(r.ApprovalStatus),
		LastUpdated:           r.LastUpdated,
	}
}

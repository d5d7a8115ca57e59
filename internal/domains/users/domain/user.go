package domain

import (
	"errors"
	"strings"
	"time"
)

// Role controls which parts of the marketplace a user may act on.
type Role string

const (
	RoleCustomer          Role = "customer"
	RoleRestaurantManager Role = "restaurant_manager"
	RoleAdmin             Role = "admin"
)

// ApplicationStatus tracks admin review of restaurant manager sign-ups.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

var (
	ErrEmptySubject      = errors.New("auth subject is required")
	ErrInvalidEmail      = errors.New("email must contain '@'")
	ErrInvalidRole       = errors.New("role must be customer, restaurant_manager or admin")
	ErrInvalidStatus     = errors.New("application status must be pending, approved or rejected")
	ErrIncompleteProfile = errors.New("name, addressLine1, city and country are required")
	ErrNotManager        = errors.New("user is not a restaurant manager")
)

// Valid reports whether the role is known.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleRestaurantManager, RoleAdmin:
		return true
	default:
		return false
	}
}

// Valid reports whether the application status is known.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationApproved, ApplicationRejected:
		return true
	default:
		return false
	}
}

// NotificationPreferences are the customer's channel opt-ins.
type NotificationPreferences struct {
	Email bool
	SMS   bool
}

// DefaultPreferences opts into every channel.
func DefaultPreferences() NotificationPreferences {
	return NotificationPreferences{Email: true, SMS: true}
}

// User is a marketplace account keyed by the identity provider subject.
type User struct {
	ID                      string
	AuthSubject             string
	Email                   string
	Name                    string
	AddressLine1            string
	City                    string
	Country                 string
	PhoneNumber             string
	Role                    Role
	ApplicationStatus       ApplicationStatus
	NotificationPreferences NotificationPreferences
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// Profile holds the self-service editable fields.
type Profile struct {
	Name         string
	AddressLine1 string
	City         string
	Country      string
	PhoneNumber  string
}

// NewUser builds a user. Managers start pending review; everyone else is approved.
func NewUser(id, authSubject, email string, role Role, now time.Time) (*User, error) {
	if role == "" {
		role = RoleCustomer
	}
	user := &User{
		ID:                      strings.TrimSpace(id),
		AuthSubject:             strings.TrimSpace(authSubject),
		Email:                   strings.TrimSpace(email),
		Role:                    role,
		ApplicationStatus:       ApplicationApproved,
		NotificationPreferences: DefaultPreferences(),
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if role == RoleRestaurantManager {
		user.ApplicationStatus = ApplicationPending
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile replaces the profile fields. The phone number is optional.
func (u *User) UpdateProfile(profile Profile, now time.Time) error {
	profile.Name = strings.TrimSpace(profile.Name)
	profile.AddressLine1 = strings.TrimSpace(profile.AddressLine1)
	profile.City = strings.TrimSpace(profile.City)
	profile.Country = strings.TrimSpace(profile.Country)
	if profile.Name == "" || profile.AddressLine1 == "" || profile.City == "" || profile.Country == "" {
		return ErrIncompleteProfile
	}
	u.Name = profile.Name
	u.AddressLine1 = profile.AddressLine1
	u.City = profile.City
	u.Country = profile.Country
	u.PhoneNumber = strings.TrimSpace(profile.PhoneNumber)
	u.UpdatedAt = now
	return nil
}

// SetPreferences replaces the notification opt-ins.
func (u *User) SetPreferences(prefs NotificationPreferences, now time.Time) {
	u.NotificationPreferences = prefs
	u.UpdatedAt = now
}

// SetApplicationStatus records an admin review of a manager application.
func (u *User) SetApplicationStatus(status ApplicationStatus, now time.Time) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	if u.Role != RoleRestaurantManager {
		return ErrNotManager
	}
	u.ApplicationStatus = status
	u.UpdatedAt = now
	return nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsManager reports whether the user manages a restaurant.
func (u *User) IsManager() bool { return u.Role == RoleRestaurantManager }

// Validate re-applies core invariants for persistence.
func (u *User) Validate() error {
	if u.AuthSubject == "" {
		return ErrEmptySubject
	}
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}
	if !u.Role.Valid() {
		return ErrInvalidRole
	}
	if !u.ApplicationStatus.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

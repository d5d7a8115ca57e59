package mapper

import (
	"time"

	userdomain "github.com/Apurer/food-marketplace-api/internal/domains/users/domain"
	userports "github.com/Apurer/food-marketplace-api/internal/domains/users/ports"
)

// NotificationPreferences is the transport form of the channel opt-ins.
type NotificationPreferences struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
}

// RegisterRequest is the body of POST /api/my/user.
type RegisterRequest struct {
	Auth0ID string `json:"auth0Id"`
	Email   string `json:"email"`
	Role    string `json:"role,omitempty"`
}

// RegisterResponse carries the user and the bearer token for later requests.
type RegisterResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// UpdateRequest is the body of PUT /api/my/user.
type UpdateRequest struct {
	Name                    string                   `json:"name"`
	AddressLine1            string                   `json:"addressLine1"`
	City                    string                   `json:"city"`
	Country                 string                   `json:"country"`
	PhoneNumber             string                   `json:"phoneNumber,omitempty"`
	NotificationPreferences *NotificationPreferences `json:"notificationPreferences,omitempty"`
}

// ApplicationStatusRequest is the body of the admin manager review route.
type ApplicationStatusRequest struct {
	Status string `json:"status"`
}

// User is the transport-level user payload.
type User struct {
	ID                      string                  `json:"id"`
	Email                   string                  `json:"email"`
	Name                    string                  `json:"name,omitempty"`
	AddressLine1            string                  `json:"addressLine1,omitempty"`
	City                    string                  `json:"city,omitempty"`
	Country                 string                  `json:"country,omitempty"`
	PhoneNumber             string                  `json:"phoneNumber,omitempty"`
	Role                    string                  `json:"role"`
	ApplicationStatus       string                  `json:"applicationStatus"`
	NotificationPreferences NotificationPreferences `json:"notificationPreferences"`
	CreatedAt               time.Time               `json:"createdAt"`
}

// ToRegisterInput maps the registration body.
func ToRegisterInput(req RegisterRequest) userports.RegisterInput {
	return userports.RegisterInput{
		AuthSubject: req.Auth0ID,
		Email:       req.Email,
		Role:        userdomain.Role(req.Role),
	}
}

// ToUpdateInput maps the profile update body.
func ToUpdateInput(req UpdateRequest) userports.UpdateInput {
	input := userports.UpdateInput{
		Profile: userdomain.Profile{
			Name:         req.Name,
			AddressLine1: req.AddressLine1,
			City:         req.City,
			Country:      req.Country,
			PhoneNumber:  req.PhoneNumber,
		},
	}
	if req.NotificationPreferences != nil {
		input.Preferences = &userdomain.NotificationPreferences{
			Email: req.NotificationPreferences.Email,
			SMS:   req.NotificationPreferences.SMS,
		}
	}
	return input
}

// FromDomainUser converts a domain user into a transport representation.
func FromDomainUser(user *userdomain.User) User {
	if user == nil {
		return User{}
	}
	return User{
		ID:                user.ID,
		Email:             user.Email,
		Name:              user.Name,
		AddressLine1:      user.AddressLine1,
		City:              user.City,
		Country:           user.Country,
		PhoneNumber:       user.PhoneNumber,
		Role:              string(user.Role),
		ApplicationStatus: string(user.ApplicationStatus),
		NotificationPreferences: NotificationPreferences{
			Email: user.NotificationPreferences.Email,
			SMS:   user.NotificationPreferences.SMS,
		},
		CreatedAt: user.CreatedAt,
	}
}

// FromDomainUsers converts a slice of domain users to transport representation.
func FromDomainUsers(users []*userdomain.User) []User {
	result := make([]User, 0, len(users))
	for _, user := range users {
		result = append(result, FromDomainUser(user))
	}
	return result
}

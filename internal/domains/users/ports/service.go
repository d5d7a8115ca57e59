package ports

import (
	"context"

	"github.com/Apurer/food-marketplace-api/internal/domains/users/domain"
)

// RegisterInput identifies the caller at the identity provider.
type RegisterInput struct {
	AuthSubject string
	Email       string
	Role        domain.Role

	// SessionToken is the caller's current bearer token, required when the subject already exists.
	SessionToken string
}

// RegisterResult is the current user plus a bearer token for subsequent calls.
type RegisterResult struct {
	User    *domain.User
	Token   string
	Created bool
}

// UpdateInput is a self-service profile update. Nil preferences leave them unchanged.
type UpdateInput struct {
	Profile     domain.Profile
	Preferences *domain.NotificationPreferences
}

// Service exposes identity use cases to adapters.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterResult, error)
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	GetCurrent(ctx context.Context, userID string) (*domain.User, error)
	UpdateCurrent(ctx context.Context, userID string, input UpdateInput) (*domain.User, error)
	ListManagers(ctx context.Context) ([]*domain.User, error)
	SetApplicationStatus(ctx context.Context, userID string, status domain.ApplicationStatus) (*domain.User, error)
	Logout(ctx context.Context, userID string) error
}

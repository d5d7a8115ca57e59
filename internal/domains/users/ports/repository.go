package ports

import (
	"context"
	"errors"

	"github.com/Apurer/food-marketplace-api/internal/domains/users/domain"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrAlreadyExists  = errors.New("user already exists")
	ErrInvalidSession = errors.New("session is invalid or expired")
)

// Repository persists users.
type Repository interface {
	// Create inserts a new user; a duplicate auth subject returns ErrAlreadyExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByAuthSubject(ctx context.Context, subject string) (*domain.User, error)
	// ListByRole returns users holding the role, newest first.
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
}

package ports

import (
	"context"
	"errors"

	"github.com/Apurer/food-marketplace-api/internal/domains/restaurants/domain"
)

var (
	ErrNotFound      = errors.New("restaurant not found")
	ErrAlreadyExists = errors.New("manager already owns a restaurant")
)

// Repository persists restaurants. A manager owns at most one restaurant.
type Repository interface {
	Create(ctx context.Context, restaurant *domain.Restaurant) (*domain.Restaurant, error)
	Update(ctx context.Context, restaurant *domain.Restaurant) (*domain.Restaurant, error)
	GetByID(ctx context.Context, id string) (*domain.Restaurant, error)
	GetByManager(ctx context.Context, managerID string) (*domain.Restaurant, error)
}

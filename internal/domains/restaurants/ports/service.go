package ports

import (
	"context"

	"github.com/Apurer/food-marketplace-api/internal/domains/restaurants/domain"
)

// Service exposes catalog use cases to adapters.
type Service interface {
	GetByID(ctx context.Context, id string) (*domain.Restaurant, error)
	GetMine(ctx context.Context, managerID string) (*domain.Restaurant, error)
	CreateMine(ctx context.Context, managerID string, details domain.Details) (*domain.Restaurant, error)
	UpdateMine(ctx context.Context, managerID string, details domain.Details) (*domain.Restaurant, error)
	SetApproval(ctx context.Context, id string, status domain.ApprovalStatus) (*domain.Restaurant, error)
}

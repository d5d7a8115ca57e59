package ports

import (
	"context"
	"errors"

	"github.com/Apurer/food-marketplace-api/internal/domains/orders/domain"
)

var ErrNotFound = errors.New("order not found")

// Repository is the order ledger. Every recorded transition also appends a history row.
type Repository interface {
	// Create stores a placed order and its initial history entry.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// MarkPaid transitions placed -> paid with the settled amount. The boolean reports
	// whether this call performed the transition; a false result with a nil error means
	// the order had already left placed.
	MarkPaid(ctx context.Context, id string, amount int64) (*domain.Order, bool, error)
	// UpdateStatus applies a fulfillment status change attributed to changedBy.
	UpdateStatus(ctx context.Context, id string, status domain.Status, changedBy string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	ListByRestaurant(ctx context.Context, restaurantID string) ([]*domain.Order, error)
	History(ctx context.Context, id string) ([]domain.StatusChange, error)
}

package ports

import (
	"context"

	"github.com/Apurer/food-marketplace-api/internal/domains/orders/domain"
	restaurantdomain "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/domain"
	userdomain "github.com/Apurer/food-marketplace-api/internal/domains/users/domain"
)

// Catalog resolves restaurants and their live menus.
type Catalog interface {
	GetByID(ctx context.Context, id string) (*restaurantdomain.Restaurant, error)
	GetByManager(ctx context.Context, managerID string) (*restaurantdomain.Restaurant, error)
}

// Customers resolves the users that own orders.
type Customers interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// Notifier fans order events out to customers. Implementations must not block on delivery.
type Notifier interface {
	OrderConfirmed(ctx context.Context, orderID string) error
	OrderStatusChanged(ctx context.Context, orderID string, status domain.Status) error
}

// NoopNotifier is used when no notification channel is wired.
var NoopNotifier Notifier = noopNotifier{}

type noopNotifier struct{}

func (noopNotifier) OrderConfirmed(context.Context, string) error { return nil }
func (noopNotifier) OrderStatusChanged(context.Context, string, domain.Status) error {
	return nil
}

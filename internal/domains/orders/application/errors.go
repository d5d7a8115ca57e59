package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/food-marketplace-api/internal/domains/orders/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/orders/ports"
	restaurantports "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrInvalidCart signals a cart line referencing an unknown menu item or carrying a malformed quantity.
	ErrInvalidCart = errors.New("invalid cart")
	// ErrInvalidStatus signals an unknown or reserved target status.
	ErrInvalidStatus = errors.New("invalid order status")
	ErrOrderNotFound = errors.New("order not found")
	// ErrRestaurantNotFound is returned when the target restaurant does not exist.
	ErrRestaurantNotFound = errors.New("restaurant not found")
	// ErrUnauthorized signals the caller does not own the order or its restaurant.
	ErrUnauthorized = errors.New("caller is not allowed to act on this order")
	// ErrAuthentication wraps payment event signature failures.
	ErrAuthentication = errors.New("payment event authentication failed")
	// ErrGateway wraps payment provider failures and timeouts.
	ErrGateway = errors.New("payment gateway failure")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyCart) ||
		errors.Is(err, domain.ErrInvalidQuantity) {
		return fmt.Errorf("%w: %w", ErrInvalidCart, err)
	}
	if errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrPaidReserved) {
		return fmt.Errorf("%w: %w", ErrInvalidStatus, err)
	}
	if errors.Is(err, domain.ErrMissingUser) ||
		errors.Is(err, domain.ErrMissingRestaurant) ||
		errors.Is(err, domain.ErrInvalidDelivery) ||
		errors.Is(err, domain.ErrInvalidAmount) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, ports.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrOrderNotFound, err)
	}
	if errors.Is(err, restaurantports.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrRestaurantNotFound, err)
	}
	return err
}

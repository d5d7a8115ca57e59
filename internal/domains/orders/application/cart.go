package application

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Apurer/food-marketplace-api/internal/domains/orders/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/orders/ports"
	restaurantdomain "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/domain"
)

// pricedLine is a cart line resolved against the live menu.
type pricedLine struct {
	item       domain.CartItem
	unitAmount int64
}

// resolveCart prices every line from the restaurant menu. Client supplied names and prices are ignored.
func resolveCart(restaurant *restaurantdomain.Restaurant, lines []ports.CartLineInput) ([]pricedLine, error) {
	if len(lines) == 0 {
		return nil, mapError(domain.ErrEmptyCart)
	}
	priced := make([]pricedLine, 0, len(lines))
	for _, line := range lines {
		menuItem, ok := restaurant.MenuItem(line.MenuItemID)
		if !ok {
			return nil, fmt.Errorf("%w: menu item %q not found", ErrInvalidCart, line.MenuItemID)
		}
		quantity, err := parseQuantity(line.Quantity)
		if err != nil {
			return nil, err
		}
		priced = append(priced, pricedLine{
			item: domain.CartItem{
				MenuItemID: menuItem.ID,
				Name:       menuItem.Name,
				Quantity:   quantity,
			},
			unitAmount: menuItem.Price,
		})
	}
	if _, err := quoteTotal(lineItems(priced), restaurant.DeliveryPrice); err != nil {
		return nil, err
	}
	return priced, nil
}

// parseQuantity accepts whole numbers from 1 up; the payment provider rejects empty lines.
func parseQuantity(raw string) (int64, error) {
	quantity, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || quantity < 1 {
		return 0, fmt.Errorf("%w: quantity %q must be a positive integer", ErrInvalidCart, raw)
	}
	return quantity, nil
}

func cartItems(lines []pricedLine) []domain.CartItem {
	items := make([]domain.CartItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, line.item)
	}
	return items
}

func lineItems(lines []pricedLine) []ports.LineItem {
	items := make([]ports.LineItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, ports.LineItem{
			Name:       line.item.Name,
			UnitAmount: line.unitAmount,
			Quantity:   line.item.Quantity,
		})
	}
	return items
}

// quoteTotal is the amount the provider will charge: the sum of unit price times quantity plus delivery.
// Carts whose total does not fit in int64 minor units are rejected.
func quoteTotal(lines []ports.LineItem, deliveryPrice int64) (int64, error) {
	total := deliveryPrice
	for _, line := range lines {
		if line.UnitAmount > 0 && line.Quantity > math.MaxInt64/line.UnitAmount {
			return 0, fmt.Errorf("%w: %q total overflows", ErrInvalidCart, line.Name)
		}
		subtotal := line.UnitAmount * line.Quantity
		if subtotal > math.MaxInt64-total {
			return 0, fmt.Errorf("%w: order total overflows", ErrInvalidCart)
		}
		total += subtotal
	}
	return total, nil
}

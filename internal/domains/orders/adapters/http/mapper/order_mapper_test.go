package mapper

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/food-marketplace-api/internal/domains/orders/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/orders/ports"
)

func TestCheckoutRequestAcceptsStringAndNumericQuantities(t *testing.T) {
	body := `{
		"restaurantId": "restaurant-1",
		"deliveryDetails": {"email": "a@example.com", "name": "Alice", "addressLine1": "1 Main St", "city": "London"},
		"cartItems": [
			{"menuItemId": "m1", "name": "Margherita", "quantity": "2"},
			{"menuItemId": "m2", "name": "Calzone", "quantity": 3}
		]
	}`
	var req CheckoutSessionRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	input := ToCheckoutInput("customer-1", req)
	assert.Equal(t, "customer-1", input.UserID)
	assert.Equal(t, "restaurant-1", input.RestaurantID)
	require.Len(t, input.CartItems, 2)
	assert.Equal(t, "2", input.CartItems[0].Quantity)
	assert.Equal(t, "3", input.CartItems[1].Quantity)
	assert.Equal(t, "London", input.DeliveryDetails.City)
}

func TestFromOrderViewOmitsTotalUntilPaid(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	order := &domain.Order{
		ID:           "order-1",
		UserID:       "customer-1",
		RestaurantID: "restaurant-1",
		CartItems:    []domain.CartItem{{MenuItemID: "m1", Name: "Margherita", Quantity: 2}},
		Status:       domain.StatusPlaced,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	view := &ports.OrderView{
		Order:      order,
		Restaurant: &ports.RestaurantSummary{ID: "restaurant-1", Name: "Luigi's", DeliveryPrice: 300},
		Customer:   &ports.CustomerSummary{ID: "customer-1", Email: "a@example.com"},
	}

	raw, err := json.Marshal(FromOrderView(view))
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.NotContains(t, decoded, "totalAmount")
	assert.Equal(t, "placed", decoded["status"])
	assert.Equal(t, "Luigi's", decoded["restaurant"].(map[string]any)["restaurantName"])

	total := int64(1300)
	order.TotalAmount = &total
	order.Status = domain.StatusPaid
	out := FromOrderView(view)
	require.NotNil(t, out.TotalAmount)
	assert.Equal(t, int64(1300), *out.TotalAmount)
}

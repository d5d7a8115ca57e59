package broker

import (
	"time"

	"github.com/Apurer/food-marketplace-api/internal/domains/notifications/domain"
)

// orderEventMessage is the JSON shape consumers receive on every broker.
type orderEventMessage struct {
	Kind         string    `json:"kind"`
	OrderID      string    `json:"orderId"`
	RestaurantID string    `json:"restaurantId"`
	UserID       string    `json:"userId"`
	Status       string    `json:"status"`
	TotalAmount  *int64    `json:"totalAmount,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}

func toMessage(event domain.OrderEvent) orderEventMessage {
	return orderEventMessage{
		Kind:         string(event.Kind),
		OrderID:      event.OrderID,
		RestaurantID: event.RestaurantID,
		UserID:       event.UserID,
		Status:       event.Status,
		TotalAmount:  event.TotalAmount,
		OccurredAt:   event.OccurredAt.UTC(),
	}
}

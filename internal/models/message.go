package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderPlacedMessage is published after an order is accepted by the order service
type OrderPlacedMessage struct {
	OrderID      int64           `json:"order_id"`
	RestaurantID int64           `json:"restaurant_id"`
	Status       OrderStatus     `json:"status"`
	ItemCount    int             `json:"item_count"`
	Total        decimal.Decimal `json:"total"`
	PickupCode   string          `json:"pickup_code,omitempty"`
	PlacedAt     time.Time       `json:"placed_at"`
	RequestID    string          `json:"request_id,omitempty"`
}

// NewOrderPlacedMessage builds the notification for a confirmed order
func NewOrderPlacedMessage(order Order, total decimal.Decimal, requestID string) OrderPlacedMessage {
	placedAt := order.PlacedAt
	if placedAt.IsZero() {
		placedAt = time.Now().UTC()
	}
	return OrderPlacedMessage{
		OrderID:      order.ID,
		RestaurantID: order.Restaurant,
		Status:       order.Status,
		ItemCount:    order.ItemCount(),
		Total:        total,
		PickupCode:   order.PickupCode,
		PlacedAt:     placedAt,
		RequestID:    requestID,
	}
}

// RoutingKey returns the topic key for the restaurant the order belongs to
func (m OrderPlacedMessage) RoutingKey() string {
	return fmt.Sprintf("order.placed.%d", m.RestaurantID)
}

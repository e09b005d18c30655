package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the server-side order lifecycle state
type OrderStatus string

const (
	StatusPending        OrderStatus = "PENDING"
	StatusPreparing      OrderStatus = "PREPARING"
	StatusReadyForPickup OrderStatus = "READY_FOR_PICKUP"
	StatusPickedUp       OrderStatus = "PICKED_UP"
	StatusCancelled      OrderStatus = "CANCELLED"
	StatusFailed         OrderStatus = "FAILED"
)

// Finished reports whether the order has left the active list
func (s OrderStatus) Finished() bool {
	v := strings.ToLower(string(s))
	return strings.Contains(v, "deliver") ||
		strings.Contains(v, "cancel") ||
		strings.Contains(v, "picked_up")
}

// OrderItem represents an item in a placed order
type OrderItem struct {
	ID        int64           `json:"id"`
	MenuItem  *int64          `json:"menu_item"`
	ItemName  string          `json:"item_name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	ImageURL  string          `json:"image_url,omitempty"`
}

// Order represents a customer order as returned by the order service
type Order struct {
	ID                 int64           `json:"id"`
	User               int64           `json:"user,omitempty"`
	Restaurant         int64           `json:"restaurant"`
	Status             OrderStatus     `json:"status"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	Tax                decimal.Decimal `json:"tax"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	PickupCode         string          `json:"pickup_code,omitempty"`
	PickupName         string          `json:"pickup_name,omitempty"`
	PickupInstructions string          `json:"pickup_instructions,omitempty"`
	ReadyAt            *time.Time      `json:"ready_at,omitempty"`
	PickedUpAt         *time.Time      `json:"picked_up_at,omitempty"`
	PlacedAt           time.Time       `json:"placed_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Items              []OrderItem     `json:"items"`
}

// ItemCount returns the number of units across all lines
func (o Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// PayloadItem is the snapshot of one line item sent on submission
type PayloadItem struct {
	MenuItemID int64  `json:"menu_item_id"`
	Name       string `json:"name"`
	UnitPrice  string `json:"unit_price"`
	Quantity   int    `json:"quantity"`
	Image      string `json:"image"`
}

// OrderPayload is the body of an order placement request
type OrderPayload struct {
	RestaurantID int64         `json:"restaurant_id"`
	Items        []PayloadItem `json:"items"`
}

// NewOrderPayload snapshots cart lines into a placement request
func NewOrderPayload(restaurantID int64, items []LineItem) OrderPayload {
	payload := OrderPayload{
		RestaurantID: restaurantID,
		Items:        make([]PayloadItem, 0, len(items)),
	}
	for _, it := range items {
		payload.Items = append(payload.Items, PayloadItem{
			MenuItemID: it.ID,
			Name:       it.Name,
			UnitPrice:  it.Price.String(),
			Quantity:   it.Quantity(),
			Image:      it.Image,
		})
	}
	return payload
}

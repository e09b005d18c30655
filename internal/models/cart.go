package models

import (
	"github.com/shopspring/decimal"
)

// LineItem is one distinct menu item in the cart. Display fields and price are
// captured when the item is added and never refreshed from the catalog.
type LineItem struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Image        string          `json:"image,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Qty          int             `json:"qty"`
	RestaurantID int64           `json:"restaurantId,omitempty"`
}

// Quantity returns the effective count of the line. Entries persisted
// without a positive qty count as one unit.
func (li LineItem) Quantity() int {
	if li.Qty <= 0 {
		return 1
	}
	return li.Qty
}

// LineTotal returns price * quantity
func (li LineItem) LineTotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity())))
}

// CatalogItem is a menu item as served by the catalog
type CatalogItem struct {
	ID          int64           `json:"id"`
	Restaurant  int64           `json:"restaurant,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	Category    string          `json:"category,omitempty"`
	IsAvailable *bool           `json:"is_available,omitempty"`
}

// Picture returns the best available image reference
func (ci CatalogItem) Picture() string {
	if ci.Image != "" {
		return ci.Image
	}
	return ci.ImageURL
}

// ToLineItem snapshots the catalog item into a cart line with qty 1
func (ci CatalogItem) ToLineItem(restaurantID int64) LineItem {
	return LineItem{
		ID:           ci.ID,
		Name:         ci.Name,
		Description:  ci.Description,
		Image:        ci.Picture(),
		Price:        ci.Price,
		Qty:          1,
		RestaurantID: restaurantID,
	}
}

// Cart is the read view of the cart store
type Cart struct {
	Items        []LineItem      `json:"items"`
	IsOpen       bool            `json:"isOpen"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Count        int             `json:"count"`
	RestaurantID int64           `json:"restaurantId,omitempty"`
}

package models

import (
	"github.com/shopspring/decimal"
)

// Restaurant is a catalog listing entry. Presentation fields such as
// deliveryTime and deliveryFee are free text as served by the API.
type Restaurant struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	CuisineType  string   `json:"cuisine_type"`
	Rating       float64  `json:"rating,omitempty"`
	Distance     string   `json:"distance,omitempty"`
	DeliveryTime string   `json:"deliveryTime,omitempty"`
	DeliveryFee  string   `json:"deliveryFee,omitempty"`
	Offer        string   `json:"offer,omitempty"`
	Image        string   `json:"image,omitempty"`
	Promoted     bool     `json:"promoted,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Address      string   `json:"address,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	IsActive     *bool    `json:"is_active,omitempty"`
	IsFavorite   bool     `json:"isFavorite"`
}

// RestaurantDetail is a restaurant together with its sectioned menu
type RestaurantDetail struct {
	Restaurant
	Menu map[string][]CatalogItem `json:"menu"`
}

// PromoKind distinguishes percentage and fixed-amount discounts
type PromoKind string

const (
	PromoPercentage PromoKind = "PCT"
	PromoFixed      PromoKind = "ABS"
)

// PromoCode is an immutable discount catalog entry
type PromoCode struct {
	Code  string          `json:"code"`
	Kind  PromoKind       `json:"type"`
	Value decimal.Decimal `json:"value"`
	Label string          `json:"label"`
}

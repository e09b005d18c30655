// Package pricing computes the checkout cost breakdown.
//
// All arithmetic is exact decimal; nothing is rounded until Format renders a
// value for display.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Dang-Huynh/FoodOrderingService/internal/config"
	"github.com/Dang-Huynh/FoodOrderingService/internal/models"
)

// Rates are the fee constants of the calculator
type Rates struct {
	FreeDeliveryThreshold decimal.Decimal
	FlatDeliveryFee       decimal.Decimal
	ServiceFeeRate        decimal.Decimal
	TaxRate               decimal.Decimal
}

func DefaultRates() Rates {
	return Rates{
		FreeDeliveryThreshold: decimal.NewFromInt(40),
		FlatDeliveryFee:       decimal.RequireFromString("2.99"),
		ServiceFeeRate:        decimal.RequireFromString("0.05"),
		TaxRate:               decimal.RequireFromString("0.08875"),
	}
}

// RatesFromConfig overlays configured values on the defaults. Values are
// validated by config.Load, so unparsable entries are ignored here.
func RatesFromConfig(cfg config.PricingConfig) Rates {
	r := DefaultRates()
	overlay := func(raw string, dst *decimal.Decimal) {
		if raw == "" {
			return
		}
		if d, err := decimal.NewFromString(raw); err == nil {
			*dst = d
		}
	}
	overlay(cfg.FreeDeliveryThreshold, &r.FreeDeliveryThreshold)
	overlay(cfg.FlatDeliveryFee, &r.FlatDeliveryFee)
	overlay(cfg.ServiceFeeRate, &r.ServiceFeeRate)
	overlay(cfg.TaxRate, &r.TaxRate)
	return r
}

// TipOptions are the selectable tip percentages
var TipOptions = []decimal.Decimal{
	decimal.Zero,
	decimal.RequireFromString("0.10"),
	decimal.RequireFromString("0.15"),
	decimal.RequireFromString("0.20"),
}

// DefaultTip is preselected when checkout opens
var DefaultTip = decimal.RequireFromString("0.10")

// ValidTip reports whether pct is one of TipOptions
func ValidTip(pct decimal.Decimal) bool {
	for _, opt := range TipOptions {
		if opt.Equal(pct) {
			return true
		}
	}
	return false
}

// Totals is the derived cost breakdown of a checkout
type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	ServiceFee  decimal.Decimal `json:"serviceFee"`
	Tax         decimal.Decimal `json:"tax"`
	Tip         decimal.Decimal `json:"tip"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
}

// Display renders every component with Format
func (t Totals) Display() map[string]string {
	return map[string]string{
		"subtotal":    Format(t.Subtotal),
		"deliveryFee": Format(t.DeliveryFee),
		"serviceFee":  Format(t.ServiceFee),
		"tax":         Format(t.Tax),
		"tip":         Format(t.Tip),
		"discount":    Format(t.Discount),
		"total":       Format(t.Total),
	}
}

type Calculator struct {
	rates Rates
}

func NewCalculator(r Rates) *Calculator {
	return &Calculator{rates: r}
}

func (c *Calculator) Rates() Rates { return c.rates }

// Compute returns the breakdown for items at tip percentage tipPct with an
// optional promo. Tax and tip are charged on subtotal plus fees, before any
// discount; the discount only reduces the item portion and never below zero.
func (c *Calculator) Compute(items []models.LineItem, tipPct decimal.Decimal, promo *models.PromoCode) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}

	delivery := c.rates.FlatDeliveryFee
	if subtotal.GreaterThan(c.rates.FreeDeliveryThreshold) {
		delivery = decimal.Zero
	}

	service := subtotal.Mul(c.rates.ServiceFeeRate)
	base := subtotal.Add(delivery).Add(service)
	tax := base.Mul(c.rates.TaxRate)
	tip := base.Mul(tipPct)
	discount := Discount(subtotal, promo)

	net := decimal.Max(decimal.Zero, subtotal.Sub(discount))
	total := net.Add(delivery).Add(service).Add(tax).Add(tip)

	return Totals{
		Subtotal:    subtotal,
		DeliveryFee: delivery,
		ServiceFee:  service,
		Tax:         tax,
		Tip:         tip,
		Discount:    discount,
		Total:       total,
	}
}

// Discount returns the promo amount for subtotal. It is not capped; the
// calculator floors the discounted item portion instead.
func Discount(subtotal decimal.Decimal, promo *models.PromoCode) decimal.Decimal {
	if promo == nil {
		return decimal.Zero
	}
	switch promo.Kind {
	case models.PromoPercentage:
		return subtotal.Mul(promo.Value)
	case models.PromoFixed:
		return promo.Value
	default:
		return decimal.Zero
	}
}

// Format renders an amount as dollars with two decimals, e.g. "$28.52"
func Format(d decimal.Decimal) string {
	return fmt.Sprintf("$%s", d.StringFixed(2))
}

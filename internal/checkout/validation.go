package checkout

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError is an incomplete checkout selection. It matches ErrNotReady
// under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e ValidationError) Is(target error) bool {
	return target == ErrNotReady
}

// ValidateSelection returns the first reason the selection cannot be
// submitted with a cart of itemCount lines.
func ValidateSelection(itemCount int, sel Selection) error {
	if err := validateItems(itemCount); err != nil {
		return err
	}

	if err := validateAddress(sel.AddressID); err != nil {
		return err
	}

	if err := validatePayment(sel.PaymentID); err != nil {
		return err
	}

	if err := validateDelivery(sel.Mode, sel.ScheduledAt); err != nil {
		return err
	}

	return nil
}

func validateItems(n int) error {
	if n == 0 {
		return ValidationError{
			Field:   "items",
			Message: "your cart is empty",
		}
	}
	return nil
}

func validateAddress(id string) error {
	if strings.TrimSpace(id) == "" {
		return ValidationError{
			Field:   "address",
			Message: "select a delivery address",
		}
	}
	return nil
}

func validatePayment(id string) error {
	if strings.TrimSpace(id) == "" {
		return ValidationError{
			Field:   "payment",
			Message: "select a payment method",
		}
	}
	return nil
}

func validateDelivery(mode DeliveryMode, scheduledAt string) error {
	switch mode {
	case DeliveryASAP:
		return nil
	case DeliveryScheduled:
		if strings.TrimSpace(scheduledAt) == "" {
			return ValidationError{
				Field:   "scheduled_at",
				Message: "pick a delivery time",
			}
		}
		return nil
	default:
		return ValidationError{
			Field:   "delivery_mode",
			Message: "invalid delivery mode",
		}
	}
}

// ParseScheduledAt accepts an RFC 3339 timestamp or a bare "15:04" slot.
// Bare slots are kept verbatim.
func ParseScheduledAt(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if _, err := time.Parse(time.RFC3339, raw); err == nil {
		return raw, nil
	}
	if _, err := time.Parse("15:04", raw); err == nil {
		return raw, nil
	}
	return "", ValidationError{
		Field:   "scheduled_at",
		Message: "delivery time must be HH:MM or RFC 3339",
	}
}

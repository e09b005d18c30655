// Package promo resolves user-entered promo codes against the static
// discount catalog and tracks the one code applied to the checkout.
package promo

import (
	"errors"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Dang-Huynh/FoodOrderingService/internal/models"
)

const MsgInvalidCode = "Promo code is invalid or expired."

var (
	// ErrNoCode is returned by Resolve for blank input
	ErrNoCode = errors.New("no promo code entered")
	// ErrNotFound carries the user-facing message for unknown codes
	ErrNotFound = errors.New(MsgInvalidCode)
)

var defaultCatalog = []models.PromoCode{
	{Code: "WELCOME20", Kind: models.PromoPercentage, Value: decimal.RequireFromString("0.2"), Label: "20% off"},
	{Code: "FREESHIP", Kind: models.PromoFixed, Value: decimal.RequireFromString("2.99"), Label: "Free delivery"},
	{Code: "SAVE10", Kind: models.PromoFixed, Value: decimal.NewFromInt(10), Label: "$10 off"},
}

// Resolver looks codes up in an immutable catalog
type Resolver struct {
	codes map[string]models.PromoCode
}

// NewResolver builds a resolver over catalog. Codes are matched upper-cased.
func NewResolver(catalog []models.PromoCode) *Resolver {
	codes := make(map[string]models.PromoCode, len(catalog))
	for _, c := range catalog {
		codes[Normalize(c.Code)] = c
	}
	return &Resolver{codes: codes}
}

// Default returns the resolver for the built-in catalog
func Default() *Resolver {
	return NewResolver(defaultCatalog)
}

// Normalize trims and upper-cases a user-entered code
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *Resolver) Resolve(code string) (models.PromoCode, error) {
	key := Normalize(code)
	if key == "" {
		return models.PromoCode{}, ErrNoCode
	}
	pc, ok := r.codes[key]
	if !ok {
		return models.PromoCode{}, ErrNotFound
	}
	return pc, nil
}

// Selection holds at most one applied code. It lives only as long as the
// checkout and is never persisted.
type Selection struct {
	resolver *Resolver

	mu      sync.RWMutex
	applied *models.PromoCode
}

func NewSelection(r *Resolver) *Selection {
	return &Selection{resolver: r}
}

// Apply replaces the applied code with code. Blank input changes nothing and
// returns nil. An unknown code clears the applied one and returns ErrNotFound.
func (s *Selection) Apply(code string) error {
	pc, err := s.resolver.Resolve(code)
	if errors.Is(err, ErrNoCode) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.applied = nil
		return err
	}
	s.applied = &pc
	return nil
}

func (s *Selection) Clear() {
	s.mu.Lock()
	s.applied = nil
	s.mu.Unlock()
}

// Applied returns a copy of the applied code, or nil
func (s *Selection) Applied() *models.PromoCode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.applied == nil {
		return nil
	}
	pc := *s.applied
	return &pc
}

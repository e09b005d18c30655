// Package profile keeps the device-local user profile: contact details,
// saved addresses and saved payment methods.
package profile

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/Dang-Huynh/FoodOrderingService/internal/models"
	"github.com/Dang-Huynh/FoodOrderingService/internal/storage"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

func EmailOK(email string) bool {
	return emailPattern.MatchString(email)
}

// PhoneOK accepts any formatting with at least ten digits
func PhoneOK(phone string) bool {
	digits := 0
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits >= 10
}

// Fallback returns the placeholder address and card offered at checkout
// when the profile has none saved.
func Fallback() (models.Address, models.PaymentMethod) {
	addr := models.Address{
		ID:           "addr-default",
		Label:        "Home",
		Line1:        "123 Main Street",
		Line2:        "Apt 4B",
		City:         "New York",
		State:        "NY",
		Zip:          "10001",
		IsDefault:    true,
		Instructions: "Ring bell twice",
	}
	card := models.PaymentMethod{
		ID:        "pm-default",
		Brand:     "Visa",
		Last4:     "4242",
		Exp:       "04/28",
		IsDefault: true,
	}
	return addr, card
}

// Choices returns the addresses and payment methods offered at checkout,
// substituting the fallback entries for empty lists.
func Choices(p models.Profile) ([]models.Address, []models.PaymentMethod) {
	addrFallback, cardFallback := Fallback()

	addrs := p.Addresses
	if len(addrs) == 0 {
		addrs = []models.Address{addrFallback}
	}
	cards := p.PaymentMethods
	if len(cards) == 0 {
		cards = []models.PaymentMethod{cardFallback}
	}
	return addrs, cards
}

// Defaults picks the default address and payment ids: the entry flagged
// default, else the first one.
func Defaults(p models.Profile) (addressID, paymentID string) {
	addrs, cards := Choices(p)

	addressID = addrs[0].ID
	for _, a := range addrs {
		if a.IsDefault {
			addressID = a.ID
			break
		}
	}
	paymentID = cards[0].ID
	for _, c := range cards {
		if c.IsDefault {
			paymentID = c.ID
			break
		}
	}
	return addressID, paymentID
}

// Manager loads and persists the profile blob
type Manager struct {
	mu      sync.RWMutex
	profile models.Profile
	writer  *storage.Writer
}

// Load reads the stored profile; a missing or malformed blob yields an
// empty profile.
func Load(ctx context.Context, w *storage.Writer) *Manager {
	m := &Manager{writer: w}
	storage.ReadJSON(ctx, w.Store(), storage.KeyUserProfile, &m.profile)
	return m
}

// Get returns a copy of the profile
func (m *Manager) Get() models.Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.profile)
}

// UpdateContact replaces name, email and phone after validating them
func (m *Manager) UpdateContact(ctx context.Context, name, email, phone string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if !EmailOK(email) {
		return ValidationError{Field: "email", Message: "enter a valid email"}
	}
	if phone != "" && !PhoneOK(phone) {
		return ValidationError{Field: "phone", Message: "enter a valid phone number"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.profile.Name = name
	m.profile.Email = strings.TrimSpace(email)
	m.profile.Phone = phone
	m.save(ctx)
	return nil
}

// UpsertAddress inserts a, or replaces the entry with the same id. An address
// flagged default becomes the only default.
func (m *Manager) UpsertAddress(ctx context.Context, a models.Address) error {
	if err := validateAddress(a); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.profile.Addresses
	idx := -1
	for i := range list {
		if list[i].ID == a.ID {
			idx = i
			break
		}
	}
	if idx >= 0 {
		list[idx] = a
	} else {
		list = append(list, a)
	}
	if a.IsDefault {
		for i := range list {
			list[i].IsDefault = list[i].ID == a.ID
		}
	}
	m.profile.Addresses = list
	m.save(ctx)
	return nil
}

// DeleteAddress removes the address with id; unknown ids are ignored
func (m *Manager) DeleteAddress(ctx context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.profile.Addresses[:0]
	for _, a := range m.profile.Addresses {
		if a.ID != id {
			out = append(out, a)
		}
	}
	m.profile.Addresses = out
	m.save(ctx)
}

func (m *Manager) SetDefaultAddress(ctx context.Context, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	found := false
	for i := range m.profile.Addresses {
		if m.profile.Addresses[i].ID == id {
			found = true
		}
	}
	if !found {
		return false
	}
	for i := range m.profile.Addresses {
		m.profile.Addresses[i].IsDefault = m.profile.Addresses[i].ID == id
	}
	m.save(ctx)
	return true
}

// UpsertPayment mirrors UpsertAddress for payment methods
func (m *Manager) UpsertPayment(ctx context.Context, p models.PaymentMethod) error {
	if err := validatePayment(p); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.profile.PaymentMethods
	idx := -1
	for i := range list {
		if list[i].ID == p.ID {
			idx = i
			break
		}
	}
	if idx >= 0 {
		list[idx] = p
	} else {
		list = append(list, p)
	}
	if p.IsDefault {
		for i := range list {
			list[i].IsDefault = list[i].ID == p.ID
		}
	}
	m.profile.PaymentMethods = list
	m.save(ctx)
	return nil
}

func (m *Manager) DeletePayment(ctx context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.profile.PaymentMethods[:0]
	for _, p := range m.profile.PaymentMethods {
		if p.ID != id {
			out = append(out, p)
		}
	}
	m.profile.PaymentMethods = out
	m.save(ctx)
}

func (m *Manager) SetDefaultPayment(ctx context.Context, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	found := false
	for i := range m.profile.PaymentMethods {
		if m.profile.PaymentMethods[i].ID == id {
			found = true
		}
	}
	if !found {
		return false
	}
	for i := range m.profile.PaymentMethods {
		m.profile.PaymentMethods[i].IsDefault = m.profile.PaymentMethods[i].ID == id
	}
	m.save(ctx)
	return true
}

func validateAddress(a models.Address) error {
	if strings.TrimSpace(a.ID) == "" {
		return ValidationError{Field: "id", Message: "address id is required"}
	}
	if strings.TrimSpace(a.Line1) == "" {
		return ValidationError{Field: "line1", Message: "street address is required"}
	}
	if strings.TrimSpace(a.City) == "" {
		return ValidationError{Field: "city", Message: "city is required"}
	}
	return nil
}

func validatePayment(p models.PaymentMethod) error {
	if strings.TrimSpace(p.ID) == "" {
		return ValidationError{Field: "id", Message: "payment id is required"}
	}
	if len(p.Last4) != 4 {
		return ValidationError{Field: "last4", Message: "last4 must be 4 digits"}
	}
	for _, r := range p.Last4 {
		if !unicode.IsDigit(r) {
			return ValidationError{Field: "last4", Message: "last4 must be 4 digits"}
		}
	}
	return nil
}

// save must be called with m.mu held
func (m *Manager) save(ctx context.Context) {
	m.writer.SetJSON(ctx, storage.KeyUserProfile, m.profile)
}

func clone(p models.Profile) models.Profile {
	out := p
	out.Addresses = append([]models.Address(nil), p.Addresses...)
	out.PaymentMethods = append([]models.PaymentMethod(nil), p.PaymentMethods...)
	return out
}

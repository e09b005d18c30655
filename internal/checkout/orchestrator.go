// Package checkout gates order submission on a complete selection and turns
// the cart into an order placement request.
package checkout

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Dang-Huynh/FoodOrderingService/internal/api"
	"github.com/Dang-Huynh/FoodOrderingService/internal/cart"
	"github.com/Dang-Huynh/FoodOrderingService/internal/logger"
	"github.com/Dang-Huynh/FoodOrderingService/internal/models"
	"github.com/Dang-Huynh/FoodOrderingService/internal/pricing"
	"github.com/Dang-Huynh/FoodOrderingService/internal/profile"
	"github.com/Dang-Huynh/FoodOrderingService/internal/promo"
	"github.com/Dang-Huynh/FoodOrderingService/internal/storage"
)

const (
	MsgMissingRestaurant = "Missing restaurant reference. Please add items again."
	MsgPlaceFailed       = "Something went wrong placing your order."
)

var (
	ErrSubmitting        = errors.New("an order is already being placed")
	ErrNotReady          = errors.New("checkout is not ready")
	ErrMissingRestaurant = errors.New(MsgMissingRestaurant)
	ErrInvalidTip        = errors.New("tip must be one of the offered percentages")
	ErrUnknownAddress    = errors.New("unknown address")
	ErrUnknownPayment    = errors.New("unknown payment method")
)

// PlaceError is a failed submission. Message is safe to show to the user.
type PlaceError struct {
	Message string
	Err     error
}

func (e *PlaceError) Error() string { return e.Message }

func (e *PlaceError) Unwrap() error { return e.Err }

type DeliveryMode string

const (
	DeliveryASAP      DeliveryMode = "ASAP"
	DeliveryScheduled DeliveryMode = "SCHEDULED"
)

// State of the submission state machine
type State int

const (
	StateIdle State = iota
	StateSubmitting
)

func (s State) String() string {
	if s == StateSubmitting {
		return "submitting"
	}
	return "idle"
}

// OrderPlacer submits an order to the order service
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, payload models.OrderPayload) (*models.Order, error)
}

// Notifier is told about every accepted order. Failures are logged only.
type Notifier interface {
	OrderPlaced(ctx context.Context, msg models.OrderPlacedMessage) error
}

type noopNotifier struct{}

func (noopNotifier) OrderPlaced(context.Context, models.OrderPlacedMessage) error { return nil }

// Selection is the user's checkout choices
type Selection struct {
	AddressID   string          `json:"addressId"`
	PaymentID   string          `json:"paymentId"`
	Mode        DeliveryMode    `json:"deliveryMode"`
	ScheduledAt string          `json:"scheduledAt,omitempty"`
	Tip         decimal.Decimal `json:"tipPct"`
}

// Summary is everything the checkout screen renders
type Summary struct {
	Selection Selection              `json:"selection"`
	Items     []models.LineItem      `json:"items"`
	Totals    pricing.Totals         `json:"totals"`
	Display   map[string]string      `json:"display"`
	Promo     *models.PromoCode      `json:"promo,omitempty"`
	Addresses []models.Address       `json:"addresses"`
	Payments  []models.PaymentMethod `json:"paymentMethods"`
	CanPlace  bool                   `json:"canPlace"`
	State     string                 `json:"state"`
}

// Confirmation describes an accepted order
type Confirmation struct {
	OrderID   int64          `json:"orderId"`
	Order     *models.Order  `json:"order"`
	Totals    pricing.Totals `json:"totals"`
	Selection Selection      `json:"selection"`
	RequestID string         `json:"requestId"`
}

// Orchestrator owns the checkout selection and the submission state.
type Orchestrator struct {
	cart     *cart.Store
	writer   *storage.Writer
	calc     *pricing.Calculator
	promos   *promo.Selection
	placer   OrderPlacer
	notifier Notifier
	logger   *logger.Logger

	mu        sync.Mutex
	state     State
	sel       Selection
	addresses []models.Address
	payments  []models.PaymentMethod
}

func New(c *cart.Store, w *storage.Writer, calc *pricing.Calculator, promos *promo.Selection, placer OrderPlacer, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		cart:     c,
		writer:   w,
		calc:     calc,
		promos:   promos,
		placer:   placer,
		notifier: noopNotifier{},
		logger:   log,
		sel: Selection{
			Mode: DeliveryASAP,
			Tip:  pricing.DefaultTip,
		},
	}
}

// WithNotifier sets the receiver of order placed events
func (o *Orchestrator) WithNotifier(n Notifier) *Orchestrator {
	if n == nil {
		n = noopNotifier{}
	}
	o.notifier = n
	return o
}

// UseProfile offers the profile's addresses and cards (or the fallbacks)
// and preselects the defaults.
func (o *Orchestrator) UseProfile(p models.Profile) {
	addrs, cards := profile.Choices(p)
	addrID, cardID := profile.Defaults(p)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.addresses = addrs
	o.payments = cards
	o.sel.AddressID = addrID
	o.sel.PaymentID = cardID
}

// SelectAddress selects id, which must be one of the offered addresses
// once a profile has been applied.
func (o *Orchestrator) SelectAddress(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.addresses != nil && !hasAddress(o.addresses, id) {
		return ErrUnknownAddress
	}
	o.sel.AddressID = id
	return nil
}

func (o *Orchestrator) SelectPayment(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.payments != nil && !hasPayment(o.payments, id) {
		return ErrUnknownPayment
	}
	o.sel.PaymentID = id
	return nil
}

// SetDelivery selects ASAP or a scheduled slot. The slot is kept when
// switching back to ASAP so it can be restored.
func (o *Orchestrator) SetDelivery(mode DeliveryMode, scheduledAt string) error {
	if mode != DeliveryASAP && mode != DeliveryScheduled {
		return ValidationError{Field: "delivery_mode", Message: "invalid delivery mode"}
	}
	slot, err := ParseScheduledAt(scheduledAt)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.sel.Mode = mode
	if slot != "" || mode == DeliveryScheduled {
		o.sel.ScheduledAt = slot
	}
	return nil
}

func (o *Orchestrator) SetTip(pct decimal.Decimal) error {
	if !pricing.ValidTip(pct) {
		return ErrInvalidTip
	}
	o.mu.Lock()
	o.sel.Tip = pct
	o.mu.Unlock()
	return nil
}

// ApplyPromo resolves code and applies it; see promo.Selection.Apply
func (o *Orchestrator) ApplyPromo(code string) error {
	return o.promos.Apply(code)
}

func (o *Orchestrator) ClearPromo() {
	o.promos.Clear()
}

func (o *Orchestrator) Selection() Selection {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sel
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Totals recomputes the breakdown from the current cart, tip and promo
func (o *Orchestrator) Totals() pricing.Totals {
	tip := o.Selection().Tip
	return o.calc.Compute(o.cart.Items(), tip, o.promos.Applied())
}

// CanPlace reports whether Place would attempt a submission
func (o *Orchestrator) CanPlace() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.readyLocked() == nil
}

// Validate returns why the checkout cannot be placed, or nil
func (o *Orchestrator) Validate() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.readyLocked()
}

func (o *Orchestrator) Summary() Summary {
	items := o.cart.Items()
	applied := o.promos.Applied()

	o.mu.Lock()
	sel := o.sel
	ready := o.readyLocked() == nil
	state := o.state
	addrs := append([]models.Address(nil), o.addresses...)
	cards := append([]models.PaymentMethod(nil), o.payments...)
	o.mu.Unlock()

	totals := o.calc.Compute(items, sel.Tip, applied)
	return Summary{
		Selection: sel,
		Items:     items,
		Totals:    totals,
		Display:   totals.Display(),
		Promo:     applied,
		Addresses: addrs,
		Payments:  cards,
		CanPlace:  ready,
		State:     state.String(),
	}
}

// Place submits the cart. Only one submission runs at a time; a concurrent
// call gets ErrSubmitting. On success the cart and promo are cleared. On
// failure the cart is left untouched and a *PlaceError carries the message
// to show.
func (o *Orchestrator) Place(ctx context.Context) (*Confirmation, error) {
	requestID := logger.GenerateRequestID()

	o.mu.Lock()
	if o.state == StateSubmitting {
		o.mu.Unlock()
		return nil, ErrSubmitting
	}
	if err := o.readyLocked(); err != nil {
		o.mu.Unlock()
		return nil, err
	}
	o.state = StateSubmitting
	sel := o.sel
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.state = StateIdle
		o.mu.Unlock()
	}()

	restaurantID := o.resolveRestaurant(ctx)
	if restaurantID == 0 {
		o.logger.Info("order_not_placed", "no restaurant reference in cart", requestID, nil)
		return nil, &PlaceError{Message: MsgMissingRestaurant, Err: ErrMissingRestaurant}
	}

	items := o.cart.Items()
	if err := validateItems(len(items)); err != nil {
		// the cart was emptied after the readiness check
		o.logger.Info("order_not_placed", "cart emptied before submission", requestID, nil)
		return nil, err
	}
	applied := o.promos.Applied()
	totals := o.calc.Compute(items, sel.Tip, applied)
	payload := models.NewOrderPayload(restaurantID, items)

	o.logger.Debug("placing_order", "submitting order", requestID, map[string]interface{}{
		"restaurant_id": restaurantID,
		"line_count":    len(payload.Items),
		"total":         totals.Total.StringFixed(2),
	})

	order, err := o.placer.PlaceOrder(ctx, payload)
	if err != nil {
		o.logger.Error("order_place_failed", "order service rejected the order", requestID, err, map[string]interface{}{
			"restaurant_id": restaurantID,
		})
		return nil, &PlaceError{Message: failureMessage(err), Err: err}
	}
	if order.Restaurant == 0 {
		order.Restaurant = restaurantID
	}

	o.cart.Clear(ctx)
	o.promos.Clear()

	o.logger.Info("order_placed", "order accepted", requestID, map[string]interface{}{
		"order_id":      order.ID,
		"restaurant_id": restaurantID,
		"status":        order.Status,
	})

	msg := models.NewOrderPlacedMessage(*order, totals.Total, requestID)
	if msg.ItemCount == 0 {
		for _, it := range payload.Items {
			msg.ItemCount += it.Quantity
		}
	}
	if err := o.notifier.OrderPlaced(ctx, msg); err != nil {
		o.logger.Error("order_notify_failed", "failed to publish order placed event", requestID, err, map[string]interface{}{
			"order_id": order.ID,
		})
	}

	return &Confirmation{
		OrderID:   order.ID,
		Order:     order,
		Totals:    totals,
		Selection: sel,
		RequestID: requestID,
	}, nil
}

// resolveRestaurant takes the cart's restaurant, falling back to the last
// visited one. Lines without a restaurant are backfilled with the result.
func (o *Orchestrator) resolveRestaurant(ctx context.Context) int64 {
	id := o.cart.RestaurantID()
	if id == 0 {
		id = storage.ReadID(ctx, o.writer.Store(), storage.KeyLastRestaurantID)
	}
	if id != 0 {
		o.cart.BackfillRestaurant(ctx, id)
	}
	return id
}

// readyLocked must be called with o.mu held
func (o *Orchestrator) readyLocked() error {
	if o.state == StateSubmitting {
		return ErrSubmitting
	}
	return ValidateSelection(o.cart.Len(), o.sel)
}

func failureMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return MsgPlaceFailed
}

func hasAddress(list []models.Address, id string) bool {
	for _, a := range list {
		if a.ID == id {
			return true
		}
	}
	return false
}

func hasPayment(list []models.PaymentMethod, id string) bool {
	for _, p := range list {
		if p.ID == id {
			return true
		}
	}
	return false
}

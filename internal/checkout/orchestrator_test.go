package checkout

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dang-Huynh/FoodOrderingService/internal/api"
	"github.com/Dang-Huynh/FoodOrderingService/internal/cart"
	"github.com/Dang-Huynh/FoodOrderingService/internal/logger"
	"github.com/Dang-Huynh/FoodOrderingService/internal/models"
	"github.com/Dang-Huynh/FoodOrderingService/internal/pricing"
	"github.com/Dang-Huynh/FoodOrderingService/internal/promo"
	"github.com/Dang-Huynh/FoodOrderingService/internal/storage"
)

type fakePlacer struct {
	mu       sync.Mutex
	payloads []models.OrderPayload
	order    *models.Order
	err      error
	block    chan struct{}
	entered  chan struct{}
}

func (f *fakePlacer) PlaceOrder(_ context.Context, payload models.OrderPayload) (*models.Order, error) {
	f.mu.Lock()
	f.payloads = append(f.payloads, payload)
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	o := *f.order
	return &o, nil
}

func (f *fakePlacer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

type fakeNotifier struct {
	msgs []models.OrderPlacedMessage
	err  error
}

func (f *fakeNotifier) OrderPlaced(_ context.Context, msg models.OrderPlacedMessage) error {
	f.msgs = append(f.msgs, msg)
	return f.err
}

type fixture struct {
	orch   *Orchestrator
	cart   *cart.Store
	writer *storage.Writer
	placer *fakePlacer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	w := storage.NewWriter(storage.NewMemory(), logger.Discard())
	c := cart.NewStore(w)
	placer := &fakePlacer{order: &models.Order{ID: 42, Status: models.StatusPending}}
	orch := New(c, w, pricing.NewCalculator(pricing.DefaultRates()), promo.NewSelection(promo.Default()), placer, logger.Discard())
	return &fixture{orch: orch, cart: c, writer: w, placer: placer}
}

func (f *fixture) addBurger(t *testing.T, restaurantID int64) {
	t.Helper()
	item := models.CatalogItem{ID: 1, Name: "Burger", Price: decimal.NewFromInt(10), Image: "burger.jpg"}
	f.cart.Add(context.Background(), item, restaurantID)
}

func TestCanPlace(t *testing.T) {
	tests := []struct {
		name    string
		items   bool
		address string
		payment string
		mode    DeliveryMode
		slot    string
		want    bool
		field   string
	}{
		{name: "complete ASAP", items: true, address: "a1", payment: "p1", mode: DeliveryASAP, want: true},
		{name: "complete scheduled", items: true, address: "a1", payment: "p1", mode: DeliveryScheduled, slot: "18:30", want: true},
		{name: "empty cart", items: false, address: "a1", payment: "p1", mode: DeliveryASAP, field: "items"},
		{name: "no address", items: true, payment: "p1", mode: DeliveryASAP, field: "address"},
		{name: "no payment", items: true, address: "a1", mode: DeliveryASAP, field: "payment"},
		{name: "scheduled without slot", items: true, address: "a1", payment: "p1", mode: DeliveryScheduled, field: "scheduled_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.items {
				f.addBurger(t, 5)
			}
			require.NoError(t, f.orch.SelectAddress(tt.address))
			require.NoError(t, f.orch.SelectPayment(tt.payment))
			require.NoError(t, f.orch.SetDelivery(tt.mode, tt.slot))

			assert.Equal(t, tt.want, f.orch.CanPlace())

			err := f.orch.Validate()
			if tt.want {
				assert.NoError(t, err)
				return
			}
			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.ErrorIs(t, err, ErrNotReady)
		})
	}
}

func TestPlace_HappyPath(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	notifier := &fakeNotifier{}
	f.orch.WithNotifier(notifier)
	f.orch.UseProfile(models.Profile{})

	f.addBurger(t, 5)
	f.cart.Inc(ctx, 1)
	require.NoError(t, f.orch.ApplyPromo("welcome20"))

	conf, err := f.orch.Place(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(42), conf.OrderID)
	assert.Equal(t, "addr-default", conf.Selection.AddressID)
	assert.Equal(t, "pm-default", conf.Selection.PaymentID)

	require.Len(t, f.placer.payloads, 1)
	payload := f.placer.payloads[0]
	assert.Equal(t, int64(5), payload.RestaurantID)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, models.PayloadItem{MenuItemID: 1, Name: "Burger", UnitPrice: "10", Quantity: 2, Image: "burger.jpg"}, payload.Items[0])

	assert.Zero(t, f.cart.Len(), "cart is cleared after success")
	assert.Nil(t, f.orch.promos.Applied(), "promo is cleared after success")
	assert.Equal(t, StateIdle, f.orch.State())

	require.Len(t, notifier.msgs, 1)
	assert.Equal(t, int64(5), notifier.msgs[0].RestaurantID)
	assert.Equal(t, 2, notifier.msgs[0].ItemCount)
	assert.Equal(t, conf.RequestID, notifier.msgs[0].RequestID)
}

func TestPlace_EmptyCart(t *testing.T) {
	f := newFixture(t)
	f.orch.UseProfile(models.Profile{})

	_, err := f.orch.Place(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Zero(t, f.placer.calls())
}

// clearingStore empties the cart the moment Place looks up the last
// restaurant, standing in for a concurrent DELETE /cart.
type clearingStore struct {
	*storage.Memory
	cart *cart.Store
}

func (s *clearingStore) Get(ctx context.Context, key string) (string, bool, error) {
	if key == storage.KeyLastRestaurantID && s.cart != nil {
		c := s.cart
		s.cart = nil
		c.Clear(ctx)
	}
	return s.Memory.Get(ctx, key)
}

func TestPlace_CartEmptiedAfterReadinessCheck(t *testing.T) {
	ctx := context.Background()
	mem := &clearingStore{Memory: storage.NewMemory()}
	w := storage.NewWriter(mem, logger.Discard())
	c := cart.NewStore(w)
	placer := &fakePlacer{order: &models.Order{ID: 42, Status: models.StatusPending}}
	orch := New(c, w, pricing.NewCalculator(pricing.DefaultRates()), promo.NewSelection(promo.Default()), placer, logger.Discard())
	orch.UseProfile(models.Profile{})

	w.SetString(ctx, storage.KeyLastRestaurantID, "9")
	c.Add(ctx, models.CatalogItem{ID: 1, Name: "Burger", Price: decimal.NewFromInt(10)}, 0)
	mem.cart = c

	_, err := orch.Place(ctx)

	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "items", verr.Field)
	assert.Zero(t, placer.calls(), "an empty payload is never sent")
	assert.Equal(t, StateIdle, orch.State())
}

func TestPlace_MissingRestaurant(t *testing.T) {
	f := newFixture(t)
	f.orch.UseProfile(models.Profile{})
	f.addBurger(t, 0)

	_, err := f.orch.Place(context.Background())

	var pe *PlaceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, MsgMissingRestaurant, pe.Message)
	assert.ErrorIs(t, err, ErrMissingRestaurant)
	assert.Zero(t, f.placer.calls(), "no network call without a restaurant")
	assert.Equal(t, 1, f.cart.Len())
	assert.Equal(t, StateIdle, f.orch.State())
}

func TestPlace_FallsBackToLastRestaurant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.orch.UseProfile(models.Profile{})
	f.writer.SetString(ctx, storage.KeyLastRestaurantID, "9")
	f.addBurger(t, 0)
	f.placer.err = errors.New("boom")

	_, err := f.orch.Place(ctx)
	require.Error(t, err)

	require.Len(t, f.placer.payloads, 1)
	assert.Equal(t, int64(9), f.placer.payloads[0].RestaurantID)
	assert.Equal(t, int64(9), f.cart.RestaurantID(), "lines are backfilled")
}

func TestPlace_RemoteFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "server detail",
			err:  &api.Error{StatusCode: http.StatusBadRequest, Detail: "Restaurant is closed."},
			want: "Restaurant is closed.",
		},
		{
			name: "no detail",
			err:  &api.Error{StatusCode: http.StatusInternalServerError},
			want: MsgPlaceFailed,
		},
		{
			name: "network",
			err:  errors.New("connection refused"),
			want: MsgPlaceFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.orch.UseProfile(models.Profile{})
			f.addBurger(t, 5)
			require.NoError(t, f.orch.ApplyPromo("SAVE10"))
			f.placer.err = tt.err

			_, err := f.orch.Place(context.Background())

			var pe *PlaceError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.want, pe.Message)
			assert.Equal(t, 1, f.cart.Len(), "cart survives for retry")
			assert.NotNil(t, f.orch.promos.Applied())
			assert.Equal(t, StateIdle, f.orch.State())
			assert.True(t, f.orch.CanPlace())
		})
	}
}

func TestPlace_SingleInFlight(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.orch.UseProfile(models.Profile{})
	f.addBurger(t, 5)
	f.placer.block = make(chan struct{})
	f.placer.entered = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() {
		_, err := f.orch.Place(ctx)
		done <- err
	}()
	<-f.placer.entered

	assert.Equal(t, StateSubmitting, f.orch.State())
	assert.False(t, f.orch.CanPlace())
	_, err := f.orch.Place(ctx)
	assert.ErrorIs(t, err, ErrSubmitting)

	close(f.placer.block)
	require.NoError(t, <-done)
	assert.Equal(t, StateIdle, f.orch.State())
	assert.Equal(t, 1, f.placer.calls())
}

func TestPlace_NotifierFailureIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.orch.WithNotifier(&fakeNotifier{err: errors.New("broker down")})
	f.orch.UseProfile(models.Profile{})
	f.addBurger(t, 5)

	conf, err := f.orch.Place(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), conf.OrderID)
}

func TestTotals_HappyPath(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addBurger(t, 5)
	f.cart.Inc(ctx, 1)

	totals := f.orch.Totals()
	assert.Equal(t, "$28.52", pricing.Format(totals.Total))

	require.NoError(t, f.orch.SetTip(decimal.RequireFromString("0.2")))
	assert.Equal(t, "$4.80", pricing.Format(f.orch.Totals().Tip))

	assert.ErrorIs(t, f.orch.SetTip(decimal.RequireFromString("0.33")), ErrInvalidTip)
}

func TestSelectionAgainstProfile(t *testing.T) {
	f := newFixture(t)
	f.orch.UseProfile(models.Profile{
		Addresses:      []models.Address{{ID: "a1"}, {ID: "a2", IsDefault: true}},
		PaymentMethods: []models.PaymentMethod{{ID: "p1"}},
	})

	sel := f.orch.Selection()
	assert.Equal(t, "a2", sel.AddressID)
	assert.Equal(t, "p1", sel.PaymentID)

	assert.NoError(t, f.orch.SelectAddress("a1"))
	assert.ErrorIs(t, f.orch.SelectAddress("a9"), ErrUnknownAddress)
	assert.ErrorIs(t, f.orch.SelectPayment("p9"), ErrUnknownPayment)
	assert.Equal(t, "a1", f.orch.Selection().AddressID)
}

func TestSetDelivery(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.orch.SetDelivery(DeliveryScheduled, "19:00"))
	require.NoError(t, f.orch.SetDelivery(DeliveryASAP, ""))
	sel := f.orch.Selection()
	assert.Equal(t, DeliveryASAP, sel.Mode)
	assert.Equal(t, "19:00", sel.ScheduledAt, "slot is kept for later")

	assert.Error(t, f.orch.SetDelivery("LATER", ""))
	assert.Error(t, f.orch.SetDelivery(DeliveryScheduled, "tomorrow-ish"))
}

func TestSummary(t *testing.T) {
	f := newFixture(t)
	f.orch.UseProfile(models.Profile{})
	f.addBurger(t, 5)

	s := f.orch.Summary()
	assert.True(t, s.CanPlace)
	assert.Equal(t, "idle", s.State)
	assert.Len(t, s.Addresses, 1)
	assert.Equal(t, "$10.00", s.Display["subtotal"])
}

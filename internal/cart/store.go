package cart

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Dang-Huynh/FoodOrderingService/internal/models"
	"github.com/Dang-Huynh/FoodOrderingService/internal/storage"
)

// Store owns the cart line items and the open/closed drawer flag.
// Every mutation persists the items through the best-effort writer; the
// open flag is never persisted.
type Store struct {
	mu     sync.RWMutex
	items  []models.LineItem
	open   bool
	writer *storage.Writer
}

// NewStore returns an empty cart backed by w
func NewStore(w *storage.Writer) *Store {
	return &Store{writer: w, items: []models.LineItem{}}
}

// Load restores the cart from storage, migrating legacy shapes. The
// normalized items are written back so the migration only runs once.
func Load(ctx context.Context, w *storage.Writer) *Store {
	s := NewStore(w)

	raw, ok := storage.ReadString(ctx, w.Store(), storage.KeyCart)
	if !ok {
		return s
	}

	last := storage.ReadID(ctx, w.Store(), storage.KeyLastRestaurantID)
	s.items = Normalize([]byte(raw), last)
	s.persist(ctx)
	return s
}

// Add merges item into the cart: an existing line gains one unit, otherwise
// a new line with qty 1 is appended. The cart drawer opens.
// Restaurant reconciliation is the caller's job (see VisitRestaurant).
func (s *Store) Add(ctx context.Context, item models.CatalogItem, restaurantID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(item.ID); i >= 0 {
		s.items[i].Qty = s.items[i].Quantity() + 1
	} else {
		s.items = append(s.items, item.ToLineItem(restaurantID))
	}
	s.open = true
	s.persist(ctx)
}

// Inc adds one unit to the line with id. Unknown ids are ignored.
func (s *Store) Inc(ctx context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		s.items[i].Qty = s.items[i].Quantity() + 1
	}
	s.persist(ctx)
}

// Dec removes one unit from the line with id, dropping the line at zero.
func (s *Store) Dec(ctx context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		s.items[i].Qty = s.items[i].Quantity() - 1
		if s.items[i].Qty <= 0 {
			s.items = append(s.items[:i], s.items[i+1:]...)
		}
	}
	s.persist(ctx)
}

// Remove drops the line with id regardless of its quantity
func (s *Store) Remove(ctx context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	s.persist(ctx)
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []models.LineItem{}
	s.persist(ctx)
}

func (s *Store) OpenCart() {
	s.mu.Lock()
	s.open = true
	s.mu.Unlock()
}

func (s *Store) CloseCart() {
	s.mu.Lock()
	s.open = false
	s.mu.Unlock()
}

func (s *Store) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open
}

// Items returns a copy of the lines in display order
func (s *Store) Items() []models.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotItems()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Subtotal is the sum of price * qty over all lines
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Subtotal(s.items)
}

// Count is the number of units in the cart
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, it := range s.items {
		n += it.Quantity()
	}
	return n
}

// RestaurantID returns the restaurant of the first line, or 0
func (s *Store) RestaurantID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.items) == 0 {
		return 0
	}
	return s.items[0].RestaurantID
}

// BackfillRestaurant assigns restaurantID to every line that has none and
// returns how many lines changed.
func (s *Store) BackfillRestaurant(ctx context.Context, restaurantID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for i := range s.items {
		if s.items[i].RestaurantID == 0 {
			s.items[i].RestaurantID = restaurantID
			changed++
		}
	}
	if changed > 0 {
		s.persist(ctx)
	}
	return changed
}

// Snapshot returns the cart together with its derived values
func (s *Store) Snapshot() models.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := models.Cart{
		Items:    s.snapshotItems(),
		IsOpen:   s.open,
		Subtotal: Subtotal(s.items),
	}
	for _, it := range s.items {
		c.Count += it.Quantity()
	}
	if len(s.items) > 0 {
		c.RestaurantID = s.items[0].RestaurantID
	}
	return c
}

// Subtotal sums price * qty over items
func Subtotal(items []models.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func (s *Store) indexOf(id int64) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotItems() []models.LineItem {
	out := make([]models.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// persist must be called with s.mu held
func (s *Store) persist(ctx context.Context) {
	if s.writer == nil {
		return
	}
	s.writer.SetJSON(ctx, storage.KeyCart, s.items)
}

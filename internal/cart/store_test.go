package cart

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dang-Huynh/FoodOrderingService/internal/logger"
	"github.com/Dang-Huynh/FoodOrderingService/internal/models"
	"github.com/Dang-Huynh/FoodOrderingService/internal/storage"
)

func newTestStore(t *testing.T) (*Store, *storage.Memory, *[]storage.WriteResult) {
	t.Helper()
	mem := storage.NewMemory()
	w := storage.NewWriter(mem, logger.Discard())
	writes := &[]storage.WriteResult{}
	w.Observe(func(r storage.WriteResult) { *writes = append(*writes, r) })
	return NewStore(w), mem, writes
}

func menuItem(id int64, price string) models.CatalogItem {
	return models.CatalogItem{
		ID:    id,
		Name:  "Item",
		Price: decimal.RequireFromString(price),
	}
}

func persisted(t *testing.T, mem *storage.Memory) []models.LineItem {
	t.Helper()
	raw, ok, err := mem.Get(context.Background(), storage.KeyCart)
	require.NoError(t, err)
	require.True(t, ok, "cart was never persisted")
	var items []models.LineItem
	require.NoError(t, json.Unmarshal([]byte(raw), &items))
	return items
}

func TestStore_AddMergesByID(t *testing.T) {
	ctx := context.Background()
	s, mem, _ := newTestStore(t)

	s.Add(ctx, menuItem(1, "10"), 5)
	s.Add(ctx, menuItem(1, "10"), 5)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Qty)
	assert.Equal(t, int64(5), items[0].RestaurantID)
	assert.True(t, s.IsOpen(), "add opens the cart")

	stored := persisted(t, mem)
	require.Len(t, stored, 1)
	assert.Equal(t, 2, stored[0].Qty)
}

func TestStore_AddKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)

	s.Add(ctx, menuItem(3, "1"), 5)
	s.Add(ctx, menuItem(1, "1"), 5)
	s.Add(ctx, menuItem(2, "1"), 5)
	s.Add(ctx, menuItem(1, "1"), 5)

	var ids []int64
	for _, it := range s.Items() {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []int64{3, 1, 2}, ids)
}

func TestStore_IncDecRemove(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)
	s.Add(ctx, menuItem(1, "10"), 5)
	s.Add(ctx, menuItem(2, "4.5"), 5)

	s.Inc(ctx, 1)
	assert.Equal(t, 3, s.Count())

	s.Dec(ctx, 2)
	assert.Equal(t, 1, s.Len(), "dec at qty 1 removes the line")

	s.Dec(ctx, 99)
	s.Inc(ctx, 99)
	s.Remove(ctx, 99)
	assert.Equal(t, 1, s.Len(), "unknown ids are no-ops")

	s.Remove(ctx, 1)
	assert.Equal(t, 0, s.Len())
}

func TestStore_DerivedValues(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)

	assert.True(t, s.Subtotal().IsZero())
	assert.Equal(t, 0, s.Count())

	s.Add(ctx, menuItem(1, "10"), 5)
	s.Add(ctx, menuItem(1, "10"), 5)
	s.Add(ctx, menuItem(2, "2.25"), 5)

	assert.True(t, s.Subtotal().Equal(decimal.RequireFromString("22.25")), "got %s", s.Subtotal())
	assert.Equal(t, 3, s.Count())

	snap := s.Snapshot()
	assert.Equal(t, 3, snap.Count)
	assert.Equal(t, int64(5), snap.RestaurantID)
	assert.True(t, snap.Subtotal.Equal(s.Subtotal()))
}

func TestStore_ClearAndDrawer(t *testing.T) {
	ctx := context.Background()
	s, mem, _ := newTestStore(t)
	s.Add(ctx, menuItem(1, "10"), 5)

	s.CloseCart()
	assert.False(t, s.IsOpen())
	s.OpenCart()
	assert.True(t, s.IsOpen())

	s.Clear(ctx)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, persisted(t, mem))
	assert.True(t, s.IsOpen(), "clear does not touch the drawer flag")
}

func TestStore_EveryMutationPersists(t *testing.T) {
	ctx := context.Background()
	s, _, writes := newTestStore(t)

	s.Add(ctx, menuItem(1, "1"), 5)
	s.Inc(ctx, 1)
	s.Dec(ctx, 1)
	s.Remove(ctx, 1)
	s.Clear(ctx)
	s.OpenCart()
	s.CloseCart()

	require.Len(t, *writes, 5, "open/close are not persisted")
	for _, w := range *writes {
		assert.Equal(t, storage.KeyCart, w.Key)
		assert.True(t, w.OK())
	}
}

func TestStore_PersistenceFailureDoesNotLeak(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.Close())

	w := storage.NewWriter(mem, logger.Discard())
	var failed int
	w.Observe(func(r storage.WriteResult) {
		if !r.OK() {
			failed++
		}
	})

	s := NewStore(w)
	s.Add(ctx, menuItem(1, "10"), 5)
	s.Inc(ctx, 1)

	assert.Equal(t, 2, s.Count(), "cart math is independent of storage")
	assert.Equal(t, 2, failed)
}

func TestLoad_MigratesLegacyCart(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.Set(ctx, storage.KeyCart, `[{"id":7,"price":3},{"id":7,"price":3},{"id":7,"price":3}]`))
	require.NoError(t, mem.Set(ctx, storage.KeyLastRestaurantID, "12"))

	s := Load(ctx, storage.NewWriter(mem, logger.Discard()))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(7), items[0].ID)
	assert.Equal(t, 3, items[0].Qty)
	assert.Equal(t, int64(12), items[0].RestaurantID)
	assert.False(t, s.IsOpen(), "drawer state is not restored")

	stored := persisted(t, mem)
	require.Len(t, stored, 1)
	assert.Equal(t, 3, stored[0].Qty, "migrated cart is written back")
}

func TestLoad_WritesBackPositiveQuantities(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.Set(ctx, storage.KeyCart, `[{"id":1,"price":"2","qty":2},{"id":8,"price":"4","qty":0}]`))

	Load(ctx, storage.NewWriter(mem, logger.Discard()))

	stored := persisted(t, mem)
	require.Len(t, stored, 2)
	for _, li := range stored {
		assert.Positive(t, li.Qty, "item %d", li.ID)
	}
}

func TestLoad_MalformedCartIsEmpty(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.Set(ctx, storage.KeyCart, `not json`))

	s := Load(ctx, storage.NewWriter(mem, logger.Discard()))
	assert.Equal(t, 0, s.Len())
}

func TestLoad_MissingCart(t *testing.T) {
	s := Load(context.Background(), storage.NewWriter(storage.NewMemory(), logger.Discard()))
	assert.Equal(t, 0, s.Len())
}

func TestBackfillRestaurant(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)
	s.Add(ctx, menuItem(1, "1"), 0)
	s.Add(ctx, menuItem(2, "1"), 4)

	assert.Equal(t, 1, s.BackfillRestaurant(ctx, 9))
	items := s.Items()
	assert.Equal(t, int64(9), items[0].RestaurantID)
	assert.Equal(t, int64(4), items[1].RestaurantID)
	assert.Equal(t, 0, s.BackfillRestaurant(ctx, 9))
}

func TestVisitRestaurant(t *testing.T) {
	tests := []struct {
		name        string
		cartRID     int64
		visit       int64
		wantCleared bool
	}{
		{name: "mismatch clears", cartRID: 5, visit: 9, wantCleared: true},
		{name: "same restaurant keeps cart", cartRID: 5, visit: 5, wantCleared: false},
		{name: "unknown restaurant keeps cart", cartRID: 0, visit: 9, wantCleared: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mem := storage.NewMemory()
			w := storage.NewWriter(mem, logger.Discard())
			s := NewStore(w)
			s.Add(ctx, menuItem(1, "10"), tt.cartRID)

			cleared := VisitRestaurant(ctx, s, w, tt.visit)
			assert.Equal(t, tt.wantCleared, cleared)
			assert.Equal(t, tt.wantCleared, s.Len() == 0)

			assert.Equal(t, tt.visit, storage.ReadID(ctx, mem, storage.KeyLastRestaurantID))
		})
	}

	t.Run("empty cart", func(t *testing.T) {
		ctx := context.Background()
		w := storage.NewWriter(storage.NewMemory(), logger.Discard())
		assert.False(t, VisitRestaurant(ctx, NewStore(w), w, 3))
	})
}

package cart

import (
	"context"
	"strconv"

	"github.com/Dang-Huynh/FoodOrderingService/internal/storage"
)

// VisitRestaurant records restaurantID as the last visited restaurant and
// enforces the single-restaurant cart: when the cart belongs to another
// restaurant it is cleared before anything new can be added. It reports
// whether the cart was cleared.
func VisitRestaurant(ctx context.Context, s *Store, w *storage.Writer, restaurantID int64) bool {
	w.SetString(ctx, storage.KeyLastRestaurantID, strconv.FormatInt(restaurantID, 10))

	current := s.RestaurantID()
	if current == 0 || current == restaurantID {
		return false
	}

	s.Clear(ctx)
	return true
}

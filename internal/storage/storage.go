// Package storage provides the device key-value store the client state is
// persisted to, together with tolerant read helpers and a best-effort writer.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// Keys used by the client
const (
	KeyCart             = "cart"
	KeyLastRestaurantID = "lastRestaurantId"
	KeyUserProfile      = "userProfile"
	KeyMenuQuery        = "menu_query"
	KeyMenuSort         = "menu_sort"
	KeyAccessToken      = "access_token"
	KeyRefreshToken     = "refresh_token"

	favoritePrefix = "fav_restaurant_"
)

var (
	ErrUnknownDriver = errors.New("unknown storage driver")
	ErrClosed        = errors.New("storage is closed")
)

// Store is a string key-value store. Get reports a missing key with ok=false
// and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// FavoriteKey returns the key of the favorite flag of a restaurant
func FavoriteKey(restaurantID int64) string {
	return favoritePrefix + strconv.FormatInt(restaurantID, 10)
}

func wrap(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("storage %s %q: %w", op, key, err)
}

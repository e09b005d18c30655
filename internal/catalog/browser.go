package catalog

import (
	"context"
	"errors"
	"strconv"

	"github.com/Dang-Huynh/FoodOrderingService/internal/cart"
	"github.com/Dang-Huynh/FoodOrderingService/internal/logger"
	"github.com/Dang-Huynh/FoodOrderingService/internal/models"
	"github.com/Dang-Huynh/FoodOrderingService/internal/storage"
)

var (
	ErrItemNotFound    = errors.New("menu item not found")
	ErrItemUnavailable = errors.New("menu item is not available")
)

// Source is the remote catalog
type Source interface {
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	GetRestaurant(ctx context.Context, id int64) (*models.RestaurantDetail, error)
}

// Favorites are per-restaurant flags stored as "1" or "0"
type Favorites struct {
	writer *storage.Writer
}

func NewFavorites(w *storage.Writer) *Favorites {
	return &Favorites{writer: w}
}

func (f *Favorites) IsFavorite(ctx context.Context, id int64) bool {
	v, _ := storage.ReadString(ctx, f.writer.Store(), storage.FavoriteKey(id))
	return v == "1"
}

// Toggle flips the flag and returns the new value
func (f *Favorites) Toggle(ctx context.Context, id int64) bool {
	next := !f.IsFavorite(ctx, id)
	v := "0"
	if next {
		v = "1"
	}
	f.writer.SetString(ctx, storage.FavoriteKey(id), v)
	return next
}

// Annotate sets IsFavorite on every restaurant of list
func (f *Favorites) Annotate(ctx context.Context, list []models.Restaurant) {
	for i := range list {
		list[i].IsFavorite = f.IsFavorite(ctx, list[i].ID)
	}
}

// Preferences are the persisted listing search text and sort key
type Preferences struct {
	Query string `json:"query"`
	Sort  string `json:"sort"`
}

// LoadPreferences reads the stored preferences, defaulting to the
// recommended sort. Values are stored JSON encoded.
func LoadPreferences(ctx context.Context, s storage.Store) Preferences {
	p := Preferences{Sort: SortRecommended}
	var q, key string
	if storage.ReadJSON(ctx, s, storage.KeyMenuQuery, &q) {
		p.Query = q
	}
	if storage.ReadJSON(ctx, s, storage.KeyMenuSort, &key) && validSort(key) {
		p.Sort = key
	}
	return p
}

func SavePreferences(ctx context.Context, w *storage.Writer, p Preferences) {
	w.SetJSON(ctx, storage.KeyMenuQuery, p.Query)
	w.SetJSON(ctx, storage.KeyMenuSort, p.Sort)
}

func validSort(key string) bool {
	return key == SortRecommended || key == SortArrival || key == SortRating
}

// Query selects and orders the restaurant listing
type Query struct {
	Text     string
	Category string
	Sort     string
}

// Menu is a restaurant page: the restaurant, its matching sections and
// whether visiting it emptied a cart from another restaurant.
type Menu struct {
	Restaurant  models.Restaurant `json:"restaurant"`
	Sections    []MenuSection     `json:"sections"`
	CartCleared bool              `json:"cartCleared"`
}

type Browser struct {
	source    Source
	cart      *cart.Store
	writer    *storage.Writer
	favorites *Favorites
	logger    *logger.Logger
}

func NewBrowser(source Source, c *cart.Store, w *storage.Writer, log *logger.Logger) *Browser {
	return &Browser{
		source:    source,
		cart:      c,
		writer:    w,
		favorites: NewFavorites(w),
		logger:    log,
	}
}

func (b *Browser) Favorites() *Favorites { return b.favorites }

// Restaurants fetches the listing, annotates favorites, then filters and
// sorts it. An empty sort key uses the stored preference. The query text
// and sort are remembered for the next visit.
func (b *Browser) Restaurants(ctx context.Context, q Query) ([]models.Restaurant, error) {
	prefs := LoadPreferences(ctx, b.writer.Store())
	if q.Sort == "" {
		q.Sort = prefs.Sort
	}

	list, err := b.source.ListRestaurants(ctx)
	if err != nil {
		b.logger.Error("restaurants_fetch_failed", "failed to load restaurants", "", err, nil)
		return nil, err
	}
	b.favorites.Annotate(ctx, list)

	if validSort(q.Sort) && (q.Sort != prefs.Sort || q.Text != prefs.Query) {
		SavePreferences(ctx, b.writer, Preferences{Query: q.Text, Sort: q.Sort})
	}
	return Sort(Filter(list, q.Text, q.Category), q.Sort), nil
}

// Menu opens restaurant id. The visit is recorded, and a cart holding items
// of another restaurant is cleared, before the menu is fetched.
func (b *Browser) Menu(ctx context.Context, id int64, query string) (*Menu, error) {
	cleared := cart.VisitRestaurant(ctx, b.cart, b.writer, id)
	if cleared {
		b.logger.Info("cart_cleared", "cart belonged to another restaurant", "", map[string]interface{}{
			"restaurant_id": id,
		})
	}

	detail, err := b.source.GetRestaurant(ctx, id)
	if err != nil {
		b.logger.Error("menu_fetch_failed", "failed to load restaurant "+strconv.FormatInt(id, 10), "", err, nil)
		return nil, err
	}

	r := detail.Restaurant
	r.IsFavorite = b.favorites.IsFavorite(ctx, id)
	return &Menu{
		Restaurant:  r,
		Sections:    GroupMenu(detail.Menu, query),
		CartCleared: cleared,
	}, nil
}

// AddToCart adds item id of restaurantID's menu to the cart
func (b *Browser) AddToCart(ctx context.Context, restaurantID, itemID int64) (models.CatalogItem, error) {
	detail, err := b.source.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return models.CatalogItem{}, err
	}
	item, ok := FindItem(detail.Menu, itemID)
	if !ok {
		return models.CatalogItem{}, ErrItemNotFound
	}
	if item.IsAvailable != nil && !*item.IsAvailable {
		return models.CatalogItem{}, ErrItemUnavailable
	}

	cart.VisitRestaurant(ctx, b.cart, b.writer, restaurantID)
	b.cart.Add(ctx, item, restaurantID)
	return item, nil
}

// Package catalog filters, sorts and annotates the restaurant listing and
// groups restaurant menus for display.
package catalog

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Dang-Huynh/FoodOrderingService/internal/models"
)

// Listing categories with special meaning. Any other category is matched
// against the cuisine type.
const (
	CategoryAll          = "All"
	CategoryDeals        = "Deals"
	CategoryPromoted     = "Promoted"
	CategoryFastAndCheap = "Fast & Cheap"
)

// Sort keys
const (
	SortRecommended = "recommended"
	SortArrival     = "arrival_asc"
	SortRating      = "rating_desc"
)

// Categories offered by the listing, in display order
var Categories = []string{
	CategoryAll, "Italian", "Pizza", "Sushi", "Japanese", "Burgers", "Indian", "Vegan",
	"Desserts", "Mexican", "Chinese", "Breakfast", "Middle Eastern", "Vietnamese",
	CategoryDeals, CategoryPromoted, CategoryFastAndCheap,
}

const (
	fastMaxMinutes = 20
	cheapMaxFee    = 1.99
)

var (
	feePattern  = regexp.MustCompile(`\$([\d.]+)`)
	minsPattern = regexp.MustCompile(`(\d+)`)
)

// ParseFee reads a display fee such as "$2.99 delivery". "Free" and
// unparsable text read as zero.
func ParseFee(fee string) float64 {
	s := strings.ToLower(fee)
	if strings.Contains(s, "free") {
		return 0
	}
	m := feePattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimRight(m[1], "."), 64)
	if err != nil {
		return 0
	}
	return v
}

// MinDeliveryMins returns the lower bound of a range such as "15-25 min".
// Missing or unparsable text sorts last.
func MinDeliveryMins(t string) float64 {
	m := minsPattern.FindString(t)
	if m == "" {
		return math.Inf(1)
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return math.Inf(1)
	}
	return float64(v)
}

// Filter keeps the restaurants matching the free-text query and category
func Filter(list []models.Restaurant, query, category string) []models.Restaurant {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Restaurant, 0, len(list))
	for _, r := range list {
		if !textHit(r, q) || !inCategory(r, category) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func textHit(r models.Restaurant, q string) bool {
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(r.Name), q) || strings.Contains(strings.ToLower(r.CuisineType), q) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func inCategory(r models.Restaurant, category string) bool {
	switch category {
	case "", CategoryAll:
		return true
	case CategoryDeals:
		return r.Offer != ""
	case CategoryPromoted:
		return r.Promoted
	case CategoryFastAndCheap:
		return ParseFee(r.DeliveryFee) <= cheapMaxFee && MinDeliveryMins(r.DeliveryTime) <= fastMaxMinutes
	default:
		return strings.Contains(strings.ToLower(r.CuisineType), strings.ToLower(category))
	}
}

// Sort orders a copy of list by key. Unknown keys keep the input order.
func Sort(list []models.Restaurant, key string) []models.Restaurant {
	out := append([]models.Restaurant(nil), list...)

	switch key {
	case SortRecommended:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if a.Promoted != b.Promoted {
				return a.Promoted
			}
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
			return MinDeliveryMins(a.DeliveryTime) < MinDeliveryMins(b.DeliveryTime)
		})
	case SortArrival:
		sort.SliceStable(out, func(i, j int) bool {
			return MinDeliveryMins(out[i].DeliveryTime) < MinDeliveryMins(out[j].DeliveryTime)
		})
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Rating > out[j].Rating
		})
	}
	return out
}

// MenuSection is one titled group of menu items
type MenuSection struct {
	Name  string               `json:"name"`
	Items []models.CatalogItem `json:"items"`
}

// GroupMenu keeps the items whose name contains query, drops sections left
// empty and orders sections by name.
func GroupMenu(menu map[string][]models.CatalogItem, query string) []MenuSection {
	q := strings.ToLower(strings.TrimSpace(query))

	names := make([]string, 0, len(menu))
	for name := range menu {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]MenuSection, 0, len(names))
	for _, name := range names {
		var items []models.CatalogItem
		for _, it := range menu[name] {
			if strings.Contains(strings.ToLower(it.Name), q) {
				items = append(items, it)
			}
		}
		if len(items) > 0 {
			out = append(out, MenuSection{Name: name, Items: items})
		}
	}
	return out
}

// FindItem looks an item up by id across all sections
func FindItem(menu map[string][]models.CatalogItem, id int64) (models.CatalogItem, bool) {
	for _, items := range menu {
		for _, it := range items {
			if it.ID == id {
				return it, true
			}
		}
	}
	return models.CatalogItem{}, false
}

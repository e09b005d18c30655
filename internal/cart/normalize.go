package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Dang-Huynh/FoodOrderingService/internal/models"
)

// Format identifies the shape of a persisted cart value.
//
// Only two shapes have ever been written: the current one, where every line
// carries a qty, and the legacy one, where each add appended a full copy of
// the menu item without qty. Any new shape needs its own Format value and a
// migration branch in Normalize.
type Format int

const (
	// FormatNone is anything that is not a JSON array
	FormatNone Format = iota
	FormatCanonical
	FormatLegacy
)

func (f Format) String() string {
	switch f {
	case FormatCanonical:
		return "canonical"
	case FormatLegacy:
		return "legacy"
	default:
		return "none"
	}
}

// DetectFormat looks at the first element only: a truthy qty marks the whole
// array as canonical.
func DetectFormat(raw []byte) Format {
	elems, ok := decodeArray(raw)
	if !ok {
		return FormatNone
	}
	return detect(elems)
}

func detect(elems []json.RawMessage) Format {
	if len(elems) == 0 {
		return FormatCanonical
	}
	var first map[string]interface{}
	if err := json.Unmarshal(elems[0], &first); err != nil {
		return FormatLegacy
	}
	if truthy(first["qty"]) {
		return FormatCanonical
	}
	return FormatLegacy
}

// Normalize turns a persisted cart value into line items. Unreadable input
// yields an empty cart. Lines without a restaurant are assigned
// lastRestaurantID when it is known (non-zero).
func Normalize(raw []byte, lastRestaurantID int64) []models.LineItem {
	elems, ok := decodeArray(raw)
	if !ok {
		return []models.LineItem{}
	}

	var items []models.LineItem
	switch detect(elems) {
	case FormatCanonical:
		items = decodeCanonical(elems)
	default:
		items = mergeLegacy(elems)
	}

	if lastRestaurantID > 0 {
		for i := range items {
			if items[i].RestaurantID == 0 {
				items[i].RestaurantID = lastRestaurantID
			}
		}
	}
	return items
}

func decodeArray(raw []byte) ([]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, false
	}
	return elems, true
}

func decodeCanonical(elems []json.RawMessage) []models.LineItem {
	items := make([]models.LineItem, 0, len(elems))
	for _, e := range elems {
		fields, ok := decodeFields(e)
		if !ok {
			continue
		}
		li, ok := lineFromFields(fields)
		if !ok {
			continue
		}
		if qty, ok := intField(fields["qty"]); ok && qty > 0 {
			li.Qty = qty
		}
		items = append(items, li)
	}
	return items
}

// mergeLegacy collapses duplicate entries into one line per item, keeping
// first-seen order. Entries without an id are grouped by their content. A
// legacy qty field is ignored: the line quantity is the duplicate count.
func mergeLegacy(elems []json.RawMessage) []models.LineItem {
	items := make([]models.LineItem, 0, len(elems))
	index := make(map[string]int)

	for _, e := range elems {
		fields, ok := decodeFields(e)
		if !ok {
			continue
		}

		key, ok := legacyKey(fields)
		if !ok {
			continue
		}

		if i, seen := index[key]; seen {
			if i >= 0 {
				items[i].Qty++
			}
			continue
		}

		li, ok := lineFromFields(fields)
		if !ok {
			index[key] = -1
			continue
		}
		index[key] = len(items)
		items = append(items, li)
	}
	return items
}

func decodeFields(elem json.RawMessage) (map[string]interface{}, bool) {
	dec := json.NewDecoder(bytes.NewReader(elem))
	dec.UseNumber()
	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}

func legacyKey(fields map[string]interface{}) (string, bool) {
	if id, ok := fields["id"]; ok && id != nil {
		return fmt.Sprintf("id:%v", id), true
	}
	// encoding/json writes map keys sorted, so equal objects give equal keys
	canonical, err := json.Marshal(fields)
	if err != nil {
		return "", false
	}
	return "obj:" + string(canonical), true
}

// lineFromFields builds a line with qty 1 from a loosely typed entry. Numbers
// may be stored as JSON numbers or numeric strings. An id that is present
// but not numeric makes the entry unusable.
func lineFromFields(fields map[string]interface{}) (models.LineItem, bool) {
	li := models.LineItem{Qty: 1}

	if raw, ok := fields["id"]; ok && raw != nil {
		id, ok := int64Field(raw)
		if !ok {
			return models.LineItem{}, false
		}
		li.ID = id
	}
	li.Name, _ = fields["name"].(string)
	li.Description, _ = fields["description"].(string)
	li.Image, _ = fields["image"].(string)
	if li.Image == "" {
		li.Image, _ = fields["image_url"].(string)
	}
	if price, ok := decimalField(fields["price"]); ok {
		li.Price = price
	}
	if rid, ok := int64Field(fields["restaurantId"]); ok && rid > 0 {
		li.RestaurantID = rid
	}
	return li, true
}

func decimalField(v interface{}) (decimal.Decimal, bool) {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
	default:
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func int64Field(v interface{}) (int64, bool) {
	d, ok := decimalField(v)
	if !ok || !d.IsInteger() {
		return 0, false
	}
	return d.IntPart(), true
}

func intField(v interface{}) (int, bool) {
	n, ok := int64Field(v)
	return int(n), ok
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case string:
		return t != ""
	default:
		return true
	}
}

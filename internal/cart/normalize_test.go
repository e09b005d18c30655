package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Format
	}{
		{name: "not json", raw: `{oops`, want: FormatNone},
		{name: "object", raw: `{"id":1}`, want: FormatNone},
		{name: "null", raw: `null`, want: FormatNone},
		{name: "empty string", raw: ``, want: FormatNone},
		{name: "empty array", raw: `[]`, want: FormatCanonical},
		{name: "first has qty", raw: `[{"id":1,"qty":2},{"id":2}]`, want: FormatCanonical},
		{name: "first qty zero", raw: `[{"id":1,"qty":0}]`, want: FormatLegacy},
		{name: "no qty", raw: `[{"id":1},{"id":1}]`, want: FormatLegacy},
		{name: "scalar elements", raw: `[1,2,3]`, want: FormatLegacy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat([]byte(tt.raw)))
		})
	}
}

func TestNormalize_LegacyDuplicatesMerge(t *testing.T) {
	raw := `[
		{"id":7,"name":"Pad Thai","price":12.5},
		{"id":7,"name":"Pad Thai","price":12.5},
		{"id":3,"name":"Spring Rolls","price":"4.00"},
		{"id":7,"name":"Pad Thai","price":12.5}
	]`

	items := Normalize([]byte(raw), 0)
	require.Len(t, items, 2)

	assert.Equal(t, int64(7), items[0].ID)
	assert.Equal(t, 3, items[0].Qty)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("12.5")))

	assert.Equal(t, int64(3), items[1].ID)
	assert.Equal(t, 1, items[1].Qty)
}

func TestNormalize_LegacyWithoutIDGroupsByContent(t *testing.T) {
	raw := `[
		{"name":"Soup","price":5},
		{"price":5,"name":"Soup"},
		{"name":"Bread","price":2}
	]`

	items := Normalize([]byte(raw), 0)
	require.Len(t, items, 2)
	assert.Equal(t, "Soup", items[0].Name)
	assert.Equal(t, 2, items[0].Qty)
	assert.Equal(t, "Bread", items[1].Name)
	assert.Equal(t, 1, items[1].Qty)
}

func TestNormalize_CanonicalPassesThrough(t *testing.T) {
	raw := `[{"id":1,"name":"Burger","price":"10","qty":2,"restaurantId":5},{"id":2,"name":"Fries","price":"3","qty":1,"restaurantId":5}]`

	items := Normalize([]byte(raw), 9)
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Qty)
	assert.Equal(t, int64(5), items[0].RestaurantID, "existing restaurant must not be replaced")
	assert.Equal(t, int64(5), items[1].RestaurantID)
}

func TestNormalize_BackfillsRestaurant(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		last int64
		want int64
	}{
		{name: "legacy with last visited", raw: `[{"id":1,"price":1}]`, last: 9, want: 9},
		{name: "canonical with last visited", raw: `[{"id":1,"price":1,"qty":1}]`, last: 9, want: 9},
		{name: "unknown last visited", raw: `[{"id":1,"price":1}]`, last: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := Normalize([]byte(tt.raw), tt.last)
			require.Len(t, items, 1)
			assert.Equal(t, tt.want, items[0].RestaurantID)
		})
	}
}

func TestNormalize_Malformed(t *testing.T) {
	for _, raw := range []string{``, `garbage`, `{"id":1}`, `"cart"`, `[{"id":1}`} {
		items := Normalize([]byte(raw), 3)
		assert.NotNil(t, items, "input %q", raw)
		assert.Empty(t, items, "input %q", raw)
	}
}

func TestNormalize_DropsUndecodableEntries(t *testing.T) {
	raw := `[{"id":"not-a-number"},{"id":4,"price":2},42]`

	items := Normalize([]byte(raw), 0)
	require.Len(t, items, 1)
	assert.Equal(t, int64(4), items[0].ID)
}

func TestNormalize_LegacyLooseFieldTypes(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantID  int64
		wantQty int
	}{
		{
			name:    "string ids",
			raw:     `[{"id":"7","name":"Pad Thai","price":"12.5"},{"id":"7","name":"Pad Thai","price":"12.5"}]`,
			wantID:  7,
			wantQty: 2,
		},
		{
			name:    "stray qty is ignored",
			raw:     `[{"id":7,"qty":""},{"id":7}]`,
			wantID:  7,
			wantQty: 2,
		},
		{
			name:    "mixed id types",
			raw:     `[{"id":7,"price":1},{"id":"7","price":1},{"id":7,"price":true}]`,
			wantID:  7,
			wantQty: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := Normalize([]byte(tt.raw), 0)
			require.Len(t, items, 1)
			assert.Equal(t, tt.wantID, items[0].ID)
			assert.Equal(t, tt.wantQty, items[0].Qty)
		})
	}
}

func TestNormalize_CanonicalZeroQtyStoredAsOne(t *testing.T) {
	raw := `[{"id":1,"price":"2","qty":3},{"id":8,"price":"4","qty":0},{"id":9,"price":"1","qty":-2}]`

	items := Normalize([]byte(raw), 0)
	require.Len(t, items, 3)
	assert.Equal(t, 3, items[0].Qty)
	assert.Equal(t, 1, items[1].Qty)
	assert.Equal(t, 1, items[2].Qty)
}

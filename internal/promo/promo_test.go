package promo

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dang-Huynh/FoodOrderingService/internal/models"
)

func TestResolve(t *testing.T) {
	r := Default()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "exact", input: "WELCOME20", want: "WELCOME20"},
		{name: "lower case", input: "welcome20", want: "WELCOME20"},
		{name: "padded", input: "  freeship \t", want: "FREESHIP"},
		{name: "fixed amount", input: "Save10", want: "SAVE10"},
		{name: "blank", input: "   ", wantErr: ErrNoCode},
		{name: "unknown", input: "BOGUS", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc, err := r.Resolve(tt.input)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, pc.Code)
		})
	}
}

func TestCatalogValues(t *testing.T) {
	r := Default()

	welcome, _ := r.Resolve("WELCOME20")
	assert.Equal(t, models.PromoPercentage, welcome.Kind)
	assert.True(t, welcome.Value.Equal(decimal.RequireFromString("0.2")))
	assert.Equal(t, "20% off", welcome.Label)

	ship, _ := r.Resolve("FREESHIP")
	assert.Equal(t, models.PromoFixed, ship.Kind)
	assert.True(t, ship.Value.Equal(decimal.RequireFromString("2.99")))

	save, _ := r.Resolve("SAVE10")
	assert.Equal(t, "$10 off", save.Label)
	assert.True(t, save.Value.Equal(decimal.NewFromInt(10)))
}

func TestNotFoundMessage(t *testing.T) {
	_, err := Default().Resolve("NOPE")
	assert.EqualError(t, err, "Promo code is invalid or expired.")
}

func TestSelection(t *testing.T) {
	s := NewSelection(Default())
	assert.Nil(t, s.Applied())

	require.NoError(t, s.Apply("welcome20"))
	require.NotNil(t, s.Applied())
	assert.Equal(t, "WELCOME20", s.Applied().Code)

	require.NoError(t, s.Apply("FREESHIP"))
	assert.Equal(t, "FREESHIP", s.Applied().Code, "a new code replaces the old one")

	require.NoError(t, s.Apply(""))
	assert.Equal(t, "FREESHIP", s.Applied().Code, "blank input is a no-op")

	err := s.Apply("EXPIRED")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Nil(t, s.Applied(), "an invalid code clears the applied one")

	require.NoError(t, s.Apply("SAVE10"))
	s.Clear()
	assert.Nil(t, s.Applied())
}

func TestSelection_AppliedIsACopy(t *testing.T) {
	s := NewSelection(Default())
	require.NoError(t, s.Apply("SAVE10"))

	pc := s.Applied()
	pc.Code = "HACKED"
	assert.Equal(t, "SAVE10", s.Applied().Code)
}

package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopack/cartengine/internal/domain/money"
	"github.com/ecopack/cartengine/internal/domain/product"
)

// tieredProduct has the bands 1-9 @ $1.00, 10-49 @ $0.80, 50+ @ $0.60.
func tieredProduct() product.Product {
	return product.Product{
		ID:              "box-small",
		Price:           money.MustParse("1.00", "USD"),
		MinimumOrderQty: 1,
		BulkPricing: []product.BulkPricingTier{
			{MinQuantity: 1, MaxQuantity: 9, Price: money.MustParse("1.00", "USD")},
			{MinQuantity: 10, MaxQuantity: 49, Price: money.MustParse("0.80", "USD")},
			{MinQuantity: 50, Price: money.MustParse("0.60", "USD")},
		},
	}
}

func TestResolveUnitPrice(t *testing.T) {
	p := tieredProduct()

	tests := []struct {
		name     string
		quantity int
		want     string
	}{
		{name: "first tier", quantity: 5, want: "1.00"},
		{name: "second tier", quantity: 25, want: "0.80"},
		{name: "second tier lower bound", quantity: 10, want: "0.80"},
		{name: "second tier upper bound", quantity: 49, want: "0.80"},
		{name: "open-ended tier", quantity: 50, want: "0.60"},
		{name: "deep into open-ended tier", quantity: 100000, want: "0.60"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveUnitPrice(p, tt.quantity)
			require.NoError(t, err)
			assert.True(t, got.Equal(money.MustParse(tt.want, "USD")),
				"got %s, want %s", got, tt.want)
		})
	}
}

func TestResolveUnitPriceFlatWithinTier(t *testing.T) {
	p := tieredProduct()

	first, err := ResolveUnitPrice(p, 10)
	require.NoError(t, err)
	second, err := ResolveUnitPrice(p, 49)
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
}

func TestResolveUnitPriceMonotonicAcrossTiers(t *testing.T) {
	p := tieredProduct()

	prev, err := ResolveUnitPrice(p, p.MinimumOrderQty)
	require.NoError(t, err)

	for q := p.MinimumOrderQty + 1; q <= 60; q++ {
		got, err := ResolveUnitPrice(p, q)
		require.NoError(t, err)
		assert.False(t, got.Amount.GreaterThan(prev.Amount),
			"price increased from %s to %s at quantity %d", prev, got, q)
		prev = got
	}
}

func TestResolveUnitPriceNoMatchingTier(t *testing.T) {
	p := product.Product{
		ID:              "custom-crate",
		Price:           money.MustParse("12.40", "USD"),
		MinimumOrderQty: 1,
		BulkPricing: []product.BulkPricingTier{
			{MinQuantity: 100, Price: money.MustParse("9.90", "USD")},
		},
	}

	got, err := ResolveUnitPrice(p, 3)
	require.NoError(t, err)
	assert.True(t, got.Equal(p.Price))
}

func TestResolveUnitPriceBelowMinimum(t *testing.T) {
	p := tieredProduct()
	p.MinimumOrderQty = 10

	_, err := ResolveUnitPrice(p, 4)

	var below *QuantityBelowMinimumError
	require.ErrorAs(t, err, &below)
	assert.Equal(t, "box-small", below.ProductID)
	assert.Equal(t, 4, below.Quantity)
	assert.Equal(t, 10, below.Minimum)
}

func TestResolveUnitPriceOverlappingTiersMostSpecificWins(t *testing.T) {
	p := product.Product{
		ID:              "mailer",
		Price:           money.MustParse("2.00", "USD"),
		MinimumOrderQty: 1,
		BulkPricing: []product.BulkPricingTier{
			{MinQuantity: 1, MaxQuantity: 100, Price: money.MustParse("2.00", "USD")},
			{MinQuantity: 50, MaxQuantity: 100, Price: money.MustParse("1.50", "USD")},
		},
	}

	got, err := ResolveUnitPrice(p, 75)
	require.NoError(t, err)
	assert.True(t, got.Equal(money.MustParse("1.50", "USD")))
}

func TestResolveUnitPriceWithOptions(t *testing.T) {
	p := tieredProduct()
	p.Customizations = []product.CustomizationOption{
		{
			ID:            "printing",
			Type:          "printing",
			Name:          "Logo printing",
			PriceModifier: ptr(money.MustParse("0.10", "USD")),
			Values: []product.CustomizationValue{
				{ID: "one-color", Available: true},
				{ID: "full-color", Available: true, PriceModifier: ptr(money.MustParse("0.15", "USD"))},
			},
		},
	}

	got, err := ResolveUnitPriceWithOptions(p, 25, map[string]string{"printing": "full-color"})
	require.NoError(t, err)
	// 0.80 tier price + 0.10 option + 0.15 value.
	assert.True(t, got.Equal(money.MustParse("1.05", "USD")))
}

func TestResolveUnitPriceWithUnknownOption(t *testing.T) {
	p := tieredProduct()

	_, err := ResolveUnitPriceWithOptions(p, 5, map[string]string{"engraving": "deep"})

	var unknown *UnknownCustomizationError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "engraving", unknown.OptionID)
}

func ptr[T any](v T) *T { return &v }

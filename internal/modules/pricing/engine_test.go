package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestResolveNoOverride(t *testing.T) {
	got := Resolve(nil, PartnerContext{Tier: TierB2B, DiscountPercentage: 25})
	assert.Nil(t, got.UnitPrice, "no override must mean price on request")
	assert.Nil(t, got.OriginalPrice)
	assert.Zero(t, got.DiscountPercentage)
}

func TestResolveOtherTierOnly(t *testing.T) {
	// Override carries a B2C price only; a B2B caller gets "on request".
	o := &PriceOverride{SKU: "X", PriceB2C: f(1200)}
	got := Resolve(o, PartnerContext{Tier: TierB2B, DiscountPercentage: 10})
	assert.Nil(t, got.UnitPrice)
	assert.Nil(t, got.OriginalPrice)
}

func TestResolveTierSelectionAndDiscount(t *testing.T) {
	o := &PriceOverride{SKU: "X", PriceB2B: f(1000), PriceB2C: f(1200)}

	b2b := Resolve(o, PartnerContext{Tier: TierB2B, DiscountPercentage: 10})
	require.NotNil(t, b2b.UnitPrice)
	assert.Equal(t, 900.00, *b2b.UnitPrice)
	assert.Equal(t, 1000.00, *b2b.OriginalPrice)
	assert.Equal(t, 10.0, b2b.DiscountPercentage)

	b2c := Resolve(o, PartnerContext{Tier: TierB2C, DiscountPercentage: 10})
	assert.Equal(t, 1080.00, *b2c.UnitPrice)
	assert.Equal(t, 1200.00, *b2c.OriginalPrice)
}

func TestResolveZeroDiscountStillReportsOriginal(t *testing.T) {
	o := &PriceOverride{SKU: "X", PriceB2B: f(1000)}
	got := Resolve(o, PartnerContext{Tier: TierB2B})
	require.NotNil(t, got.UnitPrice)
	assert.Equal(t, 1000.00, *got.UnitPrice)
	assert.Equal(t, 1000.00, *got.OriginalPrice)
	assert.Zero(t, got.DiscountPercentage)
}

func TestResolveRoundsToTwoDecimals(t *testing.T) {
	o := &PriceOverride{SKU: "X", PriceB2B: f(999.99)}
	got := Resolve(o, PartnerContext{Tier: TierB2B, DiscountPercentage: 33})
	require.NotNil(t, got.UnitPrice)
	assert.Equal(t, 669.99, *got.UnitPrice) // 999.99 * 0.67 = 669.9933
}

func TestResolveDifferentCallersDifferentPrices(t *testing.T) {
	// The same override priced for two partners in the same tier but with
	// different discounts must yield different unit prices.
	o := &PriceOverride{SKU: "X", PriceB2B: f(500)}
	a := Resolve(o, PartnerContext{Tier: TierB2B, DiscountPercentage: 5})
	b := Resolve(o, PartnerContext{Tier: TierB2B, DiscountPercentage: 20})
	assert.Equal(t, 475.00, *a.UnitPrice)
	assert.Equal(t, 400.00, *b.UnitPrice)
}

func TestParseTier(t *testing.T) {
	for in, want := range map[string]Tier{
		"B2B": TierB2B, "b2c": TierB2C, " b2b ": TierB2B,
	} {
		got, err := ParseTier(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseTier("wholesale")
	assert.Error(t, err, "unknown tier labels must not silently resolve")
}

func TestStockDecrementDepletedNow(t *testing.T) {
	assert.True(t, StockDecrement{PreviousQuantity: 2, NewQuantity: 0}.DepletedNow())
	assert.False(t, StockDecrement{PreviousQuantity: 5, NewQuantity: 3}.DepletedNow())
	// Already at zero: clamp keeps it there but must not re-trigger the flip.
	assert.False(t, StockDecrement{PreviousQuantity: 0, NewQuantity: 0}.DepletedNow())
}

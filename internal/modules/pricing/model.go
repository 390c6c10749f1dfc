package pricing

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Tier is the business-model classification that selects which of the
// two list prices a partner pays. It is a closed enum: unknown labels
// fail parsing instead of silently resolving to "no override".
type Tier string

const (
	TierB2B Tier = "B2B"
	TierB2C Tier = "B2C"
)

// ParseTier maps an external-facing label onto the enum.
func ParseTier(s string) (Tier, error) {
	switch Tier(strings.ToUpper(strings.TrimSpace(s))) {
	case TierB2B:
		return TierB2B, nil
	case TierB2C:
		return TierB2C, nil
	default:
		return "", fmt.Errorf("unknown business model tier: %q", s)
	}
}

// PriceOverride is the locally maintained price/stock record for a SKU.
// It takes precedence over the externally-synced catalog price. A nil
// tier price means that tier has no list price; a nil StockQuantity
// means stock is not tracked for the SKU.
type PriceOverride struct {
	SKU           string    `json:"sku"`
	PriceB2B      *float64  `json:"price_b2b,omitempty"`
	PriceB2C      *float64  `json:"price_b2c,omitempty"`
	StockQuantity *int      `json:"stock_quantity,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TierPrice returns the list price for the given tier, or nil.
func (o *PriceOverride) TierPrice(t Tier) *float64 {
	if t == TierB2B {
		return o.PriceB2B
	}
	return o.PriceB2C
}

// PartnerContext is the per-caller input to price resolution. It is
// derived from the authenticated partner's profile on every request and
// never cached alongside catalog data.
type PartnerContext struct {
	Tier               Tier
	DiscountPercentage float64
}

// ResolvedPrice is the final computed price triple for one product and
// one caller. Nil UnitPrice means "price on request". Currency is AOA
// across the system.
type ResolvedPrice struct {
	UnitPrice          *float64 `json:"price"`
	OriginalPrice      *float64 `json:"original_price"`
	DiscountPercentage float64  `json:"discount_percentage"`
}

// StockDecrement reports the outcome of an atomic clamped decrement.
type StockDecrement struct {
	SKU              string
	PreviousQuantity int
	NewQuantity      int
}

// DepletedNow is true only on the transition to zero, which is the
// trigger for flipping the catalog mirror's stock status.
func (d StockDecrement) DepletedNow() bool {
	return d.PreviousQuantity > 0 && d.NewQuantity == 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

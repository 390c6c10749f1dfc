package pricing

import (
	"context"
	"errors"
)

// ErrOverrideNotFound is returned when no override row exists for a SKU.
var ErrOverrideNotFound = errors.New("price override not found")

// Repository defines storage for SKU price/stock overrides.
type Repository interface {
	// GetBySKU returns the override for one SKU or ErrOverrideNotFound.
	GetBySKU(ctx context.Context, sku string) (*PriceOverride, error)

	// GetBySKUs returns the overrides for a set of SKUs keyed by SKU.
	// Missing SKUs are simply absent from the map.
	GetBySKUs(ctx context.Context, skus []string) (map[string]*PriceOverride, error)

	// Upsert inserts or replaces the override for o.SKU.
	Upsert(ctx context.Context, o *PriceOverride) error

	// DecrementStock atomically clamps stock at zero:
	//   stock = GREATEST(0, stock - qty)
	// in a single statement, and reports the old and new quantities.
	// SKUs without an override row, or with untracked stock, return
	// ErrOverrideNotFound.
	DecrementStock(ctx context.Context, sku string, qty int) (StockDecrement, error)
}

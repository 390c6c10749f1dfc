package catalog

import "context"

// MirrorRepository stores the local read copy of the synced catalog.
// The webhook stock reconciliation writes its out-of-stock flips here,
// decoupled from the price override table.
type MirrorRepository interface {
	UpsertProducts(ctx context.Context, products []Product) error
	GetBySKU(ctx context.Context, sku string) (*MirrorProduct, error)
	SetStockStatus(ctx context.Context, sku string, status StockStatus) error
}

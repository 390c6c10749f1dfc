package pricing

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memoryRepo is an in-memory override store used across the package tests.
type memoryRepo struct {
	mu        sync.Mutex
	overrides map[string]*PriceOverride
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{overrides: map[string]*PriceOverride{}}
}

func (m *memoryRepo) GetBySKU(_ context.Context, sku string) (*PriceOverride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.overrides[sku]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, ErrOverrideNotFound
}

func (m *memoryRepo) GetBySKUs(_ context.Context, skus []string) (map[string]*PriceOverride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]*PriceOverride{}
	for _, sku := range skus {
		if o, ok := m.overrides[sku]; ok {
			cp := *o
			out[sku] = &cp
		}
	}
	return out, nil
}

func (m *memoryRepo) Upsert(_ context.Context, o *PriceOverride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.overrides[o.SKU] = &cp
	return nil
}

func (m *memoryRepo) DecrementStock(_ context.Context, sku string, qty int) (StockDecrement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.overrides[sku]
	if !ok || o.StockQuantity == nil {
		return StockDecrement{SKU: sku}, ErrOverrideNotFound
	}
	prev := *o.StockQuantity
	next := prev - qty
	if next < 0 {
		next = 0
	}
	*o.StockQuantity = next
	return StockDecrement{SKU: sku, PreviousQuantity: prev, NewQuantity: next}, nil
}

func TestIngestUpsertsBySKU(t *testing.T) {
	repo := newMemoryRepo()
	in := NewIngestor(repo, zap.NewNop())

	sheet := strings.Join([]string{
		"sku,price_b2b,price_b2c,stock_quantity",
		"AZ-001,1000,1200,15",
		"AZ-002,550.50,,", // B2C column empty: tier has no price
		"AZ-001,900,1100,10", // later row replaces the earlier one
	}, "\n")

	report, err := in.Ingest(context.Background(), strings.NewReader(sheet))
	require.NoError(t, err)
	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 0, report.Skipped)

	o, err := repo.GetBySKU(context.Background(), "AZ-001")
	require.NoError(t, err)
	assert.Equal(t, 900.0, *o.PriceB2B)
	assert.Equal(t, 1100.0, *o.PriceB2C)
	assert.Equal(t, 10, *o.StockQuantity)

	o, err = repo.GetBySKU(context.Background(), "AZ-002")
	require.NoError(t, err)
	assert.Equal(t, 550.50, *o.PriceB2B)
	assert.Nil(t, o.PriceB2C)
}

func TestIngestSkipsMalformedRowsAndContinues(t *testing.T) {
	repo := newMemoryRepo()
	in := NewIngestor(repo, zap.NewNop())

	sheet := strings.Join([]string{
		",1000,1200",       // missing SKU
		"AZ-010,abc,1200",  // non-numeric price
		"AZ-011,100,-5",    // negative price
		"AZ-012,100,200,xx", // bad stock
		"AZ-013,100,200,3", // good
	}, "\n")

	report, err := in.Ingest(context.Background(), strings.NewReader(sheet))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 4, report.Skipped)
	assert.Len(t, report.Errors, 4)

	_, err = repo.GetBySKU(context.Background(), "AZ-013")
	assert.NoError(t, err)
}

func TestIngestDecimalComma(t *testing.T) {
	repo := newMemoryRepo()
	in := NewIngestor(repo, zap.NewNop())

	report, err := in.Ingest(context.Background(), strings.NewReader(`AZ-020,"1250,75",1500`))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)

	o, err := repo.GetBySKU(context.Background(), "AZ-020")
	require.NoError(t, err)
	assert.Equal(t, 1250.75, *o.PriceB2B)
}

package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pagedFetcher struct {
	pages   []*Page
	failAt  int
	fetched []int
}

func (f *pagedFetcher) FetchPage(ctx context.Context, q Query) (*Page, error) {
	f.fetched = append(f.fetched, q.Page)
	if f.failAt > 0 && q.Page == f.failAt {
		return nil, errors.New("upstream gone")
	}
	return f.pages[q.Page-1], nil
}

type memMirror struct {
	products map[string]Product
	statuses map[string]StockStatus
}

func newMemMirror() *memMirror {
	return &memMirror{products: map[string]Product{}, statuses: map[string]StockStatus{}}
}

func (m *memMirror) UpsertProducts(ctx context.Context, products []Product) error {
	for _, p := range products {
		if p.SKU == "" {
			continue
		}
		m.products[p.SKU] = p
	}
	return nil
}

func (m *memMirror) GetBySKU(ctx context.Context, sku string) (*MirrorProduct, error) {
	p, ok := m.products[sku]
	if !ok {
		return nil, errors.New("not found")
	}
	return &MirrorProduct{SKU: p.SKU, ExternalID: p.ID, Name: p.Name, Type: p.Type, StockStatus: p.StockStatus}, nil
}

func (m *memMirror) SetStockStatus(ctx context.Context, sku string, status StockStatus) error {
	m.statuses[sku] = status
	return nil
}

func TestSyncAllWalksEveryPage(t *testing.T) {
	fetcher := &pagedFetcher{pages: []*Page{
		{
			Products:   []Product{{ID: 1, SKU: "A"}, {ID: 2, SKU: "B"}},
			Pagination: Pagination{CurrentPage: 1, TotalPages: 2, HasNextPage: true},
		},
		{
			Products:   []Product{{ID: 3, SKU: "C"}},
			Pagination: Pagination{CurrentPage: 2, TotalPages: 2, HasNextPage: false},
		},
	}}
	mirror := newMemMirror()
	cache := newMemPageCache()
	cache.Set(context.Background(), Query{Page: 1, PerPage: 20}, &Page{})

	report, err := NewSyncer(fetcher, mirror, cache, zap.NewNop()).SyncAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Pages)
	assert.Equal(t, 3, report.Products)
	assert.Equal(t, []int{1, 2}, fetcher.fetched)
	assert.Len(t, mirror.products, 3)
	assert.Empty(t, cache.pages, "sync must invalidate the page cache")
}

func TestSyncAllAbortsOnFirstError(t *testing.T) {
	fetcher := &pagedFetcher{
		pages: []*Page{
			{
				Products:   []Product{{ID: 1, SKU: "A"}},
				Pagination: Pagination{CurrentPage: 1, TotalPages: 3, HasNextPage: true},
			},
			nil,
		},
		failAt: 2,
	}
	mirror := newMemMirror()

	report, err := NewSyncer(fetcher, mirror, newMemPageCache(), zap.NewNop()).SyncAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, report.Pages)
	assert.Equal(t, []int{1, 2}, fetcher.fetched)
}

package catalog

import (
	"context"

	"github.com/jmbondo/kitanda-backend/internal/modules/pricing"
	"go.uber.org/zap"
)

// Fetcher fetches raw catalog pages from the external platform.
type Fetcher interface {
	FetchPage(ctx context.Context, q Query) (*Page, error)
}

// Service defines the catalog browse logic.
type Service interface {
	// BrowseProducts returns one catalog page priced for the calling
	// partner. The raw page may come from the cache; the pricing pass
	// always runs fresh for the caller.
	BrowseProducts(ctx context.Context, q Query, partner pricing.PartnerContext) (*PricedPage, error)
}

type service struct {
	fetcher Fetcher
	cache   PageCache
	prices  pricing.Repository
	logger  *zap.Logger
}

// NewService wires the browse pipeline: cache -> fetcher -> pricing.
func NewService(fetcher Fetcher, cache PageCache, prices pricing.Repository, logger *zap.Logger) Service {
	return &service{fetcher: fetcher, cache: cache, prices: prices, logger: logger}
}

func (s *service) BrowseProducts(ctx context.Context, q Query, partner pricing.PartnerContext) (*PricedPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 20
	}

	page, hit := s.cache.Get(ctx, q)
	if !hit {
		fetched, err := s.fetcher.FetchPage(ctx, q)
		if err != nil {
			// Browsing fails open: an unreachable upstream yields an
			// empty page, never a 500. Error pages are not cached.
			s.logger.Error("catalog fetch failed, serving empty page",
				zap.Error(err), zap.Int("page", q.Page), zap.String("search", q.Search))
			return &PricedPage{
				Data:       []PricedProduct{},
				Pagination: Pagination{CurrentPage: q.Page, PerPage: q.PerPage},
			}, nil
		}
		page = fetched
		s.cache.Set(ctx, q, page)
	}

	return s.pricePage(ctx, page, partner)
}

// pricePage resolves every product on a raw page for one caller. The
// overrides are read in one batch; the partner context arrives fresh
// from the database on every request, so a discount change is visible
// immediately with no cache invalidation.
func (s *service) pricePage(ctx context.Context, page *Page, partner pricing.PartnerContext) (*PricedPage, error) {
	skus := make([]string, 0, len(page.Products))
	for _, p := range page.Products {
		if p.SKU != "" {
			skus = append(skus, p.SKU)
		}
	}

	overrides, err := s.prices.GetBySKUs(ctx, skus)
	if err != nil {
		return nil, err
	}

	priced := make([]PricedProduct, 0, len(page.Products))
	for _, p := range page.Products {
		priced = append(priced, PricedProduct{
			Product:       p,
			ResolvedPrice: pricing.Resolve(overrides[p.SKU], partner),
		})
	}
	return &PricedPage{Data: priced, Pagination: page.Pagination}, nil
}

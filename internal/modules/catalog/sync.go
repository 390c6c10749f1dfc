package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// SyncReport summarises one full mirror resync.
type SyncReport struct {
	Pages    int `json:"pages"`
	Products int `json:"products"`
}

// Syncer refreshes the local catalog mirror from the external platform
// and invalidates the page cache wholesale afterwards.
type Syncer struct {
	fetcher Fetcher
	mirror  MirrorRepository
	cache   PageCache
	logger  *zap.Logger
}

func NewSyncer(fetcher Fetcher, mirror MirrorRepository, cache PageCache, logger *zap.Logger) *Syncer {
	return &Syncer{fetcher: fetcher, mirror: mirror, cache: cache, logger: logger}
}

// SyncAll pages through the whole external catalog. Unlike browsing,
// a resync does not fail open: a partial mirror is worse than a stale
// one, so the first upstream error aborts the run.
func (s *Syncer) SyncAll(ctx context.Context) (*SyncReport, error) {
	report := &SyncReport{}
	const perPage = 100

	for page := 1; ; page++ {
		fetched, err := s.fetcher.FetchPage(ctx, Query{Page: page, PerPage: perPage})
		if err != nil {
			return report, fmt.Errorf("syncing catalog page %d: %w", page, err)
		}
		if err := s.mirror.UpsertProducts(ctx, fetched.Products); err != nil {
			return report, fmt.Errorf("persisting catalog page %d: %w", page, err)
		}
		report.Pages++
		report.Products += len(fetched.Products)

		if !fetched.Pagination.HasNextPage {
			break
		}
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.logger.Warn("cache invalidation after sync failed", zap.Error(err))
	}

	s.logger.Info("catalog mirror synced",
		zap.Int("pages", report.Pages), zap.Int("products", report.Products))
	return report, nil
}

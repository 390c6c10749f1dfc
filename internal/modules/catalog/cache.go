package catalog

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PageCache stores raw catalog pages keyed by filters only. The type
// signature is the guard rail: values are pre-pricing Pages, so user,
// tier and discount data cannot leak into the cache.
type PageCache interface {
	Get(ctx context.Context, q Query) (*Page, bool)
	Set(ctx context.Context, q Query, page *Page)
	// InvalidateAll drops every cached page. Called on catalog resync
	// and on stock-sheet upload; there is no partial invalidation.
	InvalidateAll(ctx context.Context) error
}

const cacheKeyPrefix = "catalog:page:"

type redisPageCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisPageCache creates the redis-backed page cache.
func NewRedisPageCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) PageCache {
	return &redisPageCache{rdb: rdb, ttl: ttl, logger: logger}
}

// cacheKey is a pure function of the filter tuple.
func cacheKey(q Query) string {
	raw := fmt.Sprintf("page=%d|per_page=%d|category=%s|search=%s",
		q.Page, q.PerPage, q.CategoryID, q.Search)
	return cacheKeyPrefix + fmt.Sprintf("%x", md5.Sum([]byte(raw)))
}

func (c *redisPageCache) Get(ctx context.Context, q Query) (*Page, bool) {
	data, err := c.rdb.Get(ctx, cacheKey(q)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("catalog cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		c.logger.Warn("catalog cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return &page, true
}

func (c *redisPageCache) Set(ctx context.Context, q Query, page *Page) {
	data, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(q), data, c.ttl).Err(); err != nil {
		c.logger.Warn("catalog cache write failed", zap.Error(err))
	}
}

func (c *redisPageCache) InvalidateAll(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, cacheKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

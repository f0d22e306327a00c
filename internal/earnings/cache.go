package earnings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sarisari/backoffice/pkg/cache"
	"github.com/sarisari/backoffice/pkg/logger"
	"github.com/sarisari/backoffice/pkg/metrics"
	"github.com/sarisari/backoffice/pkg/pagination"
	redisclient "github.com/sarisari/backoffice/pkg/redis"
)

const (
	cacheName      = "gcash_earnings"
	defaultTTL     = 300 * time.Second
	defaultSweepN  = 5
	keyPagePattern = "%s:page=%d:limit=%d"
)

// PageKey selects one cached page; nil means the store's base key.
type PageKey struct {
	Page  int
	Limit int
}

// CacheOptions tunes TTL and invalidation.
type CacheOptions struct {
	TTL time.Duration
	// SweepPages is how many leading pages at DefaultLimit a store-wide
	// invalidation deletes. Pages past it, or cached at other limits, stay
	// until their TTL runs out.
	SweepPages   int
	DefaultLimit int
}

// Cache holds pages of a store's records in Redis. The database stays the
// source of truth; every failure here degrades to a miss.
type Cache struct {
	store        *cache.JSON[ListPage]
	sweepPages   int
	defaultLimit int
}

func NewCache(kv redisclient.KV, opts CacheOptions, m *metrics.CacheMetrics, logg *logger.Logger) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.SweepPages <= 0 {
		opts.SweepPages = defaultSweepN
	}
	if opts.DefaultLimit <= 0 || opts.DefaultLimit > pagination.MaxLimit {
		opts.DefaultLimit = pagination.DefaultLimit
	}
	return &Cache{
		store:        cache.NewJSON[ListPage](kv, cacheName, opts.TTL, m, logg),
		sweepPages:   opts.SweepPages,
		defaultLimit: opts.DefaultLimit,
	}
}

// DefaultLimit is the page size used for requests without a limit and swept
// on invalidation.
func (c *Cache) DefaultLimit() int {
	return c.defaultLimit
}

// Key builds the cache key. Missing page or limit fall back to 1 and the
// default limit so equal queries share a key.
func (c *Cache) Key(storeID uuid.UUID, page *PageKey) string {
	base := redisclient.BuildKey(cacheName, storeID.String())
	if page == nil {
		return base
	}
	p, l := page.Page, page.Limit
	if p < 1 {
		p = pagination.DefaultPage
	}
	if l < 1 {
		l = c.defaultLimit
	}
	return fmt.Sprintf(keyPagePattern, base, p, l)
}

// Get returns the cached page, or false on a miss or an unreadable entry.
func (c *Cache) Get(ctx context.Context, storeID uuid.UUID, page *PageKey) (*ListPage, bool) {
	return c.store.Get(ctx, c.Key(storeID, page))
}

// Set caches value; failures are swallowed.
func (c *Cache) Set(ctx context.Context, storeID uuid.UUID, value *ListPage, page *PageKey) {
	c.store.Set(ctx, c.Key(storeID, page), value)
}

// Invalidate drops the exact key when page is given. Otherwise it drops the
// base key and pages 1..SweepPages at the default limit.
func (c *Cache) Invalidate(ctx context.Context, storeID uuid.UUID, page *PageKey) {
	c.store.Del(ctx, c.InvalidationKeys(storeID, page)...)
}

// InvalidationKeys lists the keys Invalidate deletes.
func (c *Cache) InvalidationKeys(storeID uuid.UUID, page *PageKey) []string {
	if page != nil {
		return []string{c.Key(storeID, page)}
	}
	keys := make([]string, 0, c.sweepPages+1)
	keys = append(keys, c.Key(storeID, nil))
	for p := 1; p <= c.sweepPages; p++ {
		keys = append(keys, c.Key(storeID, &PageKey{Page: p, Limit: c.defaultLimit}))
	}
	return keys
}

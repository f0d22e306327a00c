package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sarisari/backoffice/pkg/logger"
	"github.com/sarisari/backoffice/pkg/metrics"
	redisclient "github.com/sarisari/backoffice/pkg/redis"
)

// JSON is a best-effort read-through cache of T values encoded as JSON.
// Every failure is logged, counted and reported as a miss; callers never
// see a cache error.
type JSON[T any] struct {
	kv      redisclient.KV
	name    string
	ttl     time.Duration
	metrics *metrics.CacheMetrics
	logg    *logger.Logger
}

func NewJSON[T any](kv redisclient.KV, name string, ttl time.Duration, m *metrics.CacheMetrics, logg *logger.Logger) *JSON[T] {
	if logg == nil {
		logg = logger.Nop()
	}
	return &JSON[T]{kv: kv, name: name, ttl: ttl, metrics: m, logg: logg}
}

// Name labels metrics and logs for this cache.
func (c *JSON[T]) Name() string {
	return c.name
}

// Get returns the cached value, or false on a miss, a redis failure or a
// payload that does not decode.
func (c *JSON[T]) Get(ctx context.Context, key string) (*T, bool) {
	if c == nil || c.kv == nil {
		return nil, false
	}
	raw, err := c.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redisclient.Nil) {
			c.fail(ctx, "get", key, err)
		}
		c.metrics.Miss(c.name)
		return nil, false
	}

	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		c.fail(ctx, "decode", key, err)
		c.metrics.Miss(c.name)
		return nil, false
	}
	c.metrics.Hit(c.name)
	return &value, true
}

// Set stores value under key with the cache TTL.
func (c *JSON[T]) Set(ctx context.Context, key string, value *T) {
	if c == nil || c.kv == nil || value == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		c.fail(ctx, "encode", key, err)
		return
	}
	if err := c.kv.Set(ctx, key, string(payload), c.ttl); err != nil {
		c.fail(ctx, "set", key, err)
	}
}

// Del removes keys in one round trip.
func (c *JSON[T]) Del(ctx context.Context, keys ...string) {
	if c == nil || c.kv == nil || len(keys) == 0 {
		return
	}
	if err := c.kv.Del(ctx, keys...); err != nil {
		c.fail(ctx, "del", keys[0], err)
	}
}

func (c *JSON[T]) fail(ctx context.Context, op, key string, err error) {
	c.metrics.Error(c.name, op)
	ctx = c.logg.WithFields(ctx, map[string]any{
		"cache":     c.name,
		"cache_op":  op,
		"cache_key": key,
		"error":     err.Error(),
	})
	c.logg.Warn(ctx, "cache operation failed")
}

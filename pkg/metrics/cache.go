package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CacheMetrics counts read-through cache outcomes per named cache.
type CacheMetrics struct {
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
	errors *prometheus.CounterVec
}

// NewCacheMetrics registers the cache counters on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	if reg == nil {
		return &CacheMetrics{}
	}
	hits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_hit_total",
		Help: "Cache lookups served from redis.",
	}, []string{"cache"})
	misses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_miss_total",
		Help: "Cache lookups that fell through to the database.",
	}, []string{"cache"})
	errs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_error_total",
		Help: "Cache operations that failed and were swallowed.",
	}, []string{"cache", "op"})
	reg.MustRegister(hits, misses, errs)
	return &CacheMetrics{hits: hits, misses: misses, errors: errs}
}

func (c *CacheMetrics) Hit(cache string) {
	if c == nil || c.hits == nil {
		return
	}
	c.hits.WithLabelValues(normalizeLabel(cache)).Inc()
}

func (c *CacheMetrics) Miss(cache string) {
	if c == nil || c.misses == nil {
		return
	}
	c.misses.WithLabelValues(normalizeLabel(cache)).Inc()
}

// Error records a failed get/set/invalidate.
func (c *CacheMetrics) Error(cache, op string) {
	if c == nil || c.errors == nil {
		return
	}
	c.errors.WithLabelValues(normalizeLabel(cache), normalizeLabel(op)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

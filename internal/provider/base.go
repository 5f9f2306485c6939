package provider

import (
	"context"
	"strings"
	"time"

	"github.com/seenimoa/findata/internal/infra"
	"github.com/seenimoa/findata/internal/logger"
)

// Base gives concrete providers a payload cache, a rate limiter and a
// component logger. Embed it and route every upstream call through Fetch.
type Base struct {
	info    ProviderInfo
	cache   *infra.Cache[[]byte]
	limiter *infra.RateLimiter
	log     *logger.Entry
}

// NewBase creates a base with a 5 minute cache and 10 requests per second.
func NewBase(info ProviderInfo) Base {
	return NewBaseWithOpts(info, 5*time.Minute, 10, time.Second)
}

// NewBaseWithOpts creates a base with custom cache TTL and rate limit.
func NewBaseWithOpts(info ProviderInfo, cacheTTL time.Duration, rateLimit int, rateWindow time.Duration) Base {
	return Base{
		info:    info,
		cache:   infra.NewCache[[]byte](cacheTTL),
		limiter: infra.NewRateLimiter(rateLimit, rateWindow),
		log:     logger.L().WithComponent("provider." + info.Name),
	}
}

func (b *Base) Info() ProviderInfo { return b.info }

// Ping succeeds by default. Override in concrete providers.
func (b *Base) Ping(ctx context.Context) error { return nil }

// Log returns the provider's logger.
func (b *Base) Log() *logger.Entry { return b.log }

// CacheGet retrieves a payload from the cache.
func (b *Base) CacheGet(key string) ([]byte, bool) {
	return b.cache.Get(key)
}

// CacheSet stores a payload under the default TTL.
func (b *Base) CacheSet(key string, value []byte) {
	b.cache.Set(key, value)
}

// CacheSetTTL stores a payload with a custom TTL.
func (b *Base) CacheSetTTL(key string, value []byte, ttl time.Duration) {
	b.cache.SetWithTTL(key, value, ttl)
}

// RateLimit waits until a request slot is available.
func (b *Base) RateLimit(ctx context.Context) error {
	return b.limiter.Wait(ctx)
}

// Fetch returns the cached payload for key, or waits for a rate-limit slot,
// calls fn and caches its result. Errors are never cached.
func (b *Base) Fetch(ctx context.Context, key string, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	if data, ok := b.cache.Get(key); ok {
		b.log.WithField("key", key).Trace("cache hit")
		return data, nil
	}
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	data, err := fn(ctx)
	if err != nil {
		b.log.WithError(err).WithField("key", key).Debug("fetch failed")
		return nil, err
	}
	b.log.WithFields(logger.Fields{"key": key, "bytes": len(data)}).Timed("fetch", start)
	b.cache.Set(key, data)
	return data, nil
}

// CacheKey joins parts into a cache key.
func CacheKey(parts ...string) string {
	return strings.Join(parts, ":")
}

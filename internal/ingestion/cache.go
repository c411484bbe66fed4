package ingestion

import (
	"context"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"airmarket/pkg/contracts/domain"
)

// CachedProvider memoizes a provider's successful results for a TTL so that
// repeated interactions reuse one fetch cycle instead of calling the
// upstream APIs again.
type CachedProvider struct {
	next   Provider
	cache  *cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedProvider wraps next with a TTL cache
func NewCachedProvider(next Provider, ttl time.Duration, logger *slog.Logger) *CachedProvider {
	return &CachedProvider{
		next:   next,
		cache:  cache.New(ttl, 2*ttl),
		ttl:    ttl,
		logger: logger.With(slog.String("component", "provider_cache")),
	}
}

// Name implements Provider
func (c *CachedProvider) Name() string {
	return c.next.Name()
}

// FetchFlights implements Provider. Errors and empty results are not cached.
func (c *CachedProvider) FetchFlights(ctx context.Context) ([]domain.RawRecord, error) {
	key := c.cacheKey()
	if cached, found := c.cache.Get(key); found {
		c.logger.DebugContext(ctx, "serving flights from cache", slog.String("provider", c.next.Name()))
		return cloneRaw(cached.([]domain.RawRecord)), nil
	}

	records, err := c.next.FetchFlights(ctx)
	if err != nil || len(records) == 0 {
		return records, err
	}

	c.cache.Set(key, cloneRaw(records), c.ttl)
	return records, nil
}

// Invalidate drops the cached result so the next fetch hits the provider
func (c *CachedProvider) Invalidate() {
	c.cache.Delete(c.cacheKey())
}

func (c *CachedProvider) cacheKey() string {
	return "flights:" + c.next.Name()
}

// cloneRaw copies the slice and field maps so callers cannot alter cached data
func cloneRaw(in []domain.RawRecord) []domain.RawRecord {
	out := make([]domain.RawRecord, len(in))
	for i, r := range in {
		fields := make(map[string]interface{}, len(r.Fields))
		for k, v := range r.Fields {
			fields[k] = v
		}
		out[i] = domain.RawRecord{Source: r.Source, Fields: fields}
	}
	return out
}

package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"medisearch-backend/lib/textutil"
)

// CachedLocator memoizes positive answers for a short window, since
// callers tend to re-check the same (product, commune) pair in quick
// succession. Errors are not cached.
type CachedLocator struct {
	inner Locator
	cache *expirable.LRU[string, []Record]
}

func NewCachedLocator(inner Locator, ttl time.Duration) *CachedLocator {
	return &CachedLocator{
		inner: inner,
		cache: expirable.NewLRU[string, []Record](2048, nil, ttl),
	}
}

func cacheKey(ref ProductRef, commune string) string {
	return fmt.Sprintf("%s|%s|%s|%s", ref.Source, ref.LocalID, ref.URL, textutil.NormalizeCompact(commune))
}

func (c *CachedLocator) Locate(ctx context.Context, ref ProductRef, commune string) ([]Record, error) {
	key := cacheKey(ref, commune)
	if cached, hit := c.cache.Get(key); hit {
		return cached, nil
	}

	records, err := c.inner.Locate(ctx, ref, commune)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, records)
	return records, nil
}

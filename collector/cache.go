package collector

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"investment-research/cleaner"
)

// CachedCollector decorates a Source with a TTL and size-bounded LRU cache
// keyed by ticker. Errors are never cached.
type CachedCollector struct {
	next  Source
	items *expirable.LRU[string, *cleaner.RawDataset]
}

// NewCachedCollector keeps up to size datasets for ttl each. A non-positive
// ttl or size disables caching.
func NewCachedCollector(next Source, ttl time.Duration, size int) *CachedCollector {
	c := &CachedCollector{next: next}
	if ttl > 0 && size > 0 {
		c.items = expirable.NewLRU[string, *cleaner.RawDataset](size, nil, ttl)
	}
	return c
}

func (c *CachedCollector) Collect(ctx context.Context, ticker string) (*cleaner.RawDataset, error) {
	if c.items == nil {
		return c.next.Collect(ctx, ticker)
	}
	k := normalizeTicker(ticker)
	if raw, ok := c.items.Get(k); ok {
		return raw, nil
	}

	raw, err := c.next.Collect(ctx, ticker)
	if err != nil {
		return nil, err
	}
	c.items.Add(k, raw)
	return raw, nil
}

// Len reports the number of cached tickers.
func (c *CachedCollector) Len() int {
	if c.items == nil {
		return 0
	}
	return c.items.Len()
}

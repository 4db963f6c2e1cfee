package classification

import (
	"context"
	"strings"
	"time"

	"triage_server/core/domain"
	"triage_server/pkg/cache"
)

// CacheKeyPrefix namespaces classification entries in the shared Redis.
const CacheKeyPrefix = "triage:classify:"

// CacheKey folds messages that differ only in case or outer whitespace.
func CacheKey(message string) string {
	return strings.ToLower(strings.TrimSpace(message))
}

// TieredClassificationCache stores classifications in the L1/L2 cache. It implements out.ClassificationCache.
type TieredClassificationCache struct {
	tiers *cache.TieredCache
}

func NewTieredClassificationCache(tiers *cache.TieredCache) *TieredClassificationCache {
	return &TieredClassificationCache{tiers: tiers}
}

func (c *TieredClassificationCache) Get(ctx context.Context, key string) (*domain.Classification, bool, error) {
	var out domain.Classification
	found, err := c.tiers.GetJSON(ctx, key, &out)
	if err != nil || !found {
		return nil, false, err
	}
	return &out, true, nil
}

func (c *TieredClassificationCache) Set(ctx context.Context, key string, v *domain.Classification, ttl time.Duration) error {
	return c.tiers.SetJSON(ctx, key, v, ttl)
}

func (c *TieredClassificationCache) Delete(ctx context.Context, key string) error {
	return c.tiers.Delete(ctx, key)
}

// Stats returns the memory layer statistics.
func (c *TieredClassificationCache) Stats() cache.L1Stats {
	return c.tiers.L1Stats()
}

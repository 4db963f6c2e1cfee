package cache

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

// =============================================================================
// L1+L2 Tiered Cache
// =============================================================================

// TieredCache checks memory first, then Redis, and writes L2 hits back to L1.
// A nil L2 makes it a plain memory cache.
type TieredCache struct {
	l1 *L1Cache
	l2 *RedisCache
}

// NewTieredCache combines the two layers. l1 is required.
func NewTieredCache(l1 *L1Cache, l2 *RedisCache) *TieredCache {
	return &TieredCache{l1: l1, l2: l2}
}

// GetJSON decodes a hit into dest. L2 errors are returned with found=false.
func (c *TieredCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if data, ok := c.l1.Get(key); ok {
		if err := json.Unmarshal(data, dest); err == nil {
			return true, nil
		}
		c.l1.Delete(key)
	}
	if c.l2 == nil {
		return false, nil
	}

	found, err := c.l2.GetJSON(ctx, key, dest)
	if err != nil || !found {
		return false, err
	}
	if data, err := json.Marshal(dest); err == nil {
		c.l1.Set(key, data)
	}
	return true, nil
}

// SetJSON writes both layers. The L1 write always happens.
func (c *TieredCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.l1.SetWithTTL(key, data, ttl)
	if c.l2 == nil {
		return nil
	}
	return c.l2.SetJSON(ctx, key, value, ttl)
}

// Delete removes key from both layers.
func (c *TieredCache) Delete(ctx context.Context, key string) error {
	c.l1.Delete(key)
	if c.l2 == nil {
		return nil
	}
	return c.l2.Delete(ctx, key)
}

// L1Stats returns the memory layer statistics.
func (c *TieredCache) L1Stats() L1Stats {
	return c.l1.Stats()
}

// Close stops the memory layer sweeper.
func (c *TieredCache) Close() {
	c.l1.Close()
}

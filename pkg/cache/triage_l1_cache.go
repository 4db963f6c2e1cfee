// Package cache provides the in-memory L1 cache and the Redis L2 cache.
package cache

import (
	"sync"
	"time"
)

// =============================================================================
// L1 Cache - In-Memory with O(1) LRU Eviction (Doubly Linked List)
// =============================================================================

// lruNode is one key in the recency list.
type lruNode struct {
	key  string
	prev *lruNode
	next *lruNode
}

type l1Entry struct {
	value     []byte
	expiresAt time.Time
	node      *lruNode
}

// L1Config configures the L1 cache.
type L1Config struct {
	MaxItems        int           // Maximum number of items (default 1000)
	DefaultTTL      time.Duration // Default TTL (default 10 minutes)
	CleanupInterval time.Duration // Expired entry sweep (default 1 minute, <0 disables)
}

// DefaultL1Config returns the classification cache defaults.
func DefaultL1Config() L1Config {
	return L1Config{
		MaxItems:        1000,
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: time.Minute,
	}
}

// L1Cache is an in-memory TTL cache with least-recently-used eviction.
// Values are copied on the way in and out.
type L1Cache struct {
	mu         sync.Mutex
	data       map[string]*l1Entry
	maxItems   int
	defaultTTL time.Duration

	// dummy head (most recent) and tail (least recent)
	head *lruNode
	tail *lruNode

	hits   int64
	misses int64

	now  func() time.Time
	stop chan struct{}
	once sync.Once
}

// NewL1Cache creates a cache and starts its sweep goroutine. Call Close to stop it.
func NewL1Cache(cfg L1Config) *L1Cache {
	def := DefaultL1Config()
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = def.MaxItems
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = def.DefaultTTL
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}

	head, tail := &lruNode{}, &lruNode{}
	head.next = tail
	tail.prev = head

	c := &L1Cache{
		data:       make(map[string]*l1Entry),
		maxItems:   cfg.MaxItems,
		defaultTTL: cfg.DefaultTTL,
		head:       head,
		tail:       tail,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		go c.cleanupLoop(cfg.CleanupInterval)
	}
	return c
}

// Get returns a copy of the stored value. Expired entries count as misses.
func (c *L1Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.data[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.remove(key, entry)
		c.misses++
		return nil, false
	}
	c.hits++
	c.moveToFront(entry.node)
	return append([]byte(nil), entry.value...), true
}

// Set stores value with the default TTL.
func (c *L1Cache) Set(key string, value []byte) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores value with a specific TTL.
func (c *L1Cache) SetWithTTL(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(ttl)
	val := append([]byte(nil), value...)
	if entry, ok := c.data[key]; ok {
		entry.value = val
		entry.expiresAt = expires
		c.moveToFront(entry.node)
		return
	}
	if len(c.data) >= c.maxItems {
		c.evictLRU()
	}
	node := &lruNode{key: key}
	c.addToFront(node)
	c.data[key] = &l1Entry{value: val, expiresAt: expires, node: node}
}

// Delete removes a key.
func (c *L1Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.data[key]; ok {
		c.remove(key, entry)
	}
}

// Clear removes all entries.
func (c *L1Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*l1Entry)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// Len returns the number of stored entries, expired or not.
func (c *L1Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Close stops the sweep goroutine.
func (c *L1Cache) Close() {
	c.once.Do(func() { close(c.stop) })
}

// L1Stats contains cache statistics.
type L1Stats struct {
	Items      int           `json:"items"`
	Hits       int64         `json:"hits"`
	Misses     int64         `json:"misses"`
	HitRate    float64       `json:"hit_rate"`
	MaxItems   int           `json:"max_items"`
	DefaultTTL time.Duration `json:"default_ttl"`
}

// Stats returns cache statistics.
func (c *L1Cache) Stats() L1Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	hitRate := float64(0)
	if total := c.hits + c.misses; total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}
	return L1Stats{
		Items:      len(c.data),
		Hits:       c.hits,
		Misses:     c.misses,
		HitRate:    hitRate,
		MaxItems:   c.maxItems,
		DefaultTTL: c.defaultTTL,
	}
}

// =============================================================================
// Internal Methods - callers hold c.mu
// =============================================================================

func (c *L1Cache) addToFront(node *lruNode) {
	node.next = c.head.next
	node.prev = c.head
	c.head.next.prev = node
	c.head.next = node
}

func (c *L1Cache) unlink(node *lruNode) {
	node.prev.next = node.next
	node.next.prev = node.prev
}

func (c *L1Cache) moveToFront(node *lruNode) {
	c.unlink(node)
	c.addToFront(node)
}

func (c *L1Cache) remove(key string, entry *l1Entry) {
	c.unlink(entry.node)
	delete(c.data, key)
}

func (c *L1Cache) evictLRU() {
	lru := c.tail.prev
	if lru == c.head {
		return
	}
	c.unlink(lru)
	delete(c.data, lru.key)
}

func (c *L1Cache) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.cleanupExpired()
		}
	}
}

func (c *L1Cache) cleanupExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.data {
		if now.After(entry.expiresAt) {
			c.remove(key, entry)
		}
	}
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"sync"
	"time"
)

type memoryItem struct {
	value     []byte
	expiresAt time.Time
	hits      int
}

func (i memoryItem) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && now.After(i.expiresAt)
}

// MemoryCache is an in-process CacheService. Values are stored JSON encoded
// so callers get the same copy semantics as with Redis.
type MemoryCache struct {
	mu     sync.RWMutex
	items  map[string]memoryItem
	hits   int
	misses int
	now    func() time.Time
	logger *slog.Logger
}

func NewMemoryCache(logger *slog.Logger) *MemoryCache {
	return &MemoryCache{
		items:  make(map[string]memoryItem),
		now:    time.Now,
		logger: logger,
	}
}

func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value for %s: %w", key, err)
	}

	item := memoryItem{value: data}
	if ttl > 0 {
		item.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.items[key] = item
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	item, exists := c.items[key]
	if exists && item.expired(c.now()) {
		delete(c.items, key)
		exists = false
	}
	if !exists {
		c.misses++
		c.mu.Unlock()
		return ErrCacheMiss
	}
	c.hits++
	item.hits++
	c.items[key] = item
	c.mu.Unlock()

	if err := json.Unmarshal(item.value, dest); err != nil {
		c.logger.Warn("Discarding undecodable cache entry", "key", key, "error", err)
		c.Delete(ctx, key)
		return ErrCacheMiss
	}
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

// DeletePattern removes keys matching a glob pattern with Redis-like '*' and
// '?' wildcards.
func (c *MemoryCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	deleted := 0
	for key := range c.items {
		matched, err := path.Match(pattern, key)
		if err != nil {
			return fmt.Errorf("invalid cache pattern %s: %w", pattern, err)
		}
		if matched {
			delete(c.items, key)
			deleted++
		}
	}
	c.logger.Debug("Deleted cache keys", "pattern", pattern, "count", deleted)
	return nil
}

// Size counts stored entries, expired ones included until they are read.
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// HitRate is the share of Get calls served from the cache.
func (c *MemoryCache) HitRate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.hits+c.misses > 0 {
		return float64(c.hits) / float64(c.hits+c.misses)
	}
	return 0.0
}

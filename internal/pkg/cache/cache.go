package cache

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache stores JSON-encoded values under string keys with a TTL.
// Get reports false when the key is missing or expired.
type Cache interface {
	Get(ctx context.Context, key string, target interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// MemoryCache is a process-local Cache on go-cache. Values are stored JSON-encoded so
// readers never share memory with writers, and expired items are swept every cleanupInterval.
type MemoryCache struct {
	items *gocache.Cache
}

const cleanupInterval = time.Minute

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (c *MemoryCache) Get(_ context.Context, key string, target interface{}) (bool, error) {
	v, ok := c.items.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(v.([]byte), target); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores value for ttl. A non-positive ttl removes the key.
func (c *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		c.items.Delete(key)
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.items.Set(key, data, ttl)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.items.Delete(key)
	return nil
}

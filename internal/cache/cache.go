// Package cache provides the TTL cache used by the ingestion fetcher to avoid
// re-requesting feed payloads within a run window.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is the interface the fetcher depends on.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
}

// Key generates a stable cache key from a request URL.
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "claimscope:v1:" + hex.EncodeToString(hash[:])
}

// Memory is an in-memory TTL cache.
type Memory struct {
	cache *gocache.Cache
}

// NewMemory creates a memory cache with the given default TTL and cleanup
// interval.
func NewMemory(defaultTTL, cleanupInterval time.Duration) *Memory {
	return &Memory{cache: gocache.New(defaultTTL, cleanupInterval)}
}

// Get retrieves a cached payload.
func (c *Memory) Get(key string) ([]byte, bool) {
	if val, found := c.cache.Get(key); found {
		return val.([]byte), true
	}
	return nil, false
}

// Set stores a payload with the given TTL.
func (c *Memory) Set(key string, value []byte, ttl time.Duration) {
	c.cache.Set(key, value, ttl)
}

package recommendation

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/CropCycle_Go/internal/domain"
)

// Entry is the last generation result stored for a client
type Entry struct {
	Version   string                  `json:"version"`
	Options   domain.GenerateOptions  `json:"options"`
	Result    domain.GenerationResult `json:"result"`
	ExpiresAt time.Time               `json:"expires_at"`
}

// Cache stores one Entry per client. Expired entries read as misses.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, clientID string) (*Entry, bool)
	Put(ctx context.Context, clientID string, entry *Entry, ttl time.Duration) error
	Invalidate(ctx context.Context, clientID string) error
}

// MemoryCache is an in-process Cache over an expirable LRU.
// The LRU's own TTL is an upper bound; per-entry expiry is checked on read.
type MemoryCache struct {
	lru *expirable.LRU[string, *Entry]
	now func() time.Time
}

// NewMemoryCache creates a cache holding at most size clients for at most maxTTL each
func NewMemoryCache(size int, maxTTL time.Duration) *MemoryCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if maxTTL <= 0 {
		maxTTL = DefaultCacheTTL
	}
	return &MemoryCache{
		lru: expirable.NewLRU[string, *Entry](size, nil, maxTTL),
		now: time.Now,
	}
}

// Get returns the client's entry unless it is missing, expired or from an older schema
func (c *MemoryCache) Get(_ context.Context, clientID string) (*Entry, bool) {
	entry, ok := c.lru.Get(clientID)
	if !ok {
		return nil, false
	}
	if entry.Version != CacheSchemaVersion || !c.now().Before(entry.ExpiresAt) {
		c.lru.Remove(clientID)
		return nil, false
	}
	return entry, true
}

// Put stores an entry for ttl
func (c *MemoryCache) Put(_ context.Context, clientID string, entry *Entry, ttl time.Duration) error {
	stored := *entry
	stored.Version = CacheSchemaVersion
	stored.ExpiresAt = c.now().Add(ttl)
	c.lru.Add(clientID, &stored)
	return nil
}

// Invalidate drops the client's entry
func (c *MemoryCache) Invalidate(_ context.Context, clientID string) error {
	c.lru.Remove(clientID)
	return nil
}

// Len returns the number of cached clients, expired entries included until they are read or evicted
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

package recommendation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/osse101/CropCycle_Go/internal/logger"
)

// RedisCache shares entries across instances. Redis enforces the TTL; read errors count as misses.
type RedisCache struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRedisCache creates a cache over an existing client
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client, now: time.Now}
}

// NewRedisClient connects to addr and checks the connection
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func redisKey(clientID string) string {
	return redisKeyPrefix + clientID
}

// Get returns the client's entry unless it is missing, expired or undecodable
func (c *RedisCache) Get(ctx context.Context, clientID string) (*Entry, bool) {
	raw, err := c.client.Get(ctx, redisKey(clientID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.FromContext(ctx).Warn(LogMsgCacheReadFailed, "clientID", clientID, "error", err)
		}
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		logger.FromContext(ctx).Warn(LogMsgCacheReadFailed, "clientID", clientID, "error", err)
		return nil, false
	}
	if entry.Version != CacheSchemaVersion || !c.now().Before(entry.ExpiresAt) {
		return nil, false
	}
	return &entry, true
}

// Put stores an entry for ttl
func (c *RedisCache) Put(ctx context.Context, clientID string, entry *Entry, ttl time.Duration) error {
	stored := *entry
	stored.Version = CacheSchemaVersion
	stored.ExpiresAt = c.now().Add(ttl)
	raw, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := c.client.Set(ctx, redisKey(clientID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Invalidate drops the client's entry
func (c *RedisCache) Invalidate(ctx context.Context, clientID string) error {
	if err := c.client.Del(ctx, redisKey(clientID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

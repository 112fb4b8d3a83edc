package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"metacore/domain"
)

// Cache is a read-through cache for domain.Record, keyed by test_id:
// generic get/set/delete plus a health check. A record either is the
// current persisted state or it doesn't exist — there's no
// point-in-time history to query.
type Cache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewCache builds a Cache against a Redis instance at addr.
func NewCache(addr, password string, db int, ttl time.Duration) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:            addr,
		Password:        password,
		DB:              db,
		PoolSize:        10,
		MinIdleConns:    2,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
		MaxRetries:      3,
		MinRetryBackoff: 100 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,
	})
	return &Cache{client: client, keyPrefix: "metacore:record:", ttl: ttl}
}

// NewCacheFromClient wraps an already-constructed redis.Client, for
// tests that inject a redismock client in place of a live Redis instance.
func NewCacheFromClient(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, keyPrefix: "metacore:record:", ttl: ttl}
}

// Get returns the cached record for testID, if present and unexpired.
func (c *Cache) Get(ctx context.Context, testID string) (domain.Record, bool) {
	raw, err := c.client.Get(ctx, c.keyPrefix+testID).Result()
	if err != nil {
		return domain.Record{}, false
	}
	var rec domain.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return domain.Record{}, false
	}
	return rec, true
}

// Set stores rec under testID with the cache's configured TTL.
func (c *Cache) Set(ctx context.Context, testID string, rec domain.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", testID, err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+testID, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", testID, err)
	}
	return nil
}

// Delete evicts testID from the cache.
func (c *Cache) Delete(ctx context.Context, testID string) error {
	return c.client.Del(ctx, c.keyPrefix+testID).Err()
}

// Health pings the Redis connection.
func (c *Cache) Health(ctx context.Context) bool {
	pong, err := c.client.Ping(ctx).Result()
	return err == nil && pong == "PONG"
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

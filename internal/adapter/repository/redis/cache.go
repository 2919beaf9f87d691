package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/pocketledger/internal/usecase"
)

// Cache implements usecase.Cache using Redis. Keys are namespaced per ledger so
// several ledgers can share one Redis database.
type Cache struct {
	client redis.Cmdable
	prefix string
}

// NewCache creates a new Cache for the given ledger.
func NewCache(client redis.Cmdable, ledgerID string) *Cache {
	return &Cache{
		client: client,
		prefix: "pocketledger:" + ledgerID + ":cache:",
	}
}

// Get returns the cached bytes or usecase.ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, usecase.ErrCacheMiss
	}
	return b, err
}

// Set stores value with a TTL. A zero TTL keeps the key until it is evicted.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is absent; callers fall through to
// the database.
var ErrCacheMiss = errors.New("cache miss")

// PageCache stores rendered list pages and invalidates them by key prefix
// after a mutation. A nil-safe no-op implementation stands in when Redis is
// not configured.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

type redisPageCache struct {
	client *redis.Client
}

// NewRedis builds a PageCache over the given Redis address and verifies the
// connection.
func NewRedis(ctx context.Context, addr string) (PageCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return &redisPageCache{client: client}, nil
}

func (c *redisPageCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache key %s: %w", key, err)
	}
	return val, nil
}

func (c *redisPageCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *redisPageCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("deleting cache key %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scanning cache prefix %s: %w", prefix, err)
	}
	return nil
}

type noopCache struct{}

// NewNoop returns a PageCache that caches nothing.
func NewNoop() PageCache {
	return noopCache{}
}

func (noopCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, ErrCacheMiss
}

func (noopCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (noopCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	return nil
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spboyer/loadout/internal/models"
)

// DefaultRedisPrefix namespaces loadout keys in a shared Redis.
const DefaultRedisPrefix = "loadout:solution:"

// RedisCache stores solutions in Redis with an optional TTL.
type RedisCache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedis wraps a Redis client. A zero ttl keeps entries until cleared.
func NewRedis(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: DefaultRedisPrefix, ttl: ttl}
}

// Get retrieves a cached solution. Connection errors are logged and treated
// as a miss so a flaky cache never fails a solve.
func (r *RedisCache) Get(ctx context.Context, key string) (*models.Solution, bool) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("redis cache get failed", "key", key, "error", err)
		}
		return nil, false
	}

	var sol models.Solution
	if err := json.Unmarshal(data, &sol); err != nil {
		return nil, false
	}
	return &sol, true
}

// Put stores a solution.
func (r *RedisCache) Put(ctx context.Context, key string, sol *models.Solution) error {
	if !Cacheable(sol) {
		return nil
	}
	data, err := json.Marshal(sol)
	if err != nil {
		return fmt.Errorf("marshaling solution: %w", err)
	}
	if err := r.client.Set(ctx, r.prefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Clear deletes every key under the cache prefix. Other keys in the same
// database are left alone.
func (r *RedisCache) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(batch) > 0 {
		if err := r.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
	}
	return nil
}

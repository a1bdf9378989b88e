package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisAdapter implements ports.CachePort over a go-redis client.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) Get(key string) ([]byte, error) {
	return r.client.Get(context.Background(), key).Bytes()
}

func (r *RedisAdapter) Set(key string, value []byte, ttl time.Duration) error {
	return r.client.Set(context.Background(), key, value, ttl).Err()
}

func (r *RedisAdapter) Delete(key string) error {
	return r.client.Del(context.Background(), key).Err()
}

// DeleteByPrefix drops every key under the prefix via SCAN, so a bulk
// invalidation never blocks the server the way KEYS would.
func (r *RedisAdapter) DeleteByPrefix(prefix string) error {
	ctx := context.Background()
	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

package cache

import (
	"context"
	"fmt"
	"time"

	"obetrack/internal/config"
	interfaces "obetrack/internal/interfaces/infrastructure"

	"github.com/go-redis/redis/v8"
)

var _ interfaces.ReportCache = (*RedisCache)(nil)

// RedisCache backs the attainment report read-through cache.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr, password string, db int) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisCache{
		client: rdb,
	}
}

func NewRedisCacheWithConfig(cfg *config.CacheConfig) *RedisCache {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	return NewRedisCache(addr, cfg.Password, cfg.DB)
}

func (r *RedisCache) GetClient() *redis.Client {
	return r.client
}

// Get returns the cached payload, or (nil, nil) on a miss.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s from cache: %w", key, err)
	}
	return val, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s in cache: %w", key, err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}
	return nil
}

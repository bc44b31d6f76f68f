package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// RedisCache is a JSON value cache. With no REDIS_ADDR it caches nothing.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(lc fx.Lifecycle, cfg *Config, log *zap.Logger) *RedisCache {
	if cfg.RedisAddr == "" {
		log.Info("redis cache disabled, REDIS_ADDR not set")
		return &RedisCache{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// the cache is optional; keep serving if redis is down
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("redis unreachable, continuing without cache", zap.Error(err))
				return nil
			}
			log.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return &RedisCache{client: client}
}

// Get decodes the cached value for key into dest. It reports false on a miss.
func (r *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if r.client == nil {
		return false, nil
	}
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decoding cached %s: %w", key, err)
	}
	return true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s for cache: %w", key, err)
	}
	if err := r.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

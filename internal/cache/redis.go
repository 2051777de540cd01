package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/conradkoh/goals-sub001/internal/config"
)

var Client *redis.Client

// Init connects the redis client used for read-path response caching.
// Returns false when no redis host is configured; caching is optional.
func Init(cfg *config.Config, logger *zap.Logger) bool {
	if cfg.RedisHost == "" {
		return false
	}
	Client = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
	if err := Client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("redis unavailable, caching disabled", zap.Error(err))
		Client = nil
		return false
	}
	return true
}

// GetJSON loads a cached value into out. A miss or an unavailable client
// returns false; cache errors are never fatal.
func GetJSON(ctx context.Context, key string, out interface{}) bool {
	if Client == nil {
		return false
	}
	raw, err := Client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// SetJSON stores a value with a TTL, best-effort.
func SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if Client == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	Client.Set(ctx, key, raw, ttl)
}

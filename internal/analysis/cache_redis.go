package analysis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"zipduck-backend/internal/shared/telemetry"
)

const cacheKeyPrefix = "doc:analysis:"

// RedisCache is the production ResultCache. Every failure degrades to a
// cache miss; Redis being down slows analyses, it never fails them.
type RedisCache struct {
	Client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{Client: client}
}

func (c *RedisCache) Get(ctx context.Context, fingerprint string) (CachedResult, bool) {
	payload, err := c.Client.Get(ctx, cacheKeyPrefix+fingerprint).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			telemetry.Error("cache.get_failed", map[string]any{"error": err.Error()})
		}
		return CachedResult{}, false
	}

	var result CachedResult
	if err := json.Unmarshal(payload, &result); err != nil {
		telemetry.Error("cache.unmarshal_failed", map[string]any{"error": err.Error()})
		return CachedResult{}, false
	}
	return result, true
}

func (c *RedisCache) Put(ctx context.Context, fingerprint string, result CachedResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		telemetry.Error("cache.marshal_failed", map[string]any{"error": err.Error()})
		return
	}
	if err := c.Client.Set(ctx, cacheKeyPrefix+fingerprint, payload, CacheTTL).Err(); err != nil {
		telemetry.Error("cache.put_failed", map[string]any{"error": err.Error()})
	}
}

func (c *RedisCache) Touch(ctx context.Context, fingerprint string) {
	if err := c.Client.Expire(ctx, cacheKeyPrefix+fingerprint, CacheTTL).Err(); err != nil {
		telemetry.Error("cache.touch_failed", map[string]any{"error": err.Error()})
	}
}

var _ ResultCache = (*RedisCache)(nil)

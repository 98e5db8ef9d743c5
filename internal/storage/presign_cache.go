package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	platformredis "annexops/internal/platform/redis"
)

const presignKeyPrefix = "annexops:presign:"

// PresignCache memoizes presigned URLs in Redis so repeated download requests
// for the same bundle do not re-sign. Cache entries expire ahead of the URL
// itself so a cached URL is always still valid when served.
type PresignCache struct {
	inner ObjectStore
	redis *platformredis.Client
}

// NewPresignCache wraps inner with a Redis cache. A nil client disables
// caching and passes every call through.
func NewPresignCache(inner ObjectStore, client *platformredis.Client) *PresignCache {
	return &PresignCache{inner: inner, redis: client}
}

func (c *PresignCache) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return c.inner.Put(ctx, key, data, contentType)
}

func (c *PresignCache) PresignedGet(ctx context.Context, uri string, ttl time.Duration) (string, error) {
	if c.redis == nil {
		return c.inner.PresignedGet(ctx, uri, ttl)
	}

	cacheKey := presignKeyPrefix + uri
	cached, err := c.redis.Get(ctx, cacheKey).Result()
	if err == nil && cached != "" {
		return cached, nil
	}
	if err != nil && err != redis.Nil {
		// Cache trouble must not break downloads; fall through to signing.
		return c.inner.PresignedGet(ctx, uri, ttl)
	}

	signed, err := c.inner.PresignedGet(ctx, uri, ttl)
	if err != nil {
		return "", err
	}

	cacheTTL := ttl / 2
	if cacheTTL > 0 {
		// Best effort; a failed SET just means re-signing next time.
		c.redis.Set(ctx, cacheKey, signed, cacheTTL)
	}
	return signed, nil
}

func (c *PresignCache) Delete(ctx context.Context, uri string) error {
	if c.redis != nil {
		c.redis.Del(ctx, presignKeyPrefix+uri)
	}
	return c.inner.Delete(ctx, uri)
}

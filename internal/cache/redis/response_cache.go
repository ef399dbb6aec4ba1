// Package redis provides the exact-match response cache on top of Redis
// hashes.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/llmrelay/internal/domain"
	"github.com/davidbz/llmrelay/internal/observability"
)

const (
	fieldData     = "data"
	fieldCachedAt = "cached_at"
)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient creates a Redis client for the given options.
func NewClient(opts Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

// ResponseCache implements domain.ResponseCache. Each entry is a hash with
// the JSON encoded result and the time it was stored.
type ResponseCache struct {
	client    redis.Cmdable
	keyPrefix string
}

// NewResponseCache creates a new response cache. Keys are prefixed with
// keyPrefix followed by a colon.
func NewResponseCache(client redis.Cmdable, keyPrefix string) *ResponseCache {
	return &ResponseCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Key returns the Redis key used for req.
func (c *ResponseCache) Key(req *domain.GenerateRequest) string {
	prefix := ""
	if c.keyPrefix != "" {
		prefix = c.keyPrefix + ":"
	}
	return domain.CacheKey(prefix, req)
}

// Get returns the cached result for req or domain.ErrCacheMiss.
func (c *ResponseCache) Get(ctx context.Context, req *domain.GenerateRequest) (*domain.GenerateResult, error) {
	key := c.Key(req)
	logger := observability.FromContext(ctx)

	data, err := c.client.HGet(ctx, key, fieldData).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		logger.Warn("cache lookup failed",
			observability.String("key", key),
			observability.Error(err))
		return nil, fmt.Errorf("cache lookup failed: %w", err)
	}

	var result domain.GenerateResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached result: %w", err)
	}

	logger.Debug("cache hit", observability.String("key", key))
	return &result, nil
}

// Set stores res for req. A non-positive ttl stores the entry without expiry.
func (c *ResponseCache) Set(
	ctx context.Context,
	req *domain.GenerateRequest,
	res *domain.GenerateResult,
	ttl time.Duration,
) error {
	key := c.Key(req)
	logger := observability.FromContext(ctx)

	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	pipe := c.client.Pipeline()

	pipe.HSet(ctx, key,
		fieldData, string(data),
		fieldCachedAt, time.Now().Unix(),
	)

	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}

	if _, execErr := pipe.Exec(ctx); execErr != nil {
		logger.Warn("cache store failed",
			observability.String("key", key),
			observability.Error(execErr))
		return fmt.Errorf("failed to store result: %w", execErr)
	}

	logger.Debug("cache stored",
		observability.String("key", key),
		observability.Duration("ttl", ttl))
	return nil
}

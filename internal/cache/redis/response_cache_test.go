package redis_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/llmrelay/internal/cache/redis"
	"github.com/davidbz/llmrelay/internal/domain"
)

func unreachableClient(t *testing.T) *goredis.Client {
	t.Helper()

	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestResponseCache_Key(t *testing.T) {
	t.Run("should prefix keys with a colon separator", func(t *testing.T) {
		cache := redis.NewResponseCache(nil, "llmrelay")

		key := cache.Key(&domain.GenerateRequest{Prompt: "hello"})

		require.Regexp(t, regexp.MustCompile(`^llmrelay:[0-9a-f]{64}$`), key)
	})

	t.Run("should distinguish generation settings", func(t *testing.T) {
		cache := redis.NewResponseCache(nil, "")

		a := cache.Key(&domain.GenerateRequest{Prompt: "hello", MaxTokens: 10})
		b := cache.Key(&domain.GenerateRequest{Prompt: "hello", MaxTokens: 20})

		require.NotEqual(t, a, b)
		require.Len(t, a, 64)
	})
}

func TestResponseCache_Unavailable(t *testing.T) {
	ctx := context.Background()
	cache := redis.NewResponseCache(unreachableClient(t), "llmrelay")
	req := &domain.GenerateRequest{Prompt: "hello"}

	t.Run("should report lookup failures as errors, not misses", func(t *testing.T) {
		_, err := cache.Get(ctx, req)

		require.Error(t, err)
		require.False(t, errors.Is(err, domain.ErrCacheMiss))
		require.Contains(t, err.Error(), "cache lookup failed")
	})

	t.Run("should report store failures", func(t *testing.T) {
		err := cache.Set(ctx, req, &domain.GenerateResult{Text: "hi"}, time.Minute)

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to store result")
	})
}

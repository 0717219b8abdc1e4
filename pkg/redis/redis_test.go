package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/dealflow/pkg/config"
)

// setupTestRedis creates a client connected to an in-memory miniredis server
func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	cfg := &config.Config{
		Redis: config.RedisConfig{
			Host:    mr.Host(),
			Port:    mr.Port(),
			Enabled: true,
		},
	}

	client, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func TestNewClient_Disabled(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{
			Enabled: false,
		},
	}

	client, err := New(context.Background(), cfg)
	require.NoError(t, err)

	assert.False(t, client.Enabled())
	assert.NoError(t, client.Ping(context.Background()))
	assert.NoError(t, client.Close())
}

func TestNewClient_Unreachable(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{
			Host:    "127.0.0.1",
			Port:    "1",
			Enabled: true,
		},
	}

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewClient_Enabled(t *testing.T) {
	client, _ := setupTestRedis(t)

	assert.True(t, client.Enabled())
	assert.NoError(t, client.Ping(context.Background()))
}

func TestRateLimiter_Disabled(t *testing.T) {
	client, _ := New(context.Background(), &config.Config{})
	limiter := NewRateLimiter(client, "test")

	cfg := IngestRateLimit("10.0.0.1", 5)

	// When Redis is disabled, all requests should be allowed
	allowed, remaining, err := limiter.Allow(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, cfg.Limit, remaining)
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	client, _ := setupTestRedis(t)
	limiter := NewRateLimiter(client, "test")
	ctx := context.Background()

	cfg := RateLimitConfig{Key: "client-a", Limit: 3, Window: time.Minute}

	for i := 0; i < 3; i++ {
		allowed, remaining, err := limiter.Allow(ctx, cfg)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 3-i-1, remaining)
	}

	allowed, remaining, err := limiter.Allow(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)

	// Other keys have their own window
	allowed, _, err = limiter.Allow(ctx, RateLimitConfig{Key: "client-b", Limit: 3, Window: time.Minute})
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiter_Wait_ContextCancelled(t *testing.T) {
	client, _ := setupTestRedis(t)
	limiter := NewRateLimiter(client, "test")

	cfg := RateLimitConfig{Key: "busy", Limit: 1, Window: time.Minute}
	require.NoError(t, limiter.Wait(context.Background(), cfg))

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx, cfg)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIngestRateLimit(t *testing.T) {
	cfg := IngestRateLimit("192.168.1.5", 120)

	assert.Equal(t, "ingest:192.168.1.5", cfg.Key)
	assert.Equal(t, 120, cfg.Limit)
	assert.Equal(t, time.Minute, cfg.Window)
}

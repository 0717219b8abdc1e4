package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/dealflow/pkg/config"
	"github.com/wonny/dealflow/pkg/logger"
	"github.com/wonny/dealflow/pkg/redis"
)

func TestNew(t *testing.T) {
	client := New(logger.Nop())
	require.NotNil(t, client)

	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.logger)
	assert.Equal(t, 3, client.retryConfig.MaxRetries)
	assert.True(t, client.retryConfig.Enabled)
}

func TestNewWithTimeout(t *testing.T) {
	timeout := 5 * time.Second
	client := NewWithTimeout(logger.Nop(), timeout)

	assert.Equal(t, timeout, client.httpClient.Timeout)
}

func TestWithRetry(t *testing.T) {
	client := New(logger.Nop()).WithRetry(5, 2*time.Second)

	assert.Equal(t, 5, client.retryConfig.MaxRetries)
	assert.Equal(t, 2*time.Second, client.retryConfig.InitialDelay)
}

func TestDisableRetry(t *testing.T) {
	client := New(logger.Nop()).DisableRetry()

	assert.False(t, client.retryConfig.Enabled)
}

func TestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	resp, err := New(logger.Nop()).Get(context.Background(), server.URL)
	require.NoError(t, err)

	var body map[string]string
	require.NoError(t, DecodeJSON(resp, &body))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload []map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Len(t, payload, 2)

		w.WriteHeader(http.StatusMultiStatus)
		w.Write([]byte(`{"success":2,"errors":[]}`))
	}))
	defer server.Close()

	data := []map[string]interface{}{
		{"deal_id": "RV-001"},
		{"deal_id": "RV-002"},
	}

	resp, err := New(logger.Nop()).PostJSON(context.Background(), server.URL, data)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMultiStatus, resp.StatusCode)
}

func TestRetryOn5xx(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			// Return 503 for first 2 attempts
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		// Success on 3rd attempt
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := New(logger.Nop()).WithRetry(3, 10*time.Millisecond)

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestRetryReplaysPostBody(t *testing.T) {
	var attempts int32
	var lastBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		lastBody = string(body)
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := New(logger.Nop()).WithRetry(2, 10*time.Millisecond)

	resp, err := client.PostJSON(context.Background(), server.URL, map[string]string{"deal_id": "RV-001"})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	assert.JSONEq(t, `{"deal_id":"RV-001"}`, lastBody)
}

func TestRetry_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := New(logger.Nop()).WithRetry(5, time.Second)

	_, err := client.Get(ctx, server.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetryUnsentOnly_DoesNotResendProcessedBatch(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(logger.Nop()).WithRetry(3, 10*time.Millisecond).RetryUnsentOnly()

	resp, err := client.PostJSON(context.Background(), server.URL, []string{"RV-001"})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestRetryUnsentOnly_RetriesRateLimited(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusMultiStatus)
	}))
	defer server.Close()

	client := New(logger.Nop()).WithRetry(3, 10*time.Millisecond).RetryUnsentOnly()

	resp, err := client.PostJSON(context.Background(), server.URL, []string{"RV-001"})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMultiStatus, resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestRetryUnsentOnly_RetriesRefusedConnection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := New(logger.Nop()).WithRetry(1, 10*time.Millisecond).RetryUnsentOnly()

	_, err := client.PostJSON(context.Background(), url, []string{"RV-001"})
	require.Error(t, err)
	assert.True(t, isDialError(err))
	assert.False(t, isDialError(context.DeadlineExceeded))
}

func TestWithRateLimiter_ThrottlesRequests(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := redis.New(context.Background(), &config.Config{
		Redis: config.RedisConfig{Host: mr.Host(), Port: mr.Port(), Enabled: true},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(logger.Nop()).DisableRetry().
		WithRateLimiter(redis.NewRateLimiter(rdb, "test"), redis.IngestRateLimit("import", 1))

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	_, err = client.Get(ctx, server.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		statusCode int
		want       bool
	}{
		{200, false},
		{201, false},
		{207, false},
		{400, false},
		{404, false},
		{429, true}, // Too Many Requests - should retry
		{500, true}, // Internal Server Error
		{502, true}, // Bad Gateway
		{503, true}, // Service Unavailable
		{504, true}, // Gateway Timeout
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.statusCode), func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableError(tt.statusCode))
		})
	}
}

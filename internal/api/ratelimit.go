package api

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/dealflow/pkg/redis"
)

// Limiter decides whether a client may ingest another request
type Limiter interface {
	Allow(ctx context.Context, clientKey string) (bool, error)
}

// NewLimiter picks the Redis sliding window when Redis is enabled,
// otherwise a per-client token bucket held in this process.
// A non-positive perMinute disables limiting.
func NewLimiter(client *redis.Client, perMinute, burst int) Limiter {
	if perMinute <= 0 {
		return nil
	}
	if client != nil && client.Enabled() {
		return &redisLimiter{
			limiter:   redis.NewRateLimiter(client, "dealflow"),
			perMinute: perMinute,
		}
	}
	return newLocalLimiter(perMinute, burst)
}

type redisLimiter struct {
	limiter   *redis.RateLimiter
	perMinute int
}

func (l *redisLimiter) Allow(ctx context.Context, clientKey string) (bool, error) {
	allowed, _, err := l.limiter.Allow(ctx, redis.IngestRateLimit(clientKey, l.perMinute))
	return allowed, err
}

// maxIdleBuckets triggers pruning of buckets that have refilled completely
const maxIdleBuckets = 10000

// localLimiter keeps one token bucket per client key
type localLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	every   rate.Limit
	burst   int
}

func newLocalLimiter(perMinute, burst int) *localLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &localLimiter{
		buckets: make(map[string]*rate.Limiter),
		every:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   burst,
	}
}

func (l *localLimiter) Allow(_ context.Context, clientKey string) (bool, error) {
	l.mu.Lock()
	bucket, ok := l.buckets[clientKey]
	if !ok {
		if len(l.buckets) >= maxIdleBuckets {
			l.prune()
		}
		bucket = rate.NewLimiter(l.every, l.burst)
		l.buckets[clientKey] = bucket
	}
	l.mu.Unlock()

	return bucket.Allow(), nil
}

// prune drops clients whose bucket is full again; callers hold mu
func (l *localLimiter) prune() {
	for key, bucket := range l.buckets {
		if bucket.Tokens() >= float64(l.burst) {
			delete(l.buckets, key)
		}
	}
}

package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"stockify/internal/apperr"
)

// Limiter reports whether one more request for key is allowed and, if
// not, how long the caller should wait.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// tokenBucketScript refills capacity tokens per window and takes one.
// Returns {allowed, wait_ms}.
var tokenBucketScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local refill = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local bucket = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(bucket[1])
local ts = tonumber(bucket[2])
if tokens == nil or ts == nil then
  tokens = capacity
  ts = now
end

tokens = math.min(capacity, tokens + math.max(0, now - ts) * refill)

local allowed = 0
local wait = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
else
  wait = math.ceil((1 - tokens) / refill)
end

redis.call('HSET', KEYS[1], 'tokens', tostring(tokens), 'ts', tostring(now))
redis.call('PEXPIRE', KEYS[1], ttl)
return {allowed, wait}
`)

type RedisLimiter struct {
	client   *redis.Client
	capacity int
	window   time.Duration
	now      func() time.Time
}

func NewRedisLimiter(client *redis.Client, requests int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, capacity: requests, window: window, now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	windowMs := l.window.Milliseconds()
	refill := float64(l.capacity) / float64(windowMs)
	res, err := tokenBucketScript.Run(ctx, l.client, []string{key},
		l.capacity,
		strconv.FormatFloat(refill, 'f', -1, 64),
		l.now().UnixMilli(),
		windowMs,
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}
	return res[0] == 1, time.Duration(res[1]) * time.Millisecond, nil
}

// LocalLimiter keeps one token bucket per key in process memory.
type LocalLimiter struct {
	mu       sync.Mutex
	limiters map[string]*localEntry
	limit    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const localLimiterSweepSize = 10000

func NewLocalLimiter(requests int, window time.Duration) *LocalLimiter {
	return &LocalLimiter{
		limiters: make(map[string]*localEntry),
		limit:    rate.Limit(float64(requests) / window.Seconds()),
		burst:    requests,
		idle:     window,
		now:      time.Now,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.limiters) >= localLimiterSweepSize {
		for k, e := range l.limiters {
			if now.Sub(e.lastSeen) > l.idle {
				delete(l.limiters, k)
			}
		}
	}

	entry, ok := l.limiters[key]
	if !ok {
		entry = &localEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now

	if entry.limiter.AllowN(now, 1) {
		return true, 0, nil
	}
	wait := time.Duration(float64(time.Second) / float64(l.limit))
	return false, wait, nil
}

// RateLimit throttles per client IP and route. Limiter failures let the
// request through.
func RateLimit(limiter Limiter, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		key := "ratelimit:" + c.FullPath() + ":" + c.ClientIP()
		allowed, wait, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable")
			c.Next()
			return
		}
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			abortWith(c, apperr.New(http.StatusTooManyRequests, "Too many requests, please try again later"))
			return
		}
		c.Next()
	}
}

package security

import (
	"context"
	"fmt"
	"sync"
	"time"

	"handyman-recruitment-backend/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
)

// UploadLimiter enforces rate limits on document uploads: per client IP per
// minute and per candidate record per day. It uses a Redis sliding window when
// Redis is connected and an in-process window otherwise.
type UploadLimiter struct {
	maxPerMinute int
	maxPerDay    int
	client       func() *goredis.Client

	mu      sync.Mutex
	local   map[string]*uploadWindow
	sweepAt int64
	nowFn   func() time.Time
}

// uploadWindow holds the unix-second timestamps of the hits inside one
// sliding window of size seconds.
type uploadWindow struct {
	size int64
	hits []int64
}

// Lua script for sliding window rate limiting
// KEYS[1] = rate limit key
// ARGV[1] = max count allowed
// ARGV[2] = window size in seconds
// ARGV[3] = current timestamp
// Returns: 1 if allowed, 0 if rate limited
const uploadRateLimitScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

local count = redis.call('ZCARD', key)
if count >= limit then
    return 0
end

redis.call('ZADD', key, now, now .. '-' .. math.random(1000000))
redis.call('EXPIRE', key, window)
return 1
`

// NewUploadLimiter creates an upload rate limiter.
// Default: 10 uploads/min per IP, 50 uploads/day per candidate
func NewUploadLimiter(perMin, perDay int) *UploadLimiter {
	if perMin <= 0 {
		perMin = 10
	}
	if perDay <= 0 {
		perDay = 50
	}
	return &UploadLimiter{
		maxPerMinute: perMin,
		maxPerDay:    perDay,
		client:       redis.Client,
		local:        make(map[string]*uploadWindow),
		nowFn:        time.Now,
	}
}

// AllowUpload returns (allowed, retryAfterSeconds, error). A Redis failure
// denies the upload.
func (ul *UploadLimiter) AllowUpload(ctx context.Context, ip, candidateID string) (bool, int, error) {
	now := ul.nowFn().Unix()

	check := ul.checkLocal
	if client := ul.client(); client != nil {
		check = func(ctx context.Context, key string, limit, window int, now int64) (bool, error) {
			return ul.checkRedis(ctx, client, key, limit, window, now)
		}
	}

	ipKey := fmt.Sprintf("ratelimit:upload:ip:%s", ip)
	allowed, err := check(ctx, ipKey, ul.maxPerMinute, 60, now)
	if err != nil {
		return false, 60, fmt.Errorf("rate limit check failed: %w", err)
	}
	if !allowed {
		return false, 60, nil
	}

	if candidateID != "" {
		candidateKey := fmt.Sprintf("ratelimit:upload:candidate:%s", candidateID)
		allowed, err = check(ctx, candidateKey, ul.maxPerDay, 86400, now)
		if err != nil {
			return false, 3600, fmt.Errorf("rate limit check failed: %w", err)
		}
		if !allowed {
			return false, 3600, nil
		}
	}

	return true, 0, nil
}

func (ul *UploadLimiter) checkRedis(ctx context.Context, client *goredis.Client, key string, limit, window int, now int64) (bool, error) {
	result, err := client.Eval(ctx, uploadRateLimitScript, []string{key}, limit, window, now).Result()
	if err != nil {
		return false, err
	}
	allowed, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected result type from rate limit script")
	}
	return allowed == 1, nil
}

func (ul *UploadLimiter) checkLocal(_ context.Context, key string, limit, window int, now int64) (bool, error) {
	ul.mu.Lock()
	defer ul.mu.Unlock()

	if now >= ul.sweepAt {
		for k, w := range ul.local {
			if len(w.hits) == 0 || w.hits[len(w.hits)-1] <= now-w.size {
				delete(ul.local, k)
			}
		}
		ul.sweepAt = now + int64((5 * time.Minute).Seconds())
	}

	w, ok := ul.local[key]
	if !ok {
		w = &uploadWindow{size: int64(window)}
		ul.local[key] = w
	}

	cutoff := now - w.size
	kept := w.hits[:0]
	for _, ts := range w.hits {
		if ts > cutoff {
			kept = append(kept, ts)
		}
	}
	w.hits = kept
	if len(kept) >= limit {
		return false, nil
	}
	w.hits = append(kept, now)
	return true, nil
}

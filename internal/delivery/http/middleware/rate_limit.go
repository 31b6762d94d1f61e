package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"handyman-recruitment-backend/internal/delivery/http/response"
	"handyman-recruitment-backend/internal/metrics"
	"handyman-recruitment-backend/pkg/redis"
	"handyman-recruitment-backend/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig is a fixed-window limit of Limit requests per Window for
// every key produced by KeyFunc.
type RateLimitConfig struct {
	Limit     int
	Window    time.Duration
	KeyFunc   func(*gin.Context) string
	KeyPrefix string
	// Scope labels rejections in metrics and logs.
	Scope string
	// FailClosed rejects requests while Redis is erroring instead of
	// counting them in process memory.
	FailClosed bool
}

// INCR with the TTL set on the first hit of a window.
// Returns {count, ttl_seconds}.
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

// windowCounter is the per-process fallback used when Redis is absent or
// failing. Each replica then enforces the limit on its own.
type windowCounter struct {
	mu      sync.Mutex
	windows map[string]*window
	sweepAt time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

var localCounter = &windowCounter{windows: make(map[string]*window)}

// hit counts one request for key and returns the window's running total.
func (w *windowCounter) hit(key string, size time.Duration, now time.Time) (int, time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if now.After(w.sweepAt) {
		for k, win := range w.windows {
			if now.After(win.resetAt) {
				delete(w.windows, k)
			}
		}
		w.sweepAt = now.Add(5 * time.Minute)
	}

	win, ok := w.windows[key]
	if !ok || now.After(win.resetAt) {
		win = &window{resetAt: now.Add(size)}
		w.windows[key] = win
	}
	win.count++
	return win.count, win.resetAt
}

func clientIPKey(c *gin.Context) string {
	return c.ClientIP()
}

// GlobalRateLimitConfig applies to every route, per client IP.
func GlobalRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:     limit,
		Window:    window,
		KeyFunc:   clientIPKey,
		KeyPrefix: "rl:ip:",
		Scope:     "global",
	}
}

// SubmitRateLimitConfig guards the public intake forms (candidate
// registration, enquiries, contact messages). They are unauthenticated, so
// the limit is per IP and strict.
func SubmitRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:     limit,
		Window:    window,
		KeyFunc:   clientIPKey,
		KeyPrefix: "rl:submit:",
		Scope:     "submit",
	}
}

// RateLimitMiddleware counts in Redis when it is connected and in process
// memory otherwise.
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = clientIPKey
	}
	if config.Scope == "" {
		config.Scope = "custom"
	}

	return func(c *gin.Context) {
		key := config.KeyPrefix + config.KeyFunc(c)

		count, resetAt, err := countRequest(c.Request.Context(), key, config)
		if err != nil {
			logRateLimitError(c, "redis_error", err)
			response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
			c.Abort()
			return
		}

		remaining := config.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > config.Limit {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			rejectRateLimited(c, config.Scope, "Rate limit exceeded. Please try again later.")
			return
		}

		c.Next()
	}
}

// countRequest returns an error only when Redis failed and the config
// fails closed.
func countRequest(ctx context.Context, key string, config RateLimitConfig) (int, time.Time, error) {
	if client := redis.Client(); client != nil {
		count, resetAt, err := countRedis(ctx, client, key, config.Window)
		if err == nil {
			return count, resetAt, nil
		}
		if config.FailClosed {
			return 0, time.Time{}, err
		}
	}
	count, resetAt := localCounter.hit(key, config.Window, time.Now())
	return count, resetAt, nil
}

func countRedis(ctx context.Context, client *goredis.Client, key string, size time.Duration) (int, time.Time, error) {
	result, err := client.Eval(ctx, rateLimitLuaScript, []string{key}, int(size.Seconds())).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval: %w", err)
	}

	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("redis rate limit: unexpected result %T", result)
	}
	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)

	return int(count), time.Now().Add(time.Duration(ttl) * time.Second), nil
}

func rejectRateLimited(c *gin.Context, scope, message string) {
	metrics.RateLimitedTotal.WithLabelValues(scope).Inc()
	security.DefaultLogger().LogRateLimitTriggered(
		c.Request.Context(),
		c.ClientIP(),
		c.GetHeader("User-Agent"),
		c.GetString(RequestIDKey),
		c.FullPath(),
	)
	response.Error(c, http.StatusTooManyRequests, message, nil)
	c.Abort()
}

func logRateLimitError(c *gin.Context, errorType string, err error) {
	security.DefaultLogger().Log(c.Request.Context(), security.SecurityEvent{
		Event:       security.EventRateLimitTriggered,
		SubjectType: "system",
		IP:          c.ClientIP(),
		RequestID:   c.GetString(RequestIDKey),
		Details: map[string]interface{}{
			"error_type": errorType,
			"error":      err.Error(),
		},
	})
}

// UploadRateLimitMiddleware applies the per-IP and per-candidate upload
// windows of limiter to document upload routes.
func UploadRateLimitMiddleware(limiter *security.UploadLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		// One bucket per candidate however the id is spelled (7, 07, +7).
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			response.Error(c, http.StatusBadRequest, "Invalid id", nil)
			c.Abort()
			return
		}

		allowed, retryAfter, err := limiter.AllowUpload(c.Request.Context(), c.ClientIP(), strconv.FormatInt(id, 10))
		if err != nil {
			logRateLimitError(c, "upload_limiter_error", err)
			response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
			c.Abort()
			return
		}
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			rejectRateLimited(c, "upload", "Too many uploads. Please try again later.")
			return
		}
		c.Next()
	}
}

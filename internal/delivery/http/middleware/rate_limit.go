package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"agency-contact-api/internal/delivery/http/response"
	"agency-contact-api/internal/domain"
	"agency-contact-api/pkg/redis"
	"agency-contact-api/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Time window duration
	Window time.Duration
	// Custom key extractor (default: client IP)
	KeyFunc func(*gin.Context) string
	// Key prefix for Redis and the in-memory fallback
	KeyPrefix string
	// Whether to fail closed (reject) when Redis errors
	FailClosed bool
	// Message returned with 429 (default: generic rate limit message)
	Message string
	// Audit receives rate_limit_triggered events (default: security.DefaultLogger())
	Audit *security.SecurityLogger
}

// DefaultRateLimitConfig is the per-IP ceiling applied to every route
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:     100,
		Window:    time.Minute,
		KeyPrefix: "rl:ip:",
	}
}

// ContactRateLimitConfig returns the strict config for the contact endpoint
func ContactRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	if limit <= 0 {
		limit = 5
	}
	if window <= 0 {
		window = time.Minute
	}
	return RateLimitConfig{
		Limit:      limit,
		Window:     window,
		KeyPrefix:  "rl:contact:",
		FailClosed: false, // A Redis outage must not take the contact form down
		Message:    "Too many messages sent. Please wait a moment and try again.",
	}
}

// GlobalRateLimitMiddleware applies default rate limiting to all routes
func GlobalRateLimitMiddleware() gin.HandlerFunc {
	return RateLimitMiddleware(DefaultRateLimitConfig())
}

// RateLimitMiddleware counts requests per key in fixed windows.
// Redis is used when the shared client is up; otherwise counts are kept in process.
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	if config.Message == "" {
		config.Message = "Rate limit exceeded. Please try again later."
	}
	local := sharedMemoryCounter()

	return func(c *gin.Context) {
		key := config.KeyPrefix + config.KeyFunc(c)

		var (
			count   int
			resetAt time.Time
			err     error
		)
		if client := redis.Client(); client != nil {
			count, resetAt, err = redisIncr(c.Request.Context(), client, key, config.Window)
			if err != nil {
				if config.FailClosed {
					auditRateLimitError(c, config.Audit, err)
					response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
					c.Abort()
					return
				}
				count, resetAt = local.incr(key, config.Window, time.Now())
			}
		} else {
			count, resetAt = local.incr(key, config.Window, time.Now())
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > config.Limit {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			auditLogger(config.Audit).LogRateLimitTriggered(
				c.Request.Context(),
				c.ClientIP(),
				c.GetHeader("User-Agent"),
				c.GetString(string(domain.KeyRequestID)),
				c.FullPath(),
			)

			response.Error(c, http.StatusTooManyRequests, config.Message, nil)
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(config.Limit-count, 0)))
		c.Next()
	}
}

// incrScript increments the window counter and sets its TTL on the first hit.
// Returns {count, ttl_seconds}.
var incrScript = goredis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return {count, redis.call('TTL', KEYS[1])}
`)

func redisIncr(ctx context.Context, client *goredis.Client, key string, d time.Duration) (int, time.Time, error) {
	vals, err := incrScript.Run(ctx, client, []string{key}, int(d.Seconds())).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit: %w", err)
	}
	if len(vals) < 2 {
		return 0, time.Time{}, fmt.Errorf("redis rate limit: unexpected reply %v", vals)
	}
	return int(vals[0]), time.Now().Add(time.Duration(vals[1]) * time.Second), nil
}

type window struct {
	count   int
	resetAt time.Time
}

// memoryCounter is the in-process fallback, shared by every limiter so prefixes keep keys apart
type memoryCounter struct {
	mu      sync.Mutex
	windows map[string]*window
}

var (
	memCounter     *memoryCounter
	memCounterOnce sync.Once
)

func sharedMemoryCounter() *memoryCounter {
	memCounterOnce.Do(func() {
		memCounter = &memoryCounter{windows: make(map[string]*window)}
		go memCounter.sweep(5 * time.Minute)
	})
	return memCounter
}

func (m *memoryCounter) incr(key string, d time.Duration, now time.Time) (int, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(d)}
		m.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt
}

// sweep drops expired windows
func (m *memoryCounter) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for now := range ticker.C {
		m.mu.Lock()
		for key, w := range m.windows {
			if now.After(w.resetAt) {
				delete(m.windows, key)
			}
		}
		m.mu.Unlock()
	}
}

func auditLogger(sl *security.SecurityLogger) *security.SecurityLogger {
	if sl != nil {
		return sl
	}
	return security.DefaultLogger()
}

func auditRateLimitError(c *gin.Context, sl *security.SecurityLogger, err error) {
	auditLogger(sl).Log(c.Request.Context(), security.SecurityEvent{
		Event:       security.EventRateLimitTriggered,
		SubjectType: "system",
		IP:          c.ClientIP(),
		RequestID:   c.GetString(string(domain.KeyRequestID)),
		Details: map[string]interface{}{
			"error_type": "redis_error",
			"error":      err.Error(),
		},
	})
}

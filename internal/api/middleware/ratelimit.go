package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/redis/go-redis/v9"
)

// Counter counts hits against a key within a fixed window.
type Counter interface {
	// Incr records a hit on key and returns the hit count in the current window
	// and the time left until the window resets.
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// incrExpireScript atomically increments a key, starts its window on the first hit
// and returns the count together with the remaining TTL in milliseconds.
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

// RedisCounter is a Counter backed by Redis.
type RedisCounter struct {
	client redis.Scripter
}

var _ Counter = (*RedisCounter)(nil)

// NewRedisCounter creates a RedisCounter using client.
func NewRedisCounter(client redis.Scripter) *RedisCounter {
	return &RedisCounter{client: client}
}

// Incr implements Counter.
func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	res, err := incrExpireScript.Run(ctx, c.client, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("rate limit counter: %w", err)
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("rate limit counter: unexpected reply of length %d", len(res))
	}
	ttl := time.Duration(res[1]) * time.Millisecond
	if ttl < 0 {
		ttl = 0
	}
	return res[0], ttl, nil
}

// KeyFunc derives the rate-limit bucket for a request.
type KeyFunc func(r *http.Request) string

// KeyByIPAndPath buckets requests by client IP and request path.
func KeyByIPAndPath(r *http.Request) string {
	return "rl:path:" + r.URL.Path + ":ip:" + clientIP(r)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return "unknown"
	}
	return host
}

// RateLimit allows at most limit requests per window for each key. When counter is
// nil or the limits are not positive the middleware passes every request through.
// Counter failures also let the request through.
func RateLimit(counter Counter, limit int, window time.Duration, keyFn KeyFunc) func(http.Handler) http.Handler {
	if counter == nil || limit <= 0 || window <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if keyFn == nil {
		keyFn = KeyByIPAndPath
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			count, ttl, err := counter.Incr(r.Context(), keyFn(r), window)
			if err != nil {
				logger.FromContext(r.Context()).Warn("rate limiter unavailable, allowing request",
					slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}

			remaining := int64(limit) - count
			if remaining < 0 {
				remaining = 0
			}
			resetSeconds := int(ttl.Round(time.Second) / time.Second)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetSeconds))

			if count > int64(limit) {
				if resetSeconds > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(resetSeconds))
				}
				shared.RespondWithError(w, r, http.StatusTooManyRequests,
					"Request was throttled. Try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

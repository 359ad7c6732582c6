package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyFunc derives the rate limit bucket for a request. Requests for which it
// reports false are not limited. auth.RateLimitKey buckets by user.
type KeyFunc func(r *http.Request) (string, bool)

// KeyByIP buckets requests by client IP.
func KeyByIP(r *http.Request) (string, bool) {
	return clientIP(r), true
}

// RateLimiter provides sliding-window rate limiting backed by Redis sorted sets.
type RateLimiter struct {
	client    redis.Cmdable
	name      string
	key       KeyFunc
	maxReqs   int
	windowSec int
}

// NewRateLimiter creates a rate limiter that allows maxReqs per windowSec
// seconds for every bucket returned by key. name namespaces the Redis keys.
func NewRateLimiter(client redis.Cmdable, name string, key KeyFunc, maxReqs, windowSec int) *RateLimiter {
	return &RateLimiter{client: client, name: name, key: key, maxReqs: maxReqs, windowSec: windowSec}
}

// Middleware returns an HTTP middleware that enforces the rate limit.
// On Redis errors it fails open (allows the request through).
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bucket, ok := rl.key(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		allowed, err := rl.allow(r.Context(), "ratelimit:"+rl.name+":"+bucket)
		if err != nil {
			slog.Warn("rate limiter: redis error, failing open", "error", err, "limiter", rl.name, "bucket", bucket)
			next.ServeHTTP(w, r)
			return
		}

		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(rl.windowSec))
			writeJSONError(w, http.StatusTooManyRequests, "too many requests")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allow records the request only when it is admitted.
func (rl *RateLimiter) allow(ctx context.Context, key string) (bool, error) {
	window := time.Duration(rl.windowSec) * time.Second
	now := time.Now()
	windowStart := now.Add(-window).UnixMilli()

	pipe := rl.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(windowStart, 10))
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limiter pipeline (clean+count): %w", err)
	}

	count := countCmd.Val()
	if count >= int64(rl.maxReqs) {
		return false, nil
	}

	pipe = rl.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMilli()), Member: fmt.Sprintf("%d:%d", now.UnixNano(), count)})
	pipe.Expire(ctx, key, window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limiter pipeline (add): %w", err)
	}

	return true, nil
}

func clientIP(r *http.Request) string {
	// X-Forwarded-For is set by the trusted reverse proxy.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

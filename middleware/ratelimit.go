// middleware/ratelimit.go
package middleware

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"ingresosgo/config"
)

// Token bucket rate limiter implementation
type TokenBucket struct {
	tokens         float64
	maxTokens      float64
	refillRate     float64 // tokens per second
	lastRefillTime time.Time
	mu             sync.Mutex
}

func NewTokenBucket(maxTokens, refillRate float64, now time.Time) *TokenBucket {
	return &TokenBucket{
		tokens:         maxTokens,
		maxTokens:      maxTokens,
		refillRate:     refillRate,
		lastRefillTime: now,
	}
}

func (tb *TokenBucket) Allow(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	elapsed := now.Sub(tb.lastRefillTime).Seconds()
	if elapsed > 0 {
		tb.tokens += elapsed * tb.refillRate
		if tb.tokens > tb.maxTokens {
			tb.tokens = tb.maxTokens
		}
		tb.lastRefillTime = now
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// RateLimiter keeps one bucket per client key.
type RateLimiter struct {
	buckets map[string]*TokenBucket
	mu      sync.Mutex

	maxRequests int
	window      time.Duration
	now         func() time.Time
}

func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		buckets:     make(map[string]*TokenBucket),
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

func (rl *RateLimiter) getBucket(key string, now time.Time) *TokenBucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, exists := rl.buckets[key]
	if !exists {
		refillRate := float64(rl.maxRequests) / rl.window.Seconds()
		bucket = NewTokenBucket(float64(rl.maxRequests), refillRate, now)
		rl.buckets[key] = bucket
	}
	return bucket
}

func (rl *RateLimiter) Allow(key string) bool {
	now := rl.now()
	return rl.getBucket(key, now).Allow(now)
}

// Cleanup drops buckets idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for key, bucket := range rl.buckets {
		bucket.mu.Lock()
		if now.Sub(bucket.lastRefillTime) > maxIdle {
			delete(rl.buckets, key)
			removed++
		}
		bucket.mu.Unlock()
	}
	return removed
}

// RateLimiters is the pair of limiters mounted on the API.
type RateLimiters struct {
	enabled bool
	general *RateLimiter
	auth    *RateLimiter
}

func NewRateLimiters(cfg config.RateLimit) *RateLimiters {
	return &RateLimiters{
		enabled: cfg.Enabled,
		general: NewRateLimiter(cfg.MaxRequests, cfg.Window),
		auth:    NewRateLimiter(cfg.AuthMax, cfg.AuthWindow),
	}
}

// StartCleanup removes idle buckets every ten minutes until stop is closed.
func (r *RateLimiters) StartCleanup(stop <-chan struct{}) {
	ticker := time.NewTicker(10 * time.Minute)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.general.Cleanup(30 * time.Minute)
				r.auth.Cleanup(30 * time.Minute)
			case <-stop:
				return
			}
		}
	}()
}

// General applies the general limit to everything except health checks and websockets.
func (r *RateLimiters) General() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !r.enabled {
			return c.Next()
		}
		path := c.Path()
		if path == "/health" || path == "/api/health" || strings.HasSuffix(path, "/live") {
			return c.Next()
		}

		if !r.general.Allow(c.IP()) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "Demasiadas solicitudes. Intenta de nuevo más tarde.",
			})
		}
		return c.Next()
	}
}

// Auth applies the stricter limit for login and registration.
func (r *RateLimiters) Auth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !r.enabled {
			return c.Next()
		}
		if !r.auth.Allow(c.IP()) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "Demasiados intentos de autenticación. Intenta de nuevo en unos minutos.",
			})
		}
		return c.Next()
	}
}

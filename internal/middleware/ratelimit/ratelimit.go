// Package ratelimit throttles mutating requests per client IP with a token
// bucket per client.
package ratelimit

import (
	"fmt"
	"math"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"expensetracker/internal/cache"
	"expensetracker/internal/log"
)

// Limiter provides rate limiting functionality
type Limiter struct {
	limiters *cache.LRUCache[*rate.Limiter]
	manager  *cache.Manager
	logger   *log.Logger

	requestsPerMinute int
	burst             int
	hits              int64
}

// Config holds rate limiter configuration
type Config struct {
	RequestsPerMinute int
	Burst             int
	// MaxClients bounds memory; the least recently seen client is dropped first.
	MaxClients      int
	IdleTTL         time.Duration
	CleanupInterval time.Duration
	Logger          *log.Logger
}

func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		Burst:             10,
		MaxClients:        10000,
		IdleTTL:           10 * time.Minute,
		CleanupInterval:   5 * time.Minute,
	}
}

// NewLimiter creates a rate limiter and starts its cleanup goroutine. Zero
// fields fall back to DefaultConfig.
func NewLimiter(config Config) *Limiter {
	def := DefaultConfig()
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = def.RequestsPerMinute
	}
	if config.Burst <= 0 {
		config.Burst = min(def.Burst, config.RequestsPerMinute)
	}
	if config.MaxClients <= 0 {
		config.MaxClients = def.MaxClients
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = def.IdleTTL
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}
	logger := config.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentRateLimit)

	rl := &Limiter{
		limiters:          cache.NewLRUCache[*rate.Limiter](config.MaxClients, config.IdleTTL),
		manager:           cache.NewManager(logger),
		logger:            logger,
		requestsPerMinute: config.RequestsPerMinute,
		burst:             config.Burst,
	}
	rl.manager.Register(rl.limiters)
	rl.manager.StartCleanup(config.CleanupInterval)
	return rl
}

func (rl *Limiter) limiterFor(clientIP string) *rate.Limiter {
	return rl.limiters.GetOrCreate(clientIP, func() *rate.Limiter {
		return rate.NewLimiter(rate.Limit(float64(rl.requestsPerMinute)/60.0), rl.burst)
	})
}

// Allow checks if a request from the given IP should be allowed
func (rl *Limiter) Allow(clientIP string) bool {
	if rl.limiterFor(clientIP).Allow() {
		return true
	}
	atomic.AddInt64(&rl.hits, 1)
	return false
}

// retryAfter estimates how long until clientIP gets its next token.
func (rl *Limiter) retryAfter(clientIP string) time.Duration {
	lim := rl.limiterFor(clientIP)
	missing := 1 - lim.Tokens()
	if missing <= 0 {
		return time.Second
	}
	secs := math.Ceil(missing / float64(lim.Limit()))
	return time.Duration(max(secs, 1)) * time.Second
}

// ActiveClients returns the number of currently tracked clients
func (rl *Limiter) ActiveClients() int {
	return rl.limiters.Size()
}

// Stop gracefully shuts down the rate limiter cleanup goroutine
func (rl *Limiter) Stop() {
	rl.manager.Stop()
}

// Metrics for monitoring rate limit performance
type Metrics struct {
	TotalHits   int64
	ClientCount int64
}

func (rl *Limiter) GetMetrics() Metrics {
	return Metrics{
		TotalHits:   atomic.LoadInt64(&rl.hits),
		ClientCount: int64(rl.ActiveClients()),
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Middleware limits mutating requests. GET, HEAD and OPTIONS pass through
// untouched. onLimit, when non-nil, writes the rejection.
func (rl *Limiter) Middleware(extractIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			clientIP := extractIP(r)
			if !rl.Allow(clientIP) {
				retry := rl.retryAfter(clientIP)
				log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
					log.FieldClientIP, clientIP,
					log.FieldMethod, r.Method,
					log.FieldPath, r.URL.Path,
					"retry_after_s", int(retry.Seconds()))

				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(retry.Seconds())))
				if onLimit != nil {
					onLimit(w, r)
				} else {
					http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/tienda-api/pkg/response"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds per-client token bucket settings
type RateLimitConfig struct {
	// Sustained requests per minute per client IP
	RequestsPerMinute float64
	// Burst size (token bucket capacity)
	Burst int
	// Entries idle for longer than EntryTTL are dropped by the cleanup loop
	EntryTTL time.Duration
	// Cleanup interval for idle entries (0 disables the loop)
	CleanupInterval time.Duration
}

// DefaultLoginRateLimitConfig returns limits suited for credential endpoints
func DefaultLoginRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 10,
		Burst:             5,
		EntryTTL:          10 * time.Minute,
		CleanupInterval:   time.Minute,
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP
type RateLimiter struct {
	config  RateLimitConfig
	mu      sync.Mutex
	entries map[string]*limiterEntry
	stop    chan struct{}
	once    sync.Once
}

// NewRateLimiter creates a rate limiter and starts its cleanup loop
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.Burst <= 0 {
		config.Burst = 1
	}
	if config.EntryTTL <= 0 {
		config.EntryTTL = 10 * time.Minute
	}

	rl := &RateLimiter{
		config:  config,
		entries: make(map[string]*limiterEntry),
		stop:    make(chan struct{}),
	}

	if config.CleanupInterval > 0 {
		go rl.cleanupLoop()
	}

	return rl
}

// Allow reports whether a request from key may proceed now
func (rl *RateLimiter) Allow(key string) bool {
	return rl.limiter(key).Allow()
}

// Stop terminates the cleanup loop
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if e, ok := rl.entries[key]; ok {
		e.lastSeen = now
		return e.limiter
	}

	lim := rate.NewLimiter(rate.Limit(rl.config.RequestsPerMinute/60.0), rl.config.Burst)
	rl.entries[key] = &limiterEntry{limiter: lim, lastSeen: now}
	return lim
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, e := range rl.entries {
		if now.Sub(e.lastSeen) > rl.config.EntryTTL {
			delete(rl.entries, key)
		}
	}
}

// RateLimit returns a middleware that rejects clients over their budget with 429
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	retryAfter := 60
	if rl.config.RequestsPerMinute > 0 {
		retryAfter = int(math.Ceil(60 / rl.config.RequestsPerMinute))
	}

	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				response.ErrorBody("RATE_LIMIT_EXCEEDED", "Too many requests, please retry later"))
			return
		}
		c.Next()
	}
}

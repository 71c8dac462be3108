package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiterConfig holds configuration for rate limiting
type RateLimiterConfig struct {
	MessagesPerMinute int           // Max messages per visitor per minute
	BurstSize         int           // Allow burst of N requests
	CleanupInterval   time.Duration // How often to clean up old entries
}

// TokenBucket implements a token bucket rate limiter
type TokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a new token bucket
func NewTokenBucket(maxTokens float64, refillRate float64) *TokenBucket {
	return &TokenBucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow checks if a request can proceed and consumes a token if so
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()

	tb.tokens = min(tb.maxTokens, tb.tokens+(elapsed*tb.refillRate))
	tb.lastRefill = now

	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}

// Remaining returns the number of tokens remaining
func (tb *TokenBucket) Remaining() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	elapsed := time.Since(tb.lastRefill).Seconds()
	return int(min(tb.maxTokens, tb.tokens+(elapsed*tb.refillRate)))
}

// VisitorRateLimiter keeps one message bucket per (tenant, visitor).
type VisitorRateLimiter struct {
	config      RateLimiterConfig
	buckets     map[string]*TokenBucket
	mu          sync.Mutex
	logger      *zap.Logger
	stopCleanup chan struct{}
}

// NewVisitorRateLimiter creates a limiter and starts its cleanup loop.
func NewVisitorRateLimiter(config RateLimiterConfig, logger *zap.Logger) *VisitorRateLimiter {
	if config.BurstSize < 1 {
		config.BurstSize = 1
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	limiter := &VisitorRateLimiter{
		config:      config,
		buckets:     make(map[string]*TokenBucket),
		logger:      logger,
		stopCleanup: make(chan struct{}),
	}
	go limiter.cleanupRoutine()
	return limiter
}

func (l *VisitorRateLimiter) cleanupRoutine() {
	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCleanup:
			return
		}
	}
}

// cleanup drops buckets that have refilled completely; they carry no state
// a fresh bucket would not.
func (l *VisitorRateLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, bucket := range l.buckets {
		if bucket.Remaining() >= l.config.BurstSize {
			delete(l.buckets, key)
			removed++
		}
	}
	if removed > 0 {
		l.logger.Debug("Cleaned up rate limiter buckets", zap.Int("removed", removed), zap.Int("remaining", len(l.buckets)))
	}
}

// Stop stops the cleanup routine
func (l *VisitorRateLimiter) Stop() {
	close(l.stopCleanup)
}

// Allow checks if a message can be sent for key.
func (l *VisitorRateLimiter) Allow(key string) (allowed bool, remaining int) {
	l.mu.Lock()
	bucket, exists := l.buckets[key]
	if !exists {
		refillRate := float64(l.config.MessagesPerMinute) / 60.0
		bucket = NewTokenBucket(float64(l.config.BurstSize), refillRate)
		l.buckets[key] = bucket
	}
	l.mu.Unlock()

	allowed = bucket.Allow()
	return allowed, bucket.Remaining()
}

// RateLimitMiddleware limits chat messages per tenant and visitor. It must
// run after VisitorMiddleware.
func RateLimitMiddleware(limiter *VisitorRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		visitorID := c.GetString(VisitorKey)
		if visitorID == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "visitor not initialized"})
			return
		}

		key := c.Param("tenant") + ":" + visitorID
		allowed, remaining := limiter.Allow(key)
		limit := limiter.config.BurstSize

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			limiter.logger.Warn("Rate limit exceeded",
				zap.String("visitor_id", visitorID),
				zap.String("tenant_id", c.Param("tenant")),
				zap.Int("limit", limit))
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		c.Next()
	}
}

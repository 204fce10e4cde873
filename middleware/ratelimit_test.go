package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterWindowResets(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := &rateLimiter{
		config:  RateLimitConfig{MaxRequests: 1, Window: time.Minute},
		clients: make(map[string]window),
		now:     func() time.Time { return now },
	}

	allowed, _ := limiter.allow("10.0.0.1")
	assert.True(t, allowed)
	allowed, retryAfter := limiter.allow("10.0.0.1")
	assert.False(t, allowed)
	assert.Equal(t, 60, retryAfter)

	now = now.Add(2 * time.Minute)
	allowed, _ = limiter.allow("10.0.0.1")
	assert.True(t, allowed)

	allowed, _ = limiter.allow("")
	assert.True(t, allowed)
}

func TestRateLimiterMaxEntries(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := &rateLimiter{
		config:  RateLimitConfig{MaxRequests: 5, Window: time.Minute, MaxEntries: 2},
		clients: make(map[string]window),
		now:     func() time.Time { return now },
	}

	for _, ip := range []string{"a", "b", "c", "d"} {
		limiter.allow(ip)
		now = now.Add(time.Second)
	}
	assert.LessOrEqual(t, len(limiter.clients), 3)
	_, kept := limiter.clients["d"]
	assert.True(t, kept)
	_, dropped := limiter.clients["a"]
	assert.False(t, dropped)
}

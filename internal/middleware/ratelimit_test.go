package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowsWithinWindow(t *testing.T) {
	limiter := NewInMemoryRateLimiter(2, 50*time.Millisecond)

	assert.True(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))

	// Keys are independent.
	assert.True(t, limiter.Allow("b"))

	// The window slides: old entries expire and the key recovers.
	time.Sleep(60 * time.Millisecond)
	assert.True(t, limiter.Allow("a"))
}

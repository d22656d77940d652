package middleware

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRateLimit(t *testing.T) {
	// one request allowed, no refill within the test
	nm := RateLimit(rate.Limit(0.001), 1)

	res, err := runMiddleware(t, nm, newState(t, http.MethodGet, "/"), okHandler)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Status)

	res, err = runMiddleware(t, nm, newState(t, http.MethodGet, "/"), okHandler)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, res.Status)
}

func TestRateLimitSharedLimiter(t *testing.T) {
	limiter := rate.NewLimiter(rate.Limit(0.001), 2)
	a := RateLimitWithConfig(RateLimitConfig{Limiter: limiter})
	b := RateLimitWithConfig(RateLimitConfig{Limiter: limiter})

	// both middleware drain the same bucket
	res, err := runMiddleware(t, a, newState(t, http.MethodGet, "/"), okHandler)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Status)

	res, err = runMiddleware(t, b, newState(t, http.MethodGet, "/"), okHandler)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Status)

	res, err = runMiddleware(t, a, newState(t, http.MethodGet, "/"), okHandler)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, res.Status)
}

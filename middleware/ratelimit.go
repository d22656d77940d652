package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	"go-slim.dev/lattice"
)

// RateLimitConfig defines the config for RateLimit middleware.
type RateLimitConfig struct {
	// Rate is the sustained request rate per second.
	Rate rate.Limit
	// Burst is the maximum burst size. Zero falls back to 1.
	Burst int
	// Limiter overrides Rate/Burst with a caller-managed limiter, e.g.
	// one shared between several routers.
	Limiter *rate.Limiter
}

// RateLimit returns a middleware that rejects requests beyond the given
// sustained rate with a 429 response.
func RateLimit(r rate.Limit, burst int) lattice.NewMiddleware {
	return RateLimitWithConfig(RateLimitConfig{Rate: r, Burst: burst})
}

// RateLimitWithConfig returns a RateLimit middleware with config.
func RateLimitWithConfig(config RateLimitConfig) lattice.NewMiddleware {
	return config.ToMiddleware()
}

// ToMiddleware converts RateLimitConfig to middleware. The token bucket is
// created once and shared by every request instance.
func (config RateLimitConfig) ToMiddleware() lattice.NewMiddleware {
	limiter := config.Limiter
	if limiter == nil {
		burst := config.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(config.Rate, burst)
	}
	return lattice.SharedMiddleware(func(s *lattice.State, next lattice.HandlerFunc) (*lattice.Response, error) {
		if !limiter.Allow() {
			return lattice.NewResponse(http.StatusTooManyRequests), nil
		}
		return next(s)
	})
}

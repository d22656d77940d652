package middleware

import (
	"go-slim.dev/lattice"
)

// SecureConfig defines the config for Secure middleware. An empty field
// leaves the corresponding header unset.
type SecureConfig struct {
	XFrameOptions       string
	XXSSProtection      string
	XContentTypeOptions string
}

// DefaultSecureConfig is the default Secure middleware config.
var DefaultSecureConfig = SecureConfig{
	XFrameOptions:       "DENY",
	XXSSProtection:      "1; mode=block",
	XContentTypeOptions: "nosniff",
}

// Secure returns a middleware that attaches a conservative set of
// browser security headers to every response.
func Secure() lattice.NewMiddleware {
	return SecureWithConfig(DefaultSecureConfig)
}

// SecureWithConfig returns a Secure middleware with config.
func SecureWithConfig(config SecureConfig) lattice.NewMiddleware {
	return config.ToMiddleware()
}

// ToMiddleware converts SecureConfig to middleware.
func (config SecureConfig) ToMiddleware() lattice.NewMiddleware {
	return lattice.SharedMiddleware(func(s *lattice.State, next lattice.HandlerFunc) (*lattice.Response, error) {
		res, err := next(s)
		if res != nil {
			if config.XFrameOptions != "" {
				res.Header.Set("X-Frame-Options", config.XFrameOptions)
			}
			if config.XXSSProtection != "" {
				res.Header.Set("X-XSS-Protection", config.XXSSProtection)
			}
			if config.XContentTypeOptions != "" {
				res.Header.Set("X-Content-Type-Options", config.XContentTypeOptions)
			}
		}
		return res, err
	})
}

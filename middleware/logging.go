// Package middleware provides reusable middleware for the lattice routing
// core. Everything here follows the per-request factory model: the
// exported constructors return a lattice.NewMiddleware whose instances
// live for exactly one request.
package middleware

import (
	"time"

	"go-slim.dev/lattice"
)

// LoggingConfig defines the config for Logging middleware.
type LoggingConfig struct {
	// Logger receives one record per request. Defaults to the package
	// default logger.
	Logger *lattice.Logger
}

// Logging returns a middleware that logs each request with its method,
// path, status and elapsed time.
func Logging() lattice.NewMiddleware {
	return LoggingWithConfig(LoggingConfig{})
}

// LoggingWithConfig returns a Logging middleware with config.
func LoggingWithConfig(config LoggingConfig) lattice.NewMiddleware {
	return config.ToMiddleware()
}

// ToMiddleware converts LoggingConfig to middleware.
func (config LoggingConfig) ToMiddleware() lattice.NewMiddleware {
	if config.Logger == nil {
		config.Logger = lattice.DefaultLogger()
	}
	return lattice.NewMiddlewareFunc(func() (lattice.Middleware, error) {
		// 每个请求一个实例，开始时间就是实例诞生时间
		return &loggingMiddleware{logger: config.Logger, start: time.Now()}, nil
	})
}

type loggingMiddleware struct {
	logger *lattice.Logger
	start  time.Time
}

func (m *loggingMiddleware) Call(s *lattice.State, next lattice.HandlerFunc) (*lattice.Response, error) {
	res, err := next(s)

	attrs := []any{
		"request_id", s.RequestID(),
		"method", s.Method(),
		"path", s.URL().EscapedPath(),
		"elapsed", time.Since(m.start),
	}
	if err != nil {
		m.logger.Error("request failed", append(attrs, "err", err)...)
	} else {
		m.logger.Info("request served", append(attrs, "status", res.Status)...)
	}
	return res, err
}

package middleware

import (
	"go-slim.dev/lattice"
)

// Shared returns a middleware that places the same value into every
// request's State, retrievable downstream with lattice.Get[T].
//
// This is the deliberate escape hatch from per-request isolation: the
// value is visible to all requests concurrently, so it must be immutable
// or internally synchronized (a connection pool, a template cache).
func Shared[T any](value T) lattice.NewMiddleware {
	return lattice.SharedMiddleware(func(s *lattice.State, next lattice.HandlerFunc) (*lattice.Response, error) {
		lattice.Put(s, value)
		return next(s)
	})
}

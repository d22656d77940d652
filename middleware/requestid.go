package middleware

import (
	"go-slim.dev/lattice"
)

// RequestID returns a middleware that copies the request's unique
// identifier into the X-Request-Id response header, so clients can quote
// it when reporting problems.
func RequestID() lattice.NewMiddleware {
	return lattice.SharedMiddleware(func(s *lattice.State, next lattice.HandlerFunc) (*lattice.Response, error) {
		res, err := next(s)
		if res != nil {
			res.Header.Set(lattice.HeaderXRequestID, s.RequestID())
		}
		return res, err
	})
}

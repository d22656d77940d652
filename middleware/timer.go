package middleware

import (
	"strconv"
	"time"

	"go-slim.dev/lattice"
)

// HeaderXRuntimeMicroseconds reports the elapsed handling time.
const HeaderXRuntimeMicroseconds = "X-Runtime-Microseconds"

// Timer returns a middleware that measures how long the rest of the chain
// took and reports it in the X-Runtime-Microseconds response header.
func Timer() lattice.NewMiddleware {
	return lattice.NewMiddlewareFunc(func() (lattice.Middleware, error) {
		return &timerMiddleware{start: time.Now()}, nil
	})
}

type timerMiddleware struct {
	start time.Time
}

func (m *timerMiddleware) Call(s *lattice.State, next lattice.HandlerFunc) (*lattice.Response, error) {
	res, err := next(s)
	if res != nil {
		elapsed := time.Since(m.start).Microseconds()
		res.Header.Set(HeaderXRuntimeMicroseconds, strconv.FormatInt(elapsed, 10))
	}
	return res, err
}

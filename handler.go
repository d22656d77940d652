package lattice

// Handler serves a single request. A Handler instance is created fresh for
// every request by a NewHandler factory and discarded once the response has
// been produced, so a Handler may keep per-request fields without locking.
type Handler interface {
	Handle(s *State) (*Response, error)
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(s *State) (*Response, error)

// Handle implements Handler.
func (f HandlerFunc) Handle(s *State) (*Response, error) {
	return f(s)
}

// NewHandler is the factory invoked by the Dispatcher to obtain a Handler
// instance for the current request. Implementations must be safe for
// concurrent use; the instances they return need not be.
type NewHandler interface {
	NewHandler() (Handler, error)
}

// NewHandlerFunc adapts an ordinary function to the NewHandler interface.
type NewHandlerFunc func() (Handler, error)

// NewHandler implements NewHandler.
func (f NewHandlerFunc) NewHandler() (Handler, error) {
	return f()
}

// SingleHandler wraps a stateless HandlerFunc into a NewHandler whose
// factory hands out the same function for every request.
func SingleHandler(h HandlerFunc) NewHandler {
	return NewHandlerFunc(func() (Handler, error) {
		return h, nil
	})
}

// Middleware wraps the continuation of request handling. Call runs the
// middleware's pre-processing, invokes next zero or one times, and may run
// post-processing on the way back out (the onion model). Like Handler,
// instances are created per request from a NewMiddleware factory.
type Middleware interface {
	Call(s *State, next HandlerFunc) (*Response, error)
}

// MiddlewareFunc adapts an ordinary function to the Middleware interface.
type MiddlewareFunc func(s *State, next HandlerFunc) (*Response, error)

// Call implements Middleware.
func (f MiddlewareFunc) Call(s *State, next HandlerFunc) (*Response, error) {
	return f(s, next)
}

// NewMiddleware produces a fresh Middleware instance per request.
// Implementations must be safe for concurrent use.
type NewMiddleware interface {
	NewMiddleware() (Middleware, error)
}

// NewMiddlewareFunc adapts an ordinary function to the NewMiddleware
// interface.
type NewMiddlewareFunc func() (Middleware, error)

// NewMiddleware implements NewMiddleware.
func (f NewMiddlewareFunc) NewMiddleware() (Middleware, error) {
	return f()
}

// SharedMiddleware wraps a stateless MiddlewareFunc into a NewMiddleware
// whose factory hands out the same function for every request. The function
// must not retain per-request state between calls.
func SharedMiddleware(m MiddlewareFunc) NewMiddleware {
	return NewMiddlewareFunc(func() (Middleware, error) {
		return m, nil
	})
}

package middleware

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"go-slim.dev/lattice"
)

const defaultTracerName = "go-slim.dev/lattice/middleware"

// TracingConfig defines the config for Tracing middleware.
type TracingConfig struct {
	// TracerName names the tracer obtained from the global provider.
	TracerName string

	// TracerProvider overrides the global provider.
	TracerProvider trace.TracerProvider
}

// Tracing returns a middleware that opens an OpenTelemetry server span
// around each request and threads the span context through State for
// downstream work.
func Tracing() lattice.NewMiddleware {
	return TracingWithConfig(TracingConfig{})
}

// TracingWithConfig returns a Tracing middleware with config.
func TracingWithConfig(config TracingConfig) lattice.NewMiddleware {
	return config.ToMiddleware()
}

// ToMiddleware converts TracingConfig to middleware.
func (config TracingConfig) ToMiddleware() lattice.NewMiddleware {
	if config.TracerName == "" {
		config.TracerName = defaultTracerName
	}
	var tracer trace.Tracer
	if config.TracerProvider != nil {
		tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}

	return lattice.SharedMiddleware(func(s *lattice.State, next lattice.HandlerFunc) (*lattice.Response, error) {
		ctx, span := tracer.Start(s.Context(), s.Method()+" "+s.URL().EscapedPath(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", s.Method()),
				attribute.String("url.path", s.URL().EscapedPath()),
				attribute.String("request.id", s.RequestID()),
			),
		)
		defer span.End()
		s.SetContext(ctx)

		res, err := next(s)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if res != nil {
			span.SetAttributes(attribute.Int("http.response.status_code", res.Status))
			if res.Status >= 500 {
				span.SetStatus(codes.Error, "")
			}
		}
		return res, err
	})
}

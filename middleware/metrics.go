package middleware

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"go-slim.dev/lattice"
)

// MetricsConfig defines the config for Metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "lattice").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Metrics returns a middleware recording a request counter and a duration
// histogram, registered against the default Prometheus registerer.
func Metrics() lattice.NewMiddleware {
	return MetricsWithConfig(MetricsConfig{})
}

// MetricsWithConfig returns a Metrics middleware with config.
func MetricsWithConfig(config MetricsConfig) lattice.NewMiddleware {
	return config.ToMiddleware()
}

// ToMiddleware converts MetricsConfig to middleware. Collectors are
// created and registered once; every request instance shares them.
func (config MetricsConfig) ToMiddleware() lattice.NewMiddleware {
	if config.Namespace == "" {
		config.Namespace = "lattice"
	}
	if config.Buckets == nil {
		config.Buckets = prometheus.DefBuckets
	}
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(config.Registry)
	requestsTotal := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace:   config.Namespace,
		Subsystem:   config.Subsystem,
		Name:        "requests_total",
		Help:        "Total number of requests handled",
		ConstLabels: config.ConstLabels,
	}, []string{"method", "status"})
	requestDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   config.Namespace,
		Subsystem:   config.Subsystem,
		Name:        "request_duration_seconds",
		Help:        "Request handling duration in seconds",
		ConstLabels: config.ConstLabels,
		Buckets:     config.Buckets,
	}, []string{"method"})

	return lattice.NewMiddlewareFunc(func() (lattice.Middleware, error) {
		return &metricsMiddleware{
			requestsTotal:   requestsTotal,
			requestDuration: requestDuration,
			start:           time.Now(),
		}, nil
	})
}

type metricsMiddleware struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	start           time.Time
}

func (m *metricsMiddleware) Call(s *lattice.State, next lattice.HandlerFunc) (*lattice.Response, error) {
	res, err := next(s)

	status := "error"
	if err == nil && res != nil {
		status = strconv.Itoa(res.Status)
	}
	m.requestsTotal.WithLabelValues(s.Method(), status).Inc()
	m.requestDuration.WithLabelValues(s.Method()).Observe(time.Since(m.start).Seconds())
	return res, err
}

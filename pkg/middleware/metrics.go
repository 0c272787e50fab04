package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/trellis-http/trellis/pkg/common"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Registerer the collectors are registered with. Defaults to the
	// prometheus default registerer.
	Registerer prometheus.Registerer

	// Namespace and Subsystem prefix the metric names.
	Namespace string
	Subsystem string
}

// Metrics creates a middleware that records a request counter and a latency
// histogram labeled by method, path, and status.
//
// The path label is the raw request path; installing this inside a router
// that serves high-cardinality paths will blow up the label space, so pair
// it with bounded route shapes.
func Metrics(config MetricsConfig) common.Middleware {
	registerer := config.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Subsystem: config.Subsystem,
		Name:      "requests_total",
		Help:      "Total number of HTTP requests processed.",
	}, []string{"method", "path", "status"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: config.Namespace,
		Subsystem: config.Subsystem,
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency distribution.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	registerer.MustRegister(requests, duration)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			requests.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rw.statusCode)).Inc()
			duration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
		})
	}
}

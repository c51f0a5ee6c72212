package http

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sagarc03/h2server"
)

// Metrics collects Prometheus metrics for served requests.
//
// Metrics collected:
//   - h2server_requests_total: Counter of requests by method and status code
//   - h2server_request_duration_seconds: Histogram of request duration by method
//   - h2server_dispatch_outcomes_total: Counter of route walk outcomes
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
	gatherer prometheus.Gatherer
}

// NewMetrics registers the metrics with a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "h2server",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests served",
		}, []string{"method", "code"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "h2server",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "h2server",
			Name:      "dispatch_outcomes_total",
			Help:      "Total number of route walks by outcome",
		}, []string{"outcome"}),

		gatherer: registry,
	}
}

// Middleware records every request passing through it.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}

// ObserveDispatch counts the outcome of one route walk.
func (m *Metrics) ObserveDispatch(err error) {
	m.outcomes.WithLabelValues(outcome(err)).Inc()
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "served"
	case errors.Is(err, h2server.ErrNotFound), errors.Is(err, h2server.ErrNoRouteMatched):
		return "not_found"
	case errors.Is(err, h2server.ErrUpstream):
		return "upstream_error"
	case errors.Is(err, h2server.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, fs.ErrPermission):
		return "forbidden"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "fault"
	}
}

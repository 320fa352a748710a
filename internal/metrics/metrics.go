// Package metrics collects Prometheus metrics for balance resolution and
// the HTTP API.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/splitter/internal/calculator"
)

// Result labels for splitter_resolve_total.
const (
	ResultOK            = "ok"
	ResultUnknownPerson = "unknown_person"
	ResultError         = "error"
)

// Metrics holds the collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	resolveTotal    *prometheus.CounterVec
	itemsProcessed  prometheus.Counter
	resolveDuration prometheus.Histogram
	requestsTotal   *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	resolveTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "splitter_resolve_total",
		Help: "Balance resolutions by result.",
	}, []string{"result"})
	items := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "splitter_items_processed_total",
		Help: "Receipt items processed by successful resolutions.",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "splitter_resolve_duration_seconds",
		Help:    "Time spent resolving balances.",
		Buckets: prometheus.DefBuckets,
	})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "splitter_http_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"route", "code"})
	registry.MustRegister(resolveTotal, items, duration, requests)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		resolveTotal:    resolveTotal,
		itemsProcessed:  items,
		resolveDuration: duration,
		requestsTotal:   requests,
	}
}

// Handler returns the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveResolve records one resolution of items receipt lines.
func (m *Metrics) ObserveResolve(items int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.resolveDuration.Observe(elapsed.Seconds())
	switch {
	case err == nil:
		m.resolveTotal.WithLabelValues(ResultOK).Inc()
		m.itemsProcessed.Add(float64(items))
	case errors.Is(err, calculator.ErrUnknownPerson):
		m.resolveTotal.WithLabelValues(ResultUnknownPerson).Inc()
	default:
		m.resolveTotal.WithLabelValues(ResultError).Inc()
	}
}

// Middleware counts HTTP requests by matched route pattern and status code.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

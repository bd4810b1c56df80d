// Package metrics holds the Prometheus collectors of the highlights service.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tennishighlights/internal/core/domain"
)

const namespace = "highlights"

// Metrics groups the service collectors.
type Metrics struct {
	extractions *prometheus.CounterVec
	storeOps    *prometheus.CounterVec
	rotations   prometheus.Counter
	requests    *prometheus.HistogramVec
	gatherer    prometheus.Gatherer
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Metadata extractions by outcome.",
		}, []string{"outcome"}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Highlight store operations by operation and result.",
		}, []string{"op", "result"}),
		rotations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "today_rotations_total",
			Help:      "Explicit today's highlight rotations.",
		}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),
		gatherer: reg,
	}
	reg.MustRegister(m.extractions, m.storeOps, m.rotations, m.requests)
	return m
}

// ObserveExtraction counts one extraction by its outcome.
func (m *Metrics) ObserveExtraction(err error) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(outcome(err)).Inc()
}

// ObserveStore counts one store operation.
func (m *Metrics) ObserveStore(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	switch {
	case err == nil:
	case domain.IsValidation(err):
		result = "invalid"
	default:
		result = "error"
	}
	m.storeOps.WithLabelValues(op, result).Inc()
}

// ObserveRotation counts one explicit rotation.
func (m *Metrics) ObserveRotation() {
	if m == nil {
		return
	}
	m.rotations.Inc()
}

// ObserveRequest records the latency of one HTTP request.
func (m *Metrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	e, ok := domain.AsExtractionError(err)
	if !ok {
		return string(domain.KindProviderError)
	}
	if e.Kind == domain.KindUnsupported {
		return "unsupported_" + e.Reason
	}
	return string(e.Kind)
}

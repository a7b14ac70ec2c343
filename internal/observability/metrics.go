package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors for the service.
type Metrics struct {
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	errors         *prometheus.CounterVec
	bridgeOutcomes *prometheus.CounterVec
}

// NewMetrics builds and registers collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by path, method and status.",
		}, []string{"path", "method", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total HTTP errors by path, method and error code.",
		}, []string{"path", "method", "code"}),
		bridgeOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_outcomes_total",
			Help: "Bridge attempts by terminal state (existing, confirmed, degraded, failed).",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.requestLatency, m.errors, m.bridgeOutcomes)
	}
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestLatency.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// RecordBridgeOutcome increments the bridge outcome counter. The degraded
// outcome is counted here so session-store outages stay visible even though
// the request itself reports success.
func (m *Metrics) RecordBridgeOutcome(outcome string) {
	if m == nil {
		return
	}
	m.bridgeOutcomes.WithLabelValues(outcome).Inc()
}

package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus collectors for the HTTP layer and the
// escalation worker.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	EscalationCycles prometheus.Counter
	TicketsEscalated prometheus.Counter
	EscalationSkips  *prometheus.CounterVec
	EscalationErrors prometheus.Counter
}

// NewMetrics creates and registers all collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latencies in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		EscalationCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "escalation_cycles_total",
			Help: "Poll cycles run by the escalation scheduler.",
		}),
		TicketsEscalated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "escalation_tickets_total",
			Help: "Tickets auto-reassigned after a timeout.",
		}),
		EscalationSkips: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escalation_skips_total",
				Help: "Tickets skipped by an escalation guard.",
			},
			[]string{"guard"},
		),
		EscalationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "escalation_errors_total",
			Help: "Per-ticket escalation failures.",
		}),
	}

	m.registry.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.EscalationCycles,
		m.TicketsEscalated,
		m.EscalationSkips,
		m.EscalationErrors,
	)
	return m
}

// Handler exposes the registry for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest observes one finished HTTP request.
func (m *Metrics) RecordRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.HTTPRequests.WithLabelValues(method, path, code).Inc()
	m.HTTPDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

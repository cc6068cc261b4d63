// Package metrics exposes Prometheus collectors for HTTP traffic and ledger
// activity.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "xecret",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xecret",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "xecret",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	ledgerOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xecret",
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Ledger operations by kind and outcome.",
		},
		[]string{"operation", "success"},
	)

	settlementRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xecret",
			Subsystem: "ledger",
			Name:      "settlements_total",
			Help:      "Withdrawals completed by the settlement worker.",
		},
		[]string{"success"},
	)

	sessionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "xecret",
			Subsystem: "stream",
			Name:      "sessions_created_total",
			Help:      "Streaming sessions issued.",
		},
	)

	violations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xecret",
			Subsystem: "stream",
			Name:      "violations_total",
			Help:      "Content-protection violations reported by clients.",
		},
		[]string{"type"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		ledgerOperations,
		settlementRuns,
		sessionsCreated,
		violations,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RequestStarted() {
	httpInFlight.Inc()
}

func RequestFinished(method, route string, status string, duration time.Duration) {
	httpInFlight.Dec()
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, status).Inc()
	httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordLedgerOperation(operation string, success bool) {
	ledgerOperations.WithLabelValues(operation, boolLabel(success)).Inc()
}

func RecordSettlement(success bool) {
	settlementRuns.WithLabelValues(boolLabel(success)).Inc()
}

func RecordSession() {
	sessionsCreated.Inc()
}

func RecordViolation(kind string) {
	violations.WithLabelValues(kind).Inc()
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

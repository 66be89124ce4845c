package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FormSubmissions counts flow submissions by flow and outcome
	// (success|failure|invalid|pending|error).
	FormSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authflow_form_submissions_total",
			Help: "Total number of auth form submissions",
		},
		[]string{"flow", "outcome"},
	)

	// ValidationFailures counts inline field errors by flow and field.
	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authflow_validation_failures_total",
			Help: "Total number of field validation failures",
		},
		[]string{"flow", "field"},
	)

	// BackendLatency measures simulated backend call durations.
	BackendLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "authflow_backend_latency_seconds",
			Help:    "Simulated backend call latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "result"},
	)

	// PendingSubmissions tracks submissions currently awaiting the backend.
	PendingSubmissions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "authflow_pending_submissions",
			Help: "Number of in-flight form submissions",
		},
	)

	// HTTPRequests counts requests by surface (page|api|probe|static) and status class.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authflow_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"surface", "class"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "authflow_http_latency_seconds",
			Help:    "HTTP endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// ProbeUp reports the last health probe outcome per component (1 up, 0.5 degraded, 0 down).
	ProbeUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "authflow_health_probe_up",
			Help: "Outcome of the last health probe by component",
		},
		[]string{"component"},
	)
)

package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predmarket_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "predmarket_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	WagersRecordedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "predmarket_wagers_recorded_total",
			Help: "Total number of wagers accounted against deposit limits.",
		},
	)

	WagerAmountTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "predmarket_wager_amount_total",
			Help: "Sum of wager amounts accounted against deposit limits.",
		},
	)

	WindowRolloversTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predmarket_limit_window_rollovers_total",
			Help: "Deposit limit windows reset on read.",
		},
		[]string{"window"},
	)

	LimitExceededTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predmarket_limit_exceeded_total",
			Help: "Wagers that left a window's usage above its ceiling.",
		},
		[]string{"window"},
	)

	AssessmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predmarket_self_assessments_total",
			Help: "Completed self-assessments by risk level.",
		},
		[]string{"risk_level"},
	)

	TimeOutsStartedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "predmarket_timeouts_started_total",
			Help: "Total number of time-out periods started.",
		},
	)

	AuditEventsPersistedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predmarket_audit_events_persisted_total",
			Help: "Audit events consumed from NATS, by outcome.",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		WagersRecordedTotal,
		WagerAmountTotal,
		WindowRolloversTotal,
		LimitExceededTotal,
		AssessmentsTotal,
		TimeOutsStartedTotal,
		AuditEventsPersistedTotal,
	)
}

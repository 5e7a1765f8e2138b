package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VerificationsIssued counts verification tokens written to the store.
	VerificationsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_verifications_issued_total",
			Help: "Total number of email verification tokens issued",
		},
	)

	// VerificationChecks counts token checks by result (valid|invalid|expired).
	VerificationChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_verification_checks_total",
			Help: "Total number of verification token checks",
		},
		[]string{"result"},
	)

	// VerificationDispatch counts verification emails by outcome (sent|fallback|failed).
	VerificationDispatch = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_verification_dispatch_total",
			Help: "Total number of verification notifications by outcome",
		},
		[]string{"outcome"},
	)

	// VerificationsPurged counts expired tokens removed by the sweeper.
	VerificationsPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_verifications_purged_total",
			Help: "Total number of expired verification tokens purged",
		},
	)

	// AuthAttempts records login attempts by kind (user|admin|google) and result.
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"kind", "result"},
	)

	// OrdersPlaced counts successfully created orders.
	OrdersPlaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Total number of orders placed",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

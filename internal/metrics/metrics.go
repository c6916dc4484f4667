// Package metrics provides Prometheus metrics for the session guards.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GuardOutcomesTotal counts guard decisions by guard and outcome.
	GuardOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studentpay",
			Name:      "guard_outcomes_total",
			Help:      "Total number of guard evaluations by outcome",
		},
		[]string{"guard", "outcome"},
	)

	// RefreshTotal counts token refresh attempts by result.
	RefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studentpay",
			Name:      "token_refresh_total",
			Help:      "Total number of access token refreshes by result",
		},
		[]string{"result"},
	)

	// VerificationChecksTotal counts verification checks by source and state.
	VerificationChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studentpay",
			Name:      "verification_checks_total",
			Help:      "Total number of verification checks by source and resulting state",
		},
		[]string{"source", "state"},
	)

	// BackendRequestDuration measures backend calls made by the guards.
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "studentpay",
			Name:      "backend_request_duration_seconds",
			Help:      "Duration of backend calls made by the guards in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// ActiveVisitors tracks visitor sessions held by the gateway.
	ActiveVisitors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "studentpay",
			Name:      "active_visitors",
			Help:      "Number of visitor sessions held in memory",
		},
	)
)

// RecordGuardOutcome records one guard decision.
func RecordGuardOutcome(guard, outcome string) {
	GuardOutcomesTotal.WithLabelValues(guard, outcome).Inc()
}

// RecordRefresh records a refresh attempt.
func RecordRefresh(result string) {
	RefreshTotal.WithLabelValues(result).Inc()
}

// RecordVerificationCheck records a verification check.
func RecordVerificationCheck(source, state string) {
	VerificationChecksTotal.WithLabelValues(source, state).Inc()
}

// ObserveBackendCall records the duration of a backend call.
func ObserveBackendCall(operation string, seconds float64) {
	BackendRequestDuration.WithLabelValues(operation).Observe(seconds)
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptdeck_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// Registrations counts user registrations by outcome (created|duplicate|error).
	Registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptdeck_registrations_total",
			Help: "Total number of registration attempts",
		},
		[]string{"result"},
	)

	// PromptSubmissions counts prompt submissions by listing type (marketplace|shared).
	PromptSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptdeck_prompt_submissions_total",
			Help: "Total number of prompt submissions",
		},
		[]string{"type"},
	)

	// ModerationDecisions counts admin moderation outcomes (approved|rejected).
	ModerationDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptdeck_moderation_decisions_total",
			Help: "Total number of admin moderation decisions",
		},
		[]string{"decision"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "promptdeck_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Package observability exposes prometheus metrics for the tutoring
// pipeline.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ChatTurns counts completed chat turns by outcome status.
	ChatTurns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutor_chat_turns_total",
			Help: "Total number of chat turns by status",
		},
		[]string{"status"},
	)

	// ModerationFlags counts moderation gate hits by category.
	ModerationFlags = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutor_moderation_flags_total",
			Help: "Total number of flagged messages by category",
		},
		[]string{"category"},
	)

	// ProviderFailures counts completion provider errors recovered via
	// fallback replies.
	ProviderFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tutor_provider_failures_total",
			Help: "Total number of completion provider failures",
		},
	)

	// SessionsStarted counts created sessions.
	SessionsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tutor_sessions_started_total",
			Help: "Total number of sessions started",
		},
	)
)

func init() {
	prometheus.MustRegister(ChatTurns, ModerationFlags, ProviderFailures, SessionsStarted)
}

// RegisterActiveSessions wires a live-session gauge to the session store.
func RegisterActiveSessions(count func() float64) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "tutor_active_sessions",
			Help: "Number of live sessions",
		},
		count,
	))
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Package metrics exposes the simulator's network and consensus counters
// as Prometheus gauges/counters, the way luxfi-consensus's api/metrics
// wraps a prometheus.Registry for its engines.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// MessagesSent counts logical unicasts scheduled by the network
	// simulator, labeled by session and message kind. It increments on
	// every scheduled send regardless of simulated delivery outcome.
	MessagesSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hotstuff_sim",
		Name:      "messages_sent_total",
		Help:      "Logical unicasts scheduled by the network simulator.",
	}, []string{"session", "kind"})

	// PhasesAdvanced counts phase transitions per session.
	PhasesAdvanced = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hotstuff_sim",
		Name:      "phases_advanced_total",
		Help:      "Phase transitions observed per session.",
	}, []string{"session"})

	// ActiveSessions tracks how many sessions the session manager holds,
	// whatever their status.
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hotstuff_sim",
		Name:      "active_sessions",
		Help:      "Number of sessions held by the session manager.",
	})

	// ViewChanges counts view-change events across all sessions.
	ViewChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hotstuff_sim",
		Name:      "view_changes_total",
		Help:      "View-change timeouts fired per session.",
	}, []string{"session"})
)

// Registry returns a fresh registry with all simulator metrics
// registered, for exposition on /metrics.
func Registry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(MessagesSent, PhasesAdvanced, ActiveSessions, ViewChanges)
	return reg
}

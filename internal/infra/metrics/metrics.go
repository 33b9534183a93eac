// Package metrics provides Prometheus metrics for the engagement
// engine: deltas, grants, badges, levels, and persistence failures.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Deltas ─────────────────────────────────────────────────────────────────

// DeltasApplied tracks merged stat deltas by action type.
var DeltasApplied = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "engage",
	Name:      "deltas_applied_total",
	Help:      "Total stat deltas merged, by action type.",
}, []string{"type"})

// DeltasRejected tracks deltas rejected before any write.
var DeltasRejected = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "engage",
	Name:      "deltas_rejected_total",
	Help:      "Total deltas rejected by validation, by action type.",
}, []string{"type"})

// ─── Points ─────────────────────────────────────────────────────────────────

// PointsGranted tracks total points granted across all users.
var PointsGranted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "engage",
	Name:      "points_granted_total",
	Help:      "Total points granted.",
})

// GrantsRecorded tracks individual ledger grants.
var GrantsRecorded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "engage",
	Name:      "grants_recorded_total",
	Help:      "Total ledger grant operations.",
})

// ─── Badges & Levels ────────────────────────────────────────────────────────

// BadgesAwarded tracks badge awards by badge id.
var BadgesAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "engage",
	Name:      "badges_awarded_total",
	Help:      "Total badges awarded, by badge id.",
}, []string{"badge"})

// LevelUps tracks level-up transitions.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "engage",
	Name:      "level_ups_total",
	Help:      "Total level-up transitions.",
})

// ─── Failures ───────────────────────────────────────────────────────────────

// PersistenceFailures tracks swallowed best-effort write failures.
var PersistenceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "engage",
	Name:      "persistence_failures_total",
	Help:      "Total persistence failures swallowed at the call site, by operation.",
}, []string{"op"})

// ─── Notifications ──────────────────────────────────────────────────────────

// NoticesQueued tracks ephemeral notifications queued, by kind.
var NoticesQueued = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "engage",
	Name:      "notices_queued_total",
	Help:      "Total ephemeral notifications queued, by kind.",
}, []string{"kind"})

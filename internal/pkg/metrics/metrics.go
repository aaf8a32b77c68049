// Package metrics holds the Prometheus collectors recorded by the core services
// and the hashing pool. HTTP collectors live with the router in internal/api/metrics.
//
// Collectors are registered with the default registry on package init via
// promauto; expose them with promhttp.Handler().
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every collector of the service.
const Namespace = "identity"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register/login outcomes.
// Labels:
//   - flow: "register" or "login"
//   - result: "success", "conflict", "failed", "throttled", "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of registration and login attempts, by outcome.",
	},
	[]string{"flow", "result"},
)

// IdentityResolutionsTotal counts bearer-token resolutions on protected routes.
// Label:
//   - result: "ok" or the rejection reason (e.g. "invalid token", "user not found")
var IdentityResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "identity_resolutions_total",
		Help:      "Total number of bearer-token resolutions, by result.",
	},
	[]string{"result"},
)

// ── Hashing pool metrics ──────────────────────────────────────────────────────

// HashQueueDepth tracks the number of hashing jobs waiting for a worker.
var HashQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "hash_queue_depth",
		Help:      "Current number of password hashing jobs pending in the worker pool.",
	},
)

// HashDuration measures how long a single hash or verify takes on a worker.
// Label:
//   - op: "hash" or "verify"
var HashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "hash_duration_seconds",
		Help:      "Duration of password hashing operations on pool workers.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	},
	[]string{"op"},
)

// Package metrics defines and registers all custom Prometheus metrics for
// the shipment tracker API. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics register with the default Prometheus registry at package init;
// the /metrics endpoint exposes them alongside the HTTP request metrics
// collected by echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "shipment_tracker"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// UsersRegisteredTotal counts successfully registered accounts.
var UsersRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of user accounts registered.",
	},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)

// ── Shipment metrics ──────────────────────────────────────────────────────────

// ShipmentsCreatedTotal counts newly created shipments.
// Label:
//   - status: the initial shipment status ("Pending", "InTransit", "Delivered")
var ShipmentsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shipments_created_total",
		Help:      "Total number of shipments created, by initial status.",
	},
	[]string{"status"},
)

// StatusUpdatesTotal counts shipment status updates.
// Label:
//   - status: the new status applied
var StatusUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_updates_total",
		Help:      "Total number of shipment status updates, by new status.",
	},
	[]string{"status"},
)

// ShipmentsDeletedTotal counts hard-deleted shipments.
var ShipmentsDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shipments_deleted_total",
		Help:      "Total number of shipments deleted.",
	},
)

// StatsCacheTotal counts stats cache lookups.
// Label:
//   - result: "hit" or "miss"
var StatsCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stats_cache_total",
		Help:      "Total number of stats cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

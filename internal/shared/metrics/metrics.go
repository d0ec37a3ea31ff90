// Package metrics holds the Prometheus collectors shared by the catalog
// services and HTTP middleware.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeAccepted   = "accepted"
	OutcomeCycle      = "cycle"
	OutcomeApplied    = "applied"
	OutcomeNoop       = "noop"
	OutcomeUnresolved = "unresolved"
	OutcomeError      = "error"
)

var (
	// HierarchyChecks counts cycle-guard decisions by operation and outcome.
	HierarchyChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_hierarchy_checks_total",
		Help: "Cycle checks on hierarchy mutations by operation and outcome",
	}, []string{"operation", "outcome"})

	// Reconciliations counts set reconciliations by association and outcome.
	Reconciliations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_reconcile_total",
		Help: "Set reconciliations by association and outcome",
	}, []string{"association", "outcome"})

	// ReconcileChanges counts links added or removed by reconciliations.
	ReconcileChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_reconcile_changes_total",
		Help: "Links added or removed by set reconciliations",
	}, []string{"association", "kind"})

	// TreeAuditFindings holds the counts found by the latest category tree
	// audit, by kind.
	TreeAuditFindings = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "catalog_tree_audit_findings",
		Help: "Problems found by the latest category tree audit",
	}, []string{"kind"})

	TreeAuditLastRun = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_tree_audit_last_run_timestamp_seconds",
		Help: "Unix time of the latest completed category tree audit",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	}, []string{"method", "route"})
)

// ObserveCheck records one cycle-guard decision. err is the value returned
// by the check: nil, a cycle error, or a store failure.
func ObserveCheck(operation string, err error, isCycle bool) {
	outcome := OutcomeAccepted
	switch {
	case isCycle:
		outcome = OutcomeCycle
	case err != nil:
		outcome = OutcomeError
	}
	HierarchyChecks.WithLabelValues(operation, outcome).Inc()
}

// ObserveReconcile records the outcome and size of one reconciliation.
func ObserveReconcile(association, outcome string, added, removed int) {
	Reconciliations.WithLabelValues(association, outcome).Inc()
	if added > 0 {
		ReconcileChanges.WithLabelValues(association, "add").Add(float64(added))
	}
	if removed > 0 {
		ReconcileChanges.WithLabelValues(association, "remove").Add(float64(removed))
	}
}

// ObserveTreeAudit publishes the findings of one completed tree audit.
func ObserveTreeAudit(findings map[string]int) {
	for kind, n := range findings {
		TreeAuditFindings.WithLabelValues(kind).Set(float64(n))
	}
	TreeAuditLastRun.Set(float64(time.Now().Unix()))
}

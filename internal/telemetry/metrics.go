package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// MutationsFired counts scheduled mutation firings by outcome.
	MutationsFired = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nmtd",
			Name:      "mutations_fired_total",
			Help:      "Total number of mutation firings, by push outcome",
		},
		[]string{"outcome"},
	)

	// ActiveRules tracks the number of armed mutation schedules.
	ActiveRules = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "nmtd",
			Name:      "mutation_rules_active",
			Help:      "Number of currently armed mutation schedules",
		},
	)

	// DecodeErrors counts mutation characteristics skipped due to decode failures.
	DecodeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nmtd",
			Name:      "mutation_decode_errors_total",
			Help:      "Total number of mutation characteristics rejected at decode time",
		},
		[]string{"kind"},
	)

	// SyncErrors counts failed catalog synchronization operations.
	SyncErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nmtd",
			Name:      "catalog_sync_errors_total",
			Help:      "Total number of failed catalog synchronization operations",
		},
		[]string{"op"},
	)

	// RiskUpdates counts per-instance risk score pushes.
	RiskUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nmtd",
			Name:      "risk_updates_total",
			Help:      "Total number of per-instance risk score updates",
		},
		[]string{"outcome"},
	)

	// PoliciesTranslated counts security policy documents by category and outcome.
	PoliciesTranslated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nmtd",
			Name:      "policies_translated_total",
			Help:      "Total number of security policy documents processed",
		},
		[]string{"category", "outcome"},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// This function is idempotent and can be called multiple times safely.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(MutationsFired)
		prometheus.DefaultRegisterer.Register(ActiveRules)
		prometheus.DefaultRegisterer.Register(DecodeErrors)
		prometheus.DefaultRegisterer.Register(SyncErrors)
		prometheus.DefaultRegisterer.Register(RiskUpdates)
		prometheus.DefaultRegisterer.Register(PoliciesTranslated)
	})
}

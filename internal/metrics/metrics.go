// Package metrics defines the Prometheus instrumentation for the ledger core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_orders_created_total",
		Help: "Total number of orders created",
	})

	ItemsAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_items_added_total",
		Help: "Total number of line items added",
	})

	PaymentsMarkedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_payments_marked_total",
		Help: "Total number of participants marked paid",
	})

	LifecycleTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_lifecycle_transitions_total",
		Help: "Total number of order lifecycle transitions",
	}, []string{"to"})

	MutationsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_mutations_rejected_total",
		Help: "Total number of mutations rejected by validation or the lifecycle guard",
	}, []string{"op"})

	RecomputeTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_recompute_total",
		Help: "Total number of participant recomputation passes",
	})

	RecomputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ledger_recompute_duration_seconds",
		Help:    "Latency of participant recomputation passes",
		Buckets: prometheus.DefBuckets,
	})
)

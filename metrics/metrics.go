// Package metrics holds the Prometheus collectors shared across services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RelationshipTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_relationship_transitions_total",
		Help: "Relationship state transitions by kind (requested, accepted, rejected, cancelled, unfriended).",
	}, []string{"transition"})

	LikeOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_like_operations_total",
		Help: "Like and unlike calls by outcome.",
	}, []string{"op", "result"})

	CounterRepairs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "social_like_counter_repairs_total",
		Help: "Content items whose like_count was rewritten by reconciliation.",
	})

	ReconcileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "social_like_reconcile_duration_seconds",
		Help:    "Duration of a full like counter reconciliation pass.",
		Buckets: prometheus.DefBuckets,
	})
)

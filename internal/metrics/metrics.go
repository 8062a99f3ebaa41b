// Package metrics holds the Prometheus collectors exported on the metrics
// port.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

var (
	AssignmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_assignments_total",
			Help: "Tickets assigned to an engineer, by risk level",
		},
		[]string{"risk_level"},
	)

	UnmatchedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "triage_unmatched_total",
			Help: "Tickets for which no available engineer was found",
		},
	)

	CRINormalized = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "triage_cri_normalized",
			Help:    "Distribution of normalized composite risk index",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		},
	)

	AssignmentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "triage_assignment_duration_seconds",
			Help: "Duration of a single ticket assignment in seconds",
		},
	)

	RosterFetchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "triage_roster_fetch_failures_total",
			Help: "Roster provider calls that failed or timed out",
		},
	)

	ArtifactCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_artifact_cache_total",
			Help: "Artifact cache lookups by artifact and result",
		},
		[]string{"artifact", "result"},
	)
)

package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Probe outcome labels.
const (
	OutcomePopulated = "populated"
	OutcomeTemplate  = "template"
	OutcomeEmpty     = "empty"
)

var (
	// ProbesTotal counts classified probes by outcome.
	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lastpage_probes_total",
			Help: "Total number of page probes by classification outcome",
		},
		[]string{"outcome"}, // "populated", "template", "empty"
	)

	// BatchesTotal counts probe batches issued.
	BatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lastpage_batches_total",
			Help: "Total number of probe batches issued",
		},
	)

	// BatchDuration tracks how long a batch takes to complete.
	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lastpage_batch_duration_seconds",
			Help:    "Probe batch duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	// ScopeAdvancesTotal counts scopes searched without finding an empty page.
	ScopeAdvancesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lastpage_scope_advances_total",
			Help: "Total number of search scope advances",
		},
	)

	// DiscoveryDuration tracks the duration of whole discovery runs.
	DiscoveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lastpage_discovery_duration_seconds",
			Help:    "Duration of last-page discovery runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)
)

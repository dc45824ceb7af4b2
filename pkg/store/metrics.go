package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsWritten counts records stored
	RecordsWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lastpage_store_records_written_total",
			Help: "Total number of discovery records written",
		},
	)

	// StoreErrors tracks store operation errors
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lastpage_store_errors_total",
			Help: "Total number of store operation errors",
		},
		[]string{"operation"}, // "record", "last", "delete"
	)
)

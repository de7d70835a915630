package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SitesProcessed tracks sites fully processed per mode
	SitesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spsweep_sites_processed_total",
			Help: "Total number of sites fully processed",
		},
		[]string{"mode"},
	)

	// ListsProcessed tracks lists processed per mode
	ListsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spsweep_lists_processed_total",
			Help: "Total number of lists processed",
		},
		[]string{"mode"},
	)

	// ItemsActedOn tracks mutations performed per mode
	ItemsActedOn = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spsweep_items_acted_on_total",
			Help: "Total number of items or lists mutated",
		},
		[]string{"mode"},
	)

	// RemoteCallsTotal tracks remote operations per description
	RemoteCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spsweep_remote_calls_total",
			Help: "Total number of remote operations attempted",
		},
		[]string{"operation"},
	)

	// ThrottleEventsTotal tracks throttling responses from the service
	ThrottleEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spsweep_throttle_events_total",
			Help: "Total number of throttled (429/503) responses",
		},
		[]string{"operation"},
	)

	// RetriesExhaustedTotal tracks operations that failed every attempt
	RetriesExhaustedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spsweep_retries_exhausted_total",
			Help: "Total number of operations that exhausted their retry budget",
		},
		[]string{"operation"},
	)

	// UnitsSkipped tracks skip-and-continue decisions per nesting level
	UnitsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spsweep_units_skipped_total",
			Help: "Total number of sites, lists or items skipped after an error",
		},
		[]string{"level"},
	)

	// PacingWaitSeconds tracks time spent in proactive pacing
	PacingWaitSeconds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spsweep_pacing_wait_seconds_total",
			Help: "Total seconds spent in proactive inter-operation pacing",
		},
		[]string{"level"},
	)
)

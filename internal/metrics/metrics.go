// Package metrics holds the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PaymentsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "casaluna",
		Name:      "payments_recorded_total",
		Help:      "Payments appended to the ledger, by settlement channel.",
	}, []string{"channel"})

	ReconciliationsRun = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "casaluna",
		Name:      "shift_reconciliations_total",
		Help:      "Shift reconciliation passes executed.",
	})

	SnapshotsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "casaluna",
		Name:      "occupancy_snapshots_written_total",
		Help:      "Historical room day snapshots persisted.",
	})
)

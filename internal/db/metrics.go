package db

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	maintenanceRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scankit_db_maintenance_runs_total",
			Help: "Total number of maintenance operations",
		},
	)

	maintenanceOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scankit_db_maintenance_outcomes_total",
			Help: "Total number of maintenance operations by outcome",
		},
		[]string{"status"},
	)

	maintenanceDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scankit_db_maintenance_duration_seconds",
			Help:    "Duration of maintenance operations",
			Buckets: prometheus.DefBuckets,
		},
	)

	walCheckpoints = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scankit_db_wal_checkpoint_total",
			Help: "Total number of WAL checkpoint operations",
		},
		[]string{"mode"},
	)

	vacuumRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scankit_db_vacuum_total",
			Help: "Total number of VACUUM operations",
		},
	)

	dbSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scankit_db_size_bytes",
			Help: "Database size in bytes, WAL and shared memory files included",
		},
	)
)

func maintenanceRunsInc() {
	maintenanceRuns.Inc()
}

func maintenanceOutcomeInc(status string) {
	maintenanceOutcomes.WithLabelValues(status).Inc()
}

func maintenanceDurationLog(d time.Duration) {
	maintenanceDuration.Observe(d.Seconds())
}

func walCheckpointInc(mode string) {
	walCheckpoints.WithLabelValues(mode).Inc()
}

func vacuumRunsInc() {
	vacuumRuns.Inc()
}

func dbSizeLog(size int64) {
	dbSize.Set(float64(size))
}

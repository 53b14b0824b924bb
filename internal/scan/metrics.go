package scan

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeRecords   = "records"
	outcomeTruncated = "truncated"
	outcomeEmpty     = "empty"
	outcomeFailed    = "failed"
)

var (
	windowsFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scankit_scan_windows_total",
			Help: "Total number of block windows fetched by outcome",
		},
		[]string{"outcome"},
	)

	recordsEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scankit_scan_records_emitted_total",
			Help: "Total number of records emitted by block range scans",
		},
	)

	windowSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scankit_scan_window_size_blocks",
			Help: "Most recent block window size",
		},
	)

	activeScans = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scankit_scan_active",
			Help: "Number of block range scans in progress",
		},
	)
)

func windowInc(outcome string) {
	windowsFetched.WithLabelValues(outcome).Inc()
}

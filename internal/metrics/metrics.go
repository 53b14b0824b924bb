package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	startTime = time.Now()

	// Sync metrics
	LastSyncedBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scankit_sync_last_block",
			Help: "The last block fully synced into the record store",
		},
		[]string{"kind"},
	)

	RecordsSynced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scankit_sync_records_total",
			Help: "Total number of records received by sync",
		},
		[]string{"kind"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scankit_sync_duration_seconds",
			Help:    "Time taken to sync one address",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
		[]string{"kind"},
	)

	// System metrics
	Uptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scankit_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)

	Errors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scankit_errors_total",
			Help: "Total number of errors by component and severity",
		},
		[]string{"component", "severity"},
	)

	ComponentHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scankit_component_health",
			Help: "Component health status (1=healthy, 0=unhealthy)",
		},
		[]string{"component"},
	)

	Goroutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scankit_goroutines",
			Help: "Number of active goroutines",
		},
	)

	MemoryUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scankit_memory_usage_bytes",
			Help: "Memory usage statistics",
		},
		[]string{"type"},
	)
)

func LastSyncedBlockSet(kind string, block uint64) {
	LastSyncedBlock.WithLabelValues(kind).Set(float64(block))
}

func RecordsSyncedAdd(kind string, count int) {
	RecordsSynced.WithLabelValues(kind).Add(float64(count))
}

func SyncDurationLog(kind string, d time.Duration) {
	SyncDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func ErrorsInc(component, severity string) {
	Errors.WithLabelValues(component, severity).Inc()
}

func ComponentHealthSet(component string, healthy bool) {
	boolAsFloat := float64(1)
	if !healthy {
		boolAsFloat = 0
	}

	ComponentHealth.WithLabelValues(component).Set(boolAsFloat)
}

// UpdateSystemMetrics updates runtime system metrics.
func UpdateSystemMetrics() {
	Uptime.Set(time.Since(startTime).Seconds())
	Goroutines.Set(float64(runtime.NumGoroutine()))

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	MemoryUsage.WithLabelValues("alloc").Set(float64(m.Alloc))
	MemoryUsage.WithLabelValues("total_alloc").Set(float64(m.TotalAlloc))
	MemoryUsage.WithLabelValues("sys").Set(float64(m.Sys))
	MemoryUsage.WithLabelValues("heap_inuse").Set(float64(m.HeapInuse))
}

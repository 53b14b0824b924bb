package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsInserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scankit_store_records_inserted_total",
			Help: "Total number of records written to the store",
		},
		[]string{"kind"},
	)

	recordsDuplicated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scankit_store_records_duplicate_total",
			Help: "Total number of records skipped because they were already stored",
		},
		[]string{"kind"},
	)

	checkpointBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scankit_store_checkpoint_block",
			Help: "Last fully scanned block per kind",
		},
		[]string{"kind"},
	)
)

func recordsInsertedAdd(kind string, n int) {
	recordsInserted.WithLabelValues(kind).Add(float64(n))
}

func recordsDuplicatedAdd(kind string, n int) {
	recordsDuplicated.WithLabelValues(kind).Add(float64(n))
}

func checkpointLog(kind string, block uint64) {
	checkpointBlock.WithLabelValues(kind).Set(float64(block))
}

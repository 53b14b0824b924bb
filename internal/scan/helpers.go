package scan

import (
	"github.com/goran-ethernal/ScanKit/pkg/types"
)

// maxBlockNumber returns the highest block number of a non-empty batch.
func maxBlockNumber(records []types.Record) (uint64, error) {
	var highest uint64
	for i, r := range records {
		n, err := r.BlockNumber()
		if err != nil {
			return 0, err
		}
		if i == 0 || n > highest {
			highest = n
		}
	}
	return highest, nil
}

// dropBlock returns the records that do not belong to block, preserving order.
func dropBlock(records []types.Record, block uint64) []types.Record {
	kept := make([]types.Record, 0, len(records))
	for _, r := range records {
		// block numbers were validated by maxBlockNumber
		if n, _ := r.BlockNumber(); n != block {
			kept = append(kept, r)
		}
	}
	return kept
}

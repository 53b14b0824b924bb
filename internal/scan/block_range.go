package scan

import (
	"fmt"

	"github.com/goran-ethernal/ScanKit/internal/logger"
	"github.com/goran-ethernal/ScanKit/pkg/types"
)

// BlockRange tracks the scan position inside the fixed interval [start, end].
// The position only moves forward and never passes end.
type BlockRange struct {
	start    uint64
	end      uint64
	position uint64

	limit *Limit
	log   *logger.Logger
}

// NewBlockRange creates a range positioned at start.
func NewBlockRange(start, end uint64, limit *Limit, log *logger.Logger) (*BlockRange, error) {
	if end < start {
		return nil, fmt.Errorf("invalid block range: end %d is below start %d", end, start)
	}
	if limit == nil {
		return nil, fmt.Errorf("block range requires a limit")
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	r := &BlockRange{
		start:    start,
		end:      end,
		position: start,
		limit:    limit,
		log:      log,
	}
	log.Debugf("initial blocks range: %d..%d (%d)", start, end, r.Size())

	return r, nil
}

// Window returns the next interval to fetch. It does not move the position.
func (r *BlockRange) Window() (from, to uint64) {
	from = r.position
	to = r.end
	if span := r.limit.Get() - 1; span < r.end-r.position {
		to = r.position + span
	}

	r.log.Debugf("returning blocks range: %d..%d (%d)", from, to, to-from+1)

	return from, to
}

// Advance moves the position to next, clamped to end.
func (r *BlockRange) Advance(next uint64) error {
	if next < r.position {
		return fmt.Errorf("%w: from %d to %d", types.ErrPositionRegression, r.position, next)
	}

	block := min(next, r.end)
	r.log.Debugf("current block is changed from %d to %d", r.position, block)
	r.position = block

	return nil
}

// Limit returns the window size controller owned by the range.
func (r *BlockRange) Limit() *Limit {
	return r.limit
}

// Start is the first block of the range.
func (r *BlockRange) Start() uint64 { return r.start }

// End is the last block of the range, included in the scan.
func (r *BlockRange) End() uint64 { return r.end }

// Position is the first block not scanned yet. It equals End once the last window is reached.
func (r *BlockRange) Position() uint64 { return r.position }

// Done is the number of blocks behind the position.
func (r *BlockRange) Done() uint64 {
	return r.position - r.start
}

// Remaining is the number of blocks between the position and end.
func (r *BlockRange) Remaining() uint64 {
	return r.end - r.position
}

// Size is the number of blocks in the range, both ends included.
// It wraps to 0 for the full [0, MaxUint64] range.
func (r *BlockRange) Size() uint64 {
	return r.end - r.start + 1
}

// Progress is the share of the range already scanned, in [0, 1).
func (r *BlockRange) Progress() float64 {
	return float64(r.Done()) / (float64(r.end-r.start) + 1)
}

package scan

import (
	"fmt"

	"github.com/goran-ethernal/ScanKit/internal/logger"
	"github.com/goran-ethernal/ScanKit/pkg/types"
)

// Limit is a shrinkable number of blocks per request.
// It is reduced after an upstream failure and restored after a success.
type Limit struct {
	initial uint64
	current uint64
	divider uint64

	log *logger.Logger
}

// NewLimit creates a Limit starting at initial blocks, divided by divider on every reduction.
func NewLimit(initial, divider uint64, log *logger.Logger) (*Limit, error) {
	if initial == 0 {
		return nil, fmt.Errorf("blocks limit must be positive")
	}
	if divider < 2 { //nolint:mnd
		return nil, fmt.Errorf("blocks limit divider must be at least 2, got %d", divider)
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Limit{
		initial: initial,
		current: initial,
		divider: divider,
		log:     log,
	}, nil
}

// Get returns the current number of blocks per request.
func (l *Limit) Get() uint64 {
	l.log.Debugf("limit initial/current: %d/%d", l.initial, l.current)
	return l.current
}

// Reduce divides the current limit. It returns ErrLimitExhausted and keeps
// the current value when the division would reach zero.
func (l *Limit) Reduce() error {
	next := l.current / l.divider
	if next == 0 {
		return types.ErrLimitExhausted
	}

	l.log.Debugf("reducing limit from %d to %d", l.current, next)
	l.current = next
	windowSize.Set(float64(next))

	return nil
}

// Restore resets the limit to its initial value.
func (l *Limit) Restore() {
	l.current = l.initial
	windowSize.Set(float64(l.initial))
}

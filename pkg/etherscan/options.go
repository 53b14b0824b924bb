package etherscan

import (
	"time"

	"github.com/goran-ethernal/ScanKit/pkg/types"
)

// ListOptions narrows a listing request. Zero values are left out of the request.
type ListOptions struct {
	StartBlock *uint64
	EndBlock   *uint64
	Sort       string
	Page       int
	Offset     int
}

func (o ListOptions) params() (types.Params, error) {
	sort, err := CheckSortDirection(o.Sort)
	if err != nil {
		return nil, err
	}

	return types.Params{
		"startblock": o.StartBlock,
		"endblock":   o.EndBlock,
		"sort":       optional(sort),
		"page":       optional(o.Page),
		"offset":     optional(o.Offset),
	}, nil
}

// PageOptions selects a page of a paginated endpoint.
type PageOptions struct {
	Page   int
	Offset int
}

func (o PageOptions) params() types.Params {
	return types.Params{
		"page":   optional(o.Page),
		"offset": optional(o.Offset),
	}
}

// DateRange bounds the daily statistics endpoints.
type DateRange struct {
	Start time.Time
	End   time.Time
	Sort  string
}

// Uint64 returns a pointer to n, for optional block numbers.
func Uint64(n uint64) *uint64 {
	return &n
}

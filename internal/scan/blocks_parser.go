package scan

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/google/uuid"
	"github.com/goran-ethernal/ScanKit/internal/logger"
	"github.com/goran-ethernal/ScanKit/pkg/types"
)

// Offset is the page size requested for every window, the largest the explorers honor.
const Offset = 10_000

// ErrAlreadyScanned is returned when Scan is called a second time on the same parser.
var ErrAlreadyScanned = errors.New("blocks parser can only be scanned once")

// PageFunc fetches one page of a listing endpoint.
type PageFunc func(ctx context.Context, params types.Params) ([]types.Record, error)

// Config bounds a scan and sizes its windows.
type Config struct {
	StartBlock         uint64
	EndBlock           uint64
	BlocksLimit        uint64
	BlocksLimitDivider uint64
	// PageSize is the offset requested per window. Zero means Offset.
	PageSize int
}

// BlocksParser walks [StartBlock, EndBlock] in adaptive windows, calling a listing
// endpoint once per window and recovering records lost to page truncation.
type BlocksParser struct {
	id     string
	fetch  PageFunc
	params types.Params
	blocks *BlockRange
	// pageSize is the record count that marks a page as truncated.
	pageSize int

	// endCovered is set once a window ending at the last block has been fully captured.
	endCovered bool
	scanned    bool
	total      uint64
	emitted    uint64

	log *logger.Logger
}

// NewBlocksParser creates a parser for a single scan. params are sent with every request
// and must not contain the window fields (startblock, endblock, page, offset).
func NewBlocksParser(fetch PageFunc, params types.Params, cfg Config, log *logger.Logger) (*BlocksParser, error) {
	if fetch == nil {
		return nil, fmt.Errorf("blocks parser requires a page function")
	}
	if cfg.PageSize < 0 {
		return nil, fmt.Errorf("page size must not be negative, got %d", cfg.PageSize)
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = Offset
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	id := uuid.NewString()
	log = log.WithFields("scan", id)

	limit, err := NewLimit(cfg.BlocksLimit, cfg.BlocksLimitDivider, log)
	if err != nil {
		return nil, err
	}

	blocks, err := NewBlockRange(cfg.StartBlock, cfg.EndBlock, limit, log)
	if err != nil {
		return nil, err
	}

	return &BlocksParser{
		id:       id,
		fetch:    fetch,
		params:   params.Clone(),
		blocks:   blocks,
		pageSize: cfg.PageSize,
		log:      log,
	}, nil
}

// ID identifies the scan in logs.
func (p *BlocksParser) ID() string {
	return p.id
}

// Total returns the number of records received from the endpoint so far,
// including records dropped from truncated pages.
func (p *BlocksParser) Total() uint64 {
	return p.total
}

// Emitted returns the number of records yielded so far.
func (p *BlocksParser) Emitted() uint64 {
	return p.emitted
}

// Range exposes the scan position.
func (p *BlocksParser) Range() *BlockRange {
	return p.blocks
}

// Scan returns the lazy sequence of records in block order. The sequence stops at the
// first unrecoverable error, which is yielded with a nil record. Breaking out of the
// range loop stops the scan before the next request.
func (p *BlocksParser) Scan(ctx context.Context) iter.Seq2[types.Record, error] {
	return func(yield func(types.Record, error) bool) {
		if p.scanned {
			yield(nil, ErrAlreadyScanned)
			return
		}
		p.scanned = true

		activeScans.Inc()
		defer activeScans.Dec()

		for !p.finished() {
			records, err := p.next(ctx)
			if err != nil {
				p.log.Errorf("scan stopped at block %d: %v", p.blocks.Position(), err)
				yield(nil, err)
				return
			}

			for _, r := range records {
				p.emitted++
				recordsEmitted.Inc()
				if !yield(r, nil) {
					return
				}
			}

			p.log.Infof("[%.2f%%] current block %d (%d blocks left)",
				p.blocks.Progress()*100, p.blocks.Position(), p.blocks.Remaining()) //nolint:mnd
		}

		p.log.Debugf("scan finished, %d records received, %d emitted", p.total, p.emitted)
	}
}

func (p *BlocksParser) finished() bool {
	return p.blocks.Remaining() == 0 && p.endCovered
}

// next fetches windows until one succeeds. Only an error reported by the explorer shrinks
// the window, transport failures are returned unchanged.
func (p *BlocksParser) next(ctx context.Context) ([]types.Record, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		from, to := p.blocks.Window()

		records, err := p.fetch(ctx, p.requestParams(from, to))
		switch {
		case err == nil && len(records) > 0:
			return p.accept(from, to, records)

		case err == nil || types.IsNoTransactionsFound(err):
			windowInc(outcomeEmpty)
			p.log.Debugf("no records in blocks %d..%d", from, to)

			if to == p.blocks.End() {
				p.endCovered = true
			}
			if err := p.blocks.Advance(p.after(to)); err != nil {
				return nil, err
			}
			p.blocks.Limit().Restore()

			return nil, nil

		case ctx.Err() != nil:
			return nil, ctx.Err()

		default:
			var apiErr *types.APIError
			if !errors.As(err, &apiErr) {
				return nil, err
			}

			windowInc(outcomeFailed)
			p.log.Warnf("fetching blocks %d..%d failed: %v", from, to, err)

			if rerr := p.blocks.Limit().Reduce(); rerr != nil {
				return nil, fmt.Errorf("%w at block %d: %w", rerr, from, err)
			}
		}
	}
}

// accept handles a non-empty page. A page holding exactly pageSize records is assumed to be
// truncated: records of its highest block are dropped and that block is fetched again.
func (p *BlocksParser) accept(from, to uint64, records []types.Record) ([]types.Record, error) {
	p.total += uint64(len(records))
	p.log.Debugf("got %d records, %d total", len(records), p.total)

	maxBlock, err := maxBlockNumber(records)
	if err != nil {
		return nil, fmt.Errorf("invalid record in blocks %d..%d: %w", from, to, err)
	}

	next := p.after(maxBlock)
	if len(records) == p.pageSize {
		if maxBlock <= from {
			return nil, fmt.Errorf("%w: block %d", types.ErrUnresolvableTruncation, maxBlock)
		}

		p.log.Debugf("probably not all records have been fetched, dropping records of block %d", maxBlock)
		windowInc(outcomeTruncated)

		records = dropBlock(records, maxBlock)
		next = maxBlock
	} else {
		windowInc(outcomeRecords)

		if to == p.blocks.End() {
			p.endCovered = true
		}
	}

	if err := p.blocks.Advance(next); err != nil {
		return nil, err
	}
	p.blocks.Limit().Restore()

	return records, nil
}

// after returns the position following block, clamped to the end of the range.
func (p *BlocksParser) after(block uint64) uint64 {
	if block >= p.blocks.End() {
		return p.blocks.End()
	}
	return block + 1
}

func (p *BlocksParser) requestParams(from, to uint64) types.Params {
	params := p.params.With(types.Params{
		"startblock": from,
		"endblock":   to,
		"page":       1,
		"offset":     p.pageSize,
	})
	p.log.Debugf("request params: %v", params)

	return params
}

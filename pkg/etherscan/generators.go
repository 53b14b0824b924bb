package etherscan

import (
	"context"
	"fmt"
	"iter"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/goran-ethernal/ScanKit/internal/logger"
	"github.com/goran-ethernal/ScanKit/internal/scan"
	"github.com/goran-ethernal/ScanKit/pkg/types"
)

const (
	DefaultStartBlock         uint64 = 0
	DefaultBlocksLimit        uint64 = 2048
	DefaultBlocksLimitDivider uint64 = 2

	// DefaultMinedBlocksOffset is the page size of MinedBlocks.
	DefaultMinedBlocksOffset = 10_000
)

// BlockHeightSource returns the current chain head as a 0x prefixed hex string.
type BlockHeightSource interface {
	BlockNumber(ctx context.Context) (string, error)
}

// BlocksOptions bounds a block range scan. Unset fields fall back to the generator defaults,
// and a nil EndBlock resolves to the current chain head.
type BlocksOptions struct {
	StartBlock         *uint64
	EndBlock           *uint64
	BlocksLimit        uint64
	BlocksLimitDivider uint64
	// PageSize overrides the page size requested per window.
	PageSize int
}

// Generators turns listing endpoints into lazy record sequences.
type Generators struct {
	account  *Account
	logs     *Logs
	height   BlockHeightSource
	defaults BlocksOptions

	log *logger.Logger
}

func newGenerators(account *Account, logs *Logs, height BlockHeightSource, defaults BlocksOptions, log *logger.Logger) *Generators {
	if defaults.StartBlock == nil {
		defaults.StartBlock = Uint64(DefaultStartBlock)
	}
	if defaults.BlocksLimit == 0 {
		defaults.BlocksLimit = DefaultBlocksLimit
	}
	if defaults.BlocksLimitDivider == 0 {
		defaults.BlocksLimitDivider = DefaultBlocksLimitDivider
	}

	return &Generators{
		account:  account,
		logs:     logs,
		height:   height,
		defaults: defaults,
		log:      log,
	}
}

// CurrentBlock returns the chain head reported by the height source.
func (g *Generators) CurrentBlock(ctx context.Context) (uint64, error) {
	head, err := g.height.BlockNumber(ctx)
	if err != nil {
		return 0, err
	}

	n, err := hexutil.DecodeUint64(head)
	if err != nil {
		return 0, fmt.Errorf("invalid block number %q: %w", head, err)
	}

	return n, nil
}

// ScanByBlocks walks a block range with an adaptive window, calling method once per window
// with fixed merged into the window parameters. Errors are yielded with a nil record and
// end the sequence.
func (g *Generators) ScanByBlocks(ctx context.Context, method scan.PageFunc, fixed types.Params, opts BlocksOptions) iter.Seq2[types.Record, error] {
	return func(yield func(types.Record, error) bool) {
		cfg, err := g.parserConfig(ctx, opts)
		if err != nil {
			yield(nil, err)
			return
		}

		g.log.Debugf("scanning blocks %d..%d, limit %d", cfg.StartBlock, cfg.EndBlock, cfg.BlocksLimit)

		parser, err := scan.NewBlocksParser(method, fixed, cfg, g.log)
		if err != nil {
			yield(nil, err)
			return
		}

		for record, err := range parser.Scan(ctx) {
			if !yield(record, err) {
				return
			}
		}
	}
}

func (g *Generators) parserConfig(ctx context.Context, opts BlocksOptions) (scan.Config, error) {
	cfg := scan.Config{
		StartBlock:         *g.defaults.StartBlock,
		BlocksLimit:        g.defaults.BlocksLimit,
		BlocksLimitDivider: g.defaults.BlocksLimitDivider,
		PageSize:           opts.PageSize,
	}
	if opts.StartBlock != nil {
		cfg.StartBlock = *opts.StartBlock
	}
	if opts.BlocksLimit != 0 {
		cfg.BlocksLimit = opts.BlocksLimit
	}
	if opts.BlocksLimitDivider != 0 {
		cfg.BlocksLimitDivider = opts.BlocksLimitDivider
	}

	if opts.EndBlock != nil {
		cfg.EndBlock = *opts.EndBlock
		return cfg, nil
	}

	head, err := g.CurrentBlock(ctx)
	if err != nil {
		return cfg, fmt.Errorf("resolve end block: %w", err)
	}
	cfg.EndBlock = head

	return cfg, nil
}

// ScanByPages calls method with page 1, 2, ... until the endpoint reports no more records.
func (g *Generators) ScanByPages(ctx context.Context, method scan.PageFunc, fixed types.Params) iter.Seq2[types.Record, error] {
	return func(yield func(types.Record, error) bool) {
		for page := 1; ; page++ {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			records, err := method(ctx, fixed.With(types.Params{"page": page}))
			if types.IsNoTransactionsFound(err) {
				g.log.Debugf("no records on page %d", page)
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if len(records) == 0 {
				return
			}

			for _, r := range records {
				if !yield(r, nil) {
					return
				}
			}
		}
	}
}

// NormalTxs streams the normal transactions of address in block order.
func (g *Generators) NormalTxs(ctx context.Context, address string, opts BlocksOptions) iter.Seq2[types.Record, error] {
	return g.ScanByBlocks(ctx, g.account.page, accountListing("txlist", types.Params{"address": address}), opts)
}

// InternalTxs streams internal transactions of address, or of a single transaction when
// txHash is set.
func (g *Generators) InternalTxs(ctx context.Context, address, txHash string, opts BlocksOptions) iter.Seq2[types.Record, error] {
	return g.ScanByBlocks(ctx, g.account.page, accountListing("txlistinternal", types.Params{
		"address": optional(address),
		"txhash":  optional(txHash),
	}), opts)
}

// TokenTransfers streams token transfer events.
func (g *Generators) TokenTransfers(ctx context.Context, filter TokenFilter, opts BlocksOptions) iter.Seq2[types.Record, error] {
	action, params, err := filter.action()
	if err != nil {
		return failed(err)
	}

	return g.ScanByBlocks(ctx, g.account.page, accountListing(action, params), opts)
}

// BeaconWithdrawals streams beacon chain withdrawals to address.
func (g *Generators) BeaconWithdrawals(ctx context.Context, address string, opts BlocksOptions) iter.Seq2[types.Record, error] {
	return g.ScanByBlocks(ctx, g.account.page, accountListing("txsBeaconWithdrawal", types.Params{"address": address}), opts)
}

// Logs streams event logs. Pages are capped at LogsPageSize unless opts sets another size.
func (g *Generators) Logs(ctx context.Context, filter LogsFilter, opts BlocksOptions) iter.Seq2[types.Record, error] {
	params, err := filter.params()
	if err != nil {
		return failed(err)
	}
	if opts.PageSize == 0 {
		opts.PageSize = LogsPageSize
	}

	return g.ScanByBlocks(ctx, g.logs.window, params, opts)
}

// MinedBlocks streams the blocks validated by address page by page.
// offset defaults to DefaultMinedBlocksOffset.
func (g *Generators) MinedBlocks(ctx context.Context, address, blockType string, offset int) iter.Seq2[types.Record, error] {
	if blockType == "" {
		blockType = BlockTypeBlocks
	}
	blockType, err := CheckBlockType(blockType)
	if err != nil {
		return failed(err)
	}
	if offset == 0 {
		offset = DefaultMinedBlocksOffset
	}

	return g.ScanByPages(ctx, g.account.page, types.Params{
		"action":    "getminedblocks",
		"address":   address,
		"blocktype": blockType,
		"offset":    offset,
	})
}

// accountListing adds the action and ascending order to the fixed params of an account listing.
func accountListing(action string, params types.Params) types.Params {
	return params.With(types.Params{"action": action, "sort": SortAsc})
}

func failed(err error) iter.Seq2[types.Record, error] {
	return func(yield func(types.Record, error) bool) {
		yield(nil, err)
	}
}

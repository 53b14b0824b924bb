package etherscan

import (
	"context"

	"github.com/goran-ethernal/ScanKit/pkg/types"
)

// Block wraps the block module and the block related daily statistics.
type Block struct {
	module
}

func newBlock(req Requester) *Block {
	return &Block{module{name: moduleBlock, req: req}}
}

// BlockReward returns the block and uncle rewards of block.
func (b *Block) BlockReward(ctx context.Context, block uint64) (types.Record, error) {
	return decode[types.Record](b.get(ctx, "getblockreward", types.Params{"blockno": block}))
}

// EstBlockCountdownTime estimates the time until block is mined.
func (b *Block) EstBlockCountdownTime(ctx context.Context, block uint64) (types.Record, error) {
	return decode[types.Record](b.get(ctx, "getblockcountdown", types.Params{"blockno": block}))
}

// BlockNumberByTimestamp returns the block mined closest to the unix timestamp ts.
func (b *Block) BlockNumberByTimestamp(ctx context.Context, ts int64, closest string) (string, error) {
	closest, err := CheckClosestValue(closest)
	if err != nil {
		return "", err
	}

	return decode[string](b.get(ctx, "getblocknobytime", types.Params{
		"timestamp": ts,
		"closest":   optional(closest),
	}))
}

func (b *Block) DailyAverageBlockSize(ctx context.Context, r DateRange) ([]types.Record, error) {
	return b.dailyStats(ctx, "dailyavgblocksize", r)
}

func (b *Block) DailyBlockCount(ctx context.Context, r DateRange) ([]types.Record, error) {
	return b.dailyStats(ctx, "dailyblkcount", r)
}

func (b *Block) DailyBlockRewards(ctx context.Context, r DateRange) ([]types.Record, error) {
	return b.dailyStats(ctx, "dailyblockrewards", r)
}

func (b *Block) DailyAverageTimeForABlock(ctx context.Context, r DateRange) ([]types.Record, error) {
	return b.dailyStats(ctx, "dailyavgblocktime", r)
}

func (b *Block) DailyUncleBlockCount(ctx context.Context, r DateRange) ([]types.Record, error) {
	return b.dailyStats(ctx, "dailyuncleblkcount", r)
}

package etherscan

import (
	"context"

	"github.com/goran-ethernal/ScanKit/pkg/types"
)

// GasTracker wraps the gastracker module.
type GasTracker struct {
	module
}

func newGasTracker(req Requester) *GasTracker {
	return &GasTracker{module{name: moduleGasTracker, req: req}}
}

// EstimationOfConfirmationTime estimates the confirmation time, in seconds, for a gas price in wei.
func (g *GasTracker) EstimationOfConfirmationTime(ctx context.Context, gasPrice uint64) (string, error) {
	return decode[string](g.get(ctx, "gasestimate", types.Params{"gasprice": gasPrice}))
}

func (g *GasTracker) GasOracle(ctx context.Context) (types.Record, error) {
	return decode[types.Record](g.get(ctx, "gasoracle", nil))
}

func (g *GasTracker) DailyAverageGasLimit(ctx context.Context, r DateRange) ([]types.Record, error) {
	return g.dailyStats(ctx, "dailyavggaslimit", r)
}

func (g *GasTracker) DailyTotalGasUsed(ctx context.Context, r DateRange) ([]types.Record, error) {
	return g.dailyStats(ctx, "dailygasused", r)
}

func (g *GasTracker) DailyAverageGasPrice(ctx context.Context, r DateRange) ([]types.Record, error) {
	return g.dailyStats(ctx, "dailyavggasprice", r)
}

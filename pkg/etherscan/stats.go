package etherscan

import (
	"context"

	"github.com/goran-ethernal/ScanKit/pkg/types"
)

// Stats wraps the stats module.
type Stats struct {
	module
}

func newStats(req Requester) *Stats {
	return &Stats{module{name: moduleStats, req: req}}
}

// EthSupply returns the total supply of ether, in wei.
func (s *Stats) EthSupply(ctx context.Context) (string, error) {
	return decode[string](s.get(ctx, "ethsupply", nil))
}

// Eth2Supply returns the ether supply including staking rewards and burnt fees.
func (s *Stats) Eth2Supply(ctx context.Context) (types.Record, error) {
	return decode[types.Record](s.get(ctx, "ethsupply2", nil))
}

func (s *Stats) EthPrice(ctx context.Context) (types.Record, error) {
	return decode[types.Record](s.get(ctx, "ethprice", nil))
}

// EthNodesSize returns the size of the chain data for a client type and sync mode.
func (s *Stats) EthNodesSize(ctx context.Context, r DateRange, clientType, syncMode string) ([]types.Record, error) {
	clientType, err := CheckClientType(clientType)
	if err != nil {
		return nil, err
	}
	if syncMode, err = CheckSyncMode(syncMode); err != nil {
		return nil, err
	}

	params, err := DailyStatsParams("chainsize", r.Start, r.End, r.Sort)
	if err != nil {
		return nil, err
	}

	return decode[[]types.Record](s.req.Get(ctx, params.With(types.Params{
		"clienttype": clientType,
		"syncmode":   syncMode,
	})))
}

func (s *Stats) TotalNodesCount(ctx context.Context) (types.Record, error) {
	return decode[types.Record](s.get(ctx, "nodecount", nil))
}

func (s *Stats) DailyNetworkTxFee(ctx context.Context, r DateRange) ([]types.Record, error) {
	return s.dailyStats(ctx, "dailytxnfee", r)
}

func (s *Stats) DailyNewAddressCount(ctx context.Context, r DateRange) ([]types.Record, error) {
	return s.dailyStats(ctx, "dailynewaddress", r)
}

func (s *Stats) DailyNetworkUtilization(ctx context.Context, r DateRange) ([]types.Record, error) {
	return s.dailyStats(ctx, "dailynetutilization", r)
}

func (s *Stats) DailyAverageNetworkHashRate(ctx context.Context, r DateRange) ([]types.Record, error) {
	return s.dailyStats(ctx, "dailyavghashrate", r)
}

func (s *Stats) DailyTransactionCount(ctx context.Context, r DateRange) ([]types.Record, error) {
	return s.dailyStats(ctx, "dailytx", r)
}

func (s *Stats) DailyAverageNetworkDifficulty(ctx context.Context, r DateRange) ([]types.Record, error) {
	return s.dailyStats(ctx, "dailyavgnetdifficulty", r)
}

func (s *Stats) EtherHistoricalDailyMarketCap(ctx context.Context, r DateRange) ([]types.Record, error) {
	return s.dailyStats(ctx, "ethdailymarketcap", r)
}

func (s *Stats) EtherHistoricalPrice(ctx context.Context, r DateRange) ([]types.Record, error) {
	return s.dailyStats(ctx, "ethdailyprice", r)
}

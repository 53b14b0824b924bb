package main

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/goran-ethernal/ScanKit/pkg/etherscan"
	"github.com/goran-ethernal/ScanKit/pkg/types"
	"github.com/spf13/pflag"
)

const (
	kindNormal   = "normal"
	kindInternal = "internal"
	kindToken    = "token"
	kindBeacon   = "beacon"
	kindLogs     = "logs"
	kindMined    = "mined"
)

var (
	allKinds = []string{kindNormal, kindInternal, kindToken, kindBeacon, kindLogs, kindMined}
	// blockKinds are scanned by block windows and can be resumed from a checkpoint.
	blockKinds = []string{kindNormal, kindInternal, kindToken, kindBeacon, kindLogs}
)

// query collects the listing flags shared by txs and sync.
type query struct {
	kind        string
	contract    string
	standard    string
	txHash      string
	blockType   string
	topics      []string
	operators   []string
	blocksLimit uint64
	pageSize    int
}

func (q *query) addFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&q.kind, "kind", "k", kindNormal, "listing kind: "+strings.Join(allKinds, ", "))
	flags.StringVar(&q.contract, "contract", "", "token contract address (kind token)")
	flags.StringVar(&q.standard, "standard", etherscan.StandardERC20, "token standard: erc20, erc721, erc1155 (kind token)")
	flags.StringVar(&q.txHash, "txhash", "", "single transaction hash (kind internal)")
	flags.StringVar(&q.blockType, "block-type", etherscan.BlockTypeBlocks, "blocks or uncles (kind mined)")
	flags.StringArrayVar(&q.topics, "topic", nil, "log topic as N=0x..., N in 0-3 (kind logs)")
	flags.StringArrayVar(&q.operators, "topic-operator", nil, "topic operator as N,M=and|or (kind logs)")
	flags.Uint64Var(&q.blocksLimit, "blocks-limit", 0, "initial block window, 0 uses the configured value")
	flags.IntVar(&q.pageSize, "page-size", 0, "records requested per window, 0 uses the endpoint default")
}

func (q *query) validate(kinds []string) error {
	if !slices.Contains(kinds, q.kind) {
		return fmt.Errorf("unsupported kind %q, expected one of: %s", q.kind, strings.Join(kinds, ", "))
	}
	return nil
}

// scan starts the listing of address selected by q.
func (q *query) scan(ctx context.Context, g *etherscan.Generators, address string,
	opts etherscan.BlocksOptions) iter.Seq2[types.Record, error] {
	opts.BlocksLimit = q.blocksLimit
	opts.PageSize = q.pageSize

	switch q.kind {
	case kindInternal:
		return g.InternalTxs(ctx, address, q.txHash, opts)
	case kindToken:
		return g.TokenTransfers(ctx, etherscan.TokenFilter{
			Address:         address,
			ContractAddress: q.contract,
			Standard:        q.standard,
		}, opts)
	case kindBeacon:
		return g.BeaconWithdrawals(ctx, address, opts)
	case kindLogs:
		filter, err := q.logsFilter(address)
		if err != nil {
			return fail(err)
		}
		return g.Logs(ctx, filter, opts)
	case kindMined:
		return g.MinedBlocks(ctx, address, q.blockType, q.pageSize)
	default:
		return g.NormalTxs(ctx, address, opts)
	}
}

func (q *query) logsFilter(address string) (etherscan.LogsFilter, error) {
	filter := etherscan.LogsFilter{Address: address}

	for _, raw := range q.topics {
		n, value, ok := strings.Cut(raw, "=")
		if !ok {
			return filter, fmt.Errorf("invalid topic %q, expected N=value", raw)
		}
		position, err := topicPosition(n)
		if err != nil {
			return filter, err
		}
		if filter.Topics == nil {
			filter.Topics = make(map[int]string)
		}
		filter.Topics[position] = value
	}

	for _, raw := range q.operators {
		pair, operator, ok := strings.Cut(raw, "=")
		if !ok {
			return filter, fmt.Errorf("invalid topic operator %q, expected N,M=and|or", raw)
		}
		first, second, ok := strings.Cut(pair, ",")
		if !ok {
			return filter, fmt.Errorf("invalid topic operator %q, expected N,M=and|or", raw)
		}
		a, err := topicPosition(first)
		if err != nil {
			return filter, err
		}
		b, err := topicPosition(second)
		if err != nil {
			return filter, err
		}
		operator = strings.ToLower(operator)
		if operator != etherscan.TopicAnd && operator != etherscan.TopicOr {
			return filter, fmt.Errorf("invalid topic operator %q, expected and or or", operator)
		}
		filter.Operators = append(filter.Operators, etherscan.TopicOperator{First: a, Second: b, Operator: operator})
	}

	return filter, nil
}

func topicPosition(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 3 {
		return 0, fmt.Errorf("invalid topic position %q, expected 0-3", s)
	}
	return n, nil
}

func fail(err error) iter.Seq2[types.Record, error] {
	return func(yield func(types.Record, error) bool) {
		yield(nil, err)
	}
}

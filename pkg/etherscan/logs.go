package etherscan

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/goran-ethernal/ScanKit/pkg/types"
)

// LogsPageSize is the largest page the logs endpoint returns.
const LogsPageSize = 1000

const (
	TopicAnd = "and"
	TopicOr  = "or"
)

// TopicOperator joins two topic filters.
type TopicOperator struct {
	First    int
	Second   int
	Operator string
}

// LogsFilter selects event logs. Either Address or Topics must be set.
// Topics maps the topic position (0-3) to its value.
type LogsFilter struct {
	Address   string
	Topics    map[int]string
	Operators []TopicOperator
}

func (f LogsFilter) params() (types.Params, error) {
	if f.Address == "" && len(f.Topics) == 0 {
		return nil, fmt.Errorf("%w: either address or topics must be passed", ErrInvalidArgument)
	}

	topics, err := fillTopics(f.Topics, f.Operators)
	if err != nil {
		return nil, err
	}

	return types.Params{"address": optional(f.Address)}.With(topics), nil
}

func fillTopics(topics map[int]string, operators []TopicOperator) (types.Params, error) {
	params := types.Params{}
	if len(topics) == 0 {
		return params, nil
	}

	for _, n := range slices.Sorted(maps.Keys(topics)) {
		params[fmt.Sprintf("topic%d", n)] = topics[n]
	}
	if len(topics) == 1 {
		return params, nil
	}

	if len(operators) == 0 {
		return nil, fmt.Errorf("%w: topic operators are required when more than 1 topic passed", ErrInvalidArgument)
	}

	for _, op := range operators {
		key, err := topicOperatorKey(op.First, op.Second)
		if err != nil {
			return nil, err
		}
		params[key] = op.Operator
	}

	return params, nil
}

func topicOperatorKey(first, second int) (string, error) {
	if first == second {
		return "", fmt.Errorf("%w: topic numbers must be different when using topic operators", ErrInvalidArgument)
	}
	return fmt.Sprintf("topic%d_%d_opr", first, second), nil
}

// Logs wraps the logs module.
type Logs struct {
	module
}

func newLogs(req Requester) *Logs {
	return &Logs{module{name: moduleLogs, req: req}}
}

// GetLogs returns event logs matching filter within the optional block bounds.
func (l *Logs) GetLogs(ctx context.Context, filter LogsFilter, fromBlock, toBlock *uint64, opts PageOptions) ([]types.Record, error) {
	params, err := filter.params()
	if err != nil {
		return nil, err
	}

	return l.page(ctx, params.With(opts.params()).With(types.Params{
		"fromBlock": fromBlock,
		"toBlock":   toBlock,
	}))
}

// page requests one page of logs. Window fields named startblock and endblock are
// sent as fromBlock and toBlock.
func (l *Logs) page(ctx context.Context, params types.Params) ([]types.Record, error) {
	params = params.Clone()
	for from, to := range map[string]string{"startblock": "fromBlock", "endblock": "toBlock"} {
		if v, ok := params[from]; ok {
			params[to] = v
			delete(params, from)
		}
	}

	return decode[[]types.Record](l.get(ctx, "getLogs", params))
}

// window requests one page of logs for the block parser.
// The logs endpoint signals an empty range with NoRecordsFound, which yields no records.
func (l *Logs) window(ctx context.Context, params types.Params) ([]types.Record, error) {
	records, err := l.page(ctx, params)

	var apiErr *types.APIError
	if errors.As(err, &apiErr) && apiErr.Message == types.NoRecordsFound {
		return nil, nil
	}

	return records, err
}

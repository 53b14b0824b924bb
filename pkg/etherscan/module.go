package etherscan

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goran-ethernal/ScanKit/pkg/types"
)

const (
	moduleAccount     = "account"
	moduleBlock       = "block"
	moduleContract    = "contract"
	moduleLogs        = "logs"
	moduleProxy       = "proxy"
	moduleStats       = "stats"
	moduleToken       = "token"
	moduleTransaction = "transaction"
	moduleGasTracker  = "gastracker"
)

// Requester sends explorer requests and returns the raw result.
// *network.Network implements it.
type Requester interface {
	Get(ctx context.Context, params types.Params) (json.RawMessage, error)
	Post(ctx context.Context, params types.Params) (json.RawMessage, error)
}

// module binds requests to one explorer module. Params may name another module,
// as some endpoints are documented under one module but served by another.
type module struct {
	name string
	req  Requester
}

func (m module) params(action string, params types.Params) types.Params {
	out := types.Params{"module": m.name, "action": action}
	for k, v := range params {
		out[k] = v
	}
	return out
}

func (m module) get(ctx context.Context, action string, params types.Params) (json.RawMessage, error) {
	return m.req.Get(ctx, m.params(action, params))
}

func (m module) post(ctx context.Context, action string, params types.Params) (json.RawMessage, error) {
	return m.req.Post(ctx, m.params(action, params))
}

// dailyStats requests one of the stats module daily endpoints.
func (m module) dailyStats(ctx context.Context, action string, r DateRange) ([]types.Record, error) {
	params, err := DailyStatsParams(action, r.Start, r.End, r.Sort)
	if err != nil {
		return nil, err
	}

	return decode[[]types.Record](m.req.Get(ctx, params))
}

// decode unmarshals a raw result into T.
func decode[T any](raw json.RawMessage, err error) (T, error) {
	var out T
	if err != nil {
		return out, err
	}
	if len(raw) == 0 {
		return out, nil
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &types.ClientError{Err: fmt.Errorf("decode result: %w", err)}
	}

	return out, nil
}

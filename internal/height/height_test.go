package height

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goran-ethernal/ScanKit/pkg/types"
	"github.com/stretchr/testify/require"
)

type getterFunc func(ctx context.Context, params types.Params) (json.RawMessage, error)

func (f getterFunc) Get(ctx context.Context, params types.Params) (json.RawMessage, error) {
	return f(ctx, params)
}

func TestProxySource(t *testing.T) {
	src := NewProxySource(getterFunc(func(_ context.Context, params types.Params) (json.RawMessage, error) {
		require.Equal(t, "proxy", params["module"])
		require.Equal(t, "eth_blockNumber", params["action"])
		return json.RawMessage(`"0xc36b29"`), nil
	}))

	head, err := src.BlockNumber(context.Background())
	require.NoError(t, err)
	require.Equal(t, "0xc36b29", head)
}

func TestProxySource_Errors(t *testing.T) {
	upstream := &types.ProxyError{Code: -32000, Message: "boom"}
	src := NewProxySource(getterFunc(func(context.Context, types.Params) (json.RawMessage, error) {
		return nil, upstream
	}))
	_, err := src.BlockNumber(context.Background())
	require.Same(t, upstream, err)

	src = NewProxySource(getterFunc(func(context.Context, types.Params) (json.RawMessage, error) {
		return json.RawMessage(`12`), nil
	}))
	_, err = src.BlockNumber(context.Background())
	require.ErrorContains(t, err, "decode block number")
}

type ethService struct {
	head uint64
	err  error
}

func (s *ethService) BlockNumber() (hexutil.Uint64, error) {
	return hexutil.Uint64(s.head), s.err
}

func newInProcSource(t *testing.T, svc *ethService) *RPCSource {
	t.Helper()

	srv := rpc.NewServer()
	require.NoError(t, srv.RegisterName("eth", svc))
	t.Cleanup(srv.Stop)

	src := NewRPCSource(rpc.DialInProc(srv), nil)
	t.Cleanup(src.Close)

	return src
}

func TestRPCSource(t *testing.T) {
	src := newInProcSource(t, &ethService{head: 12_807_977})

	head, err := src.BlockNumber(context.Background())
	require.NoError(t, err)
	require.Equal(t, "0xc36f29", head)
}

func TestRPCSource_Error(t *testing.T) {
	src := newInProcSource(t, &ethService{err: errors.New("node syncing")})

	_, err := src.BlockNumber(context.Background())
	require.ErrorContains(t, err, "node syncing")
}

func TestDialRPCSource_InvalidEndpoint(t *testing.T) {
	_, err := DialRPCSource(context.Background(), "ftp://localhost", nil)
	require.Error(t, err)
}

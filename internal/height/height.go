package height

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goran-ethernal/ScanKit/internal/logger"
	"github.com/goran-ethernal/ScanKit/pkg/types"
)

// Getter sends a GET request to an explorer and returns the raw result.
type Getter interface {
	Get(ctx context.Context, params types.Params) (json.RawMessage, error)
}

// ProxySource reads the chain head through the explorer's eth_blockNumber proxy.
type ProxySource struct {
	explorer Getter
}

// NewProxySource creates a ProxySource on top of an explorer client.
func NewProxySource(explorer Getter) *ProxySource {
	return &ProxySource{explorer: explorer}
}

// BlockNumber returns the chain head as a 0x-prefixed hex string.
func (s *ProxySource) BlockNumber(ctx context.Context) (string, error) {
	raw, err := s.explorer.Get(ctx, types.Params{"module": "proxy", "action": "eth_blockNumber"})
	if err != nil {
		return "", err
	}

	var head string
	if err := json.Unmarshal(raw, &head); err != nil {
		return "", fmt.Errorf("decode block number: %w", err)
	}

	return head, nil
}

// RPCSource reads the chain head from a JSON-RPC node.
type RPCSource struct {
	eth *ethclient.Client
	log *logger.Logger
}

// DialRPCSource connects to the node at endpoint.
func DialRPCSource(ctx context.Context, endpoint string, log *logger.Logger) (*RPCSource, error) {
	client, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}

	return NewRPCSource(client, log), nil
}

// NewRPCSource wraps an existing RPC client.
func NewRPCSource(client *rpc.Client, log *logger.Logger) *RPCSource {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &RPCSource{
		eth: ethclient.NewClient(client),
		log: log,
	}
}

// BlockNumber returns the chain head as a 0x-prefixed hex string.
func (s *RPCSource) BlockNumber(ctx context.Context) (string, error) {
	head, err := s.eth.BlockNumber(ctx)
	if err != nil {
		return "", fmt.Errorf("eth_blockNumber: %w", err)
	}
	s.log.Debugf("chain head from node: %d", head)

	return hexutil.EncodeUint64(head), nil
}

// Close closes the node connection.
func (s *RPCSource) Close() {
	s.eth.Close()
}

package etherscan

import (
	"context"

	"github.com/goran-ethernal/ScanKit/pkg/types"
)

// Proxy wraps the geth/parity proxy module. Results are JSON-RPC values:
// quantities come back as hex strings, blocks and transactions as objects.
type Proxy struct {
	module
}

func newProxy(req Requester) *Proxy {
	return &Proxy{module{name: moduleProxy, req: req}}
}

// BlockNumber returns the number of the most recent block as a hex string.
func (p *Proxy) BlockNumber(ctx context.Context) (string, error) {
	return decode[string](p.get(ctx, "eth_blockNumber", nil))
}

// BlockByNumber returns the block at tag. full includes the full transaction objects.
func (p *Proxy) BlockByNumber(ctx context.Context, full bool, tag string) (types.Record, error) {
	tag, err := CheckTag(tag)
	if err != nil {
		return nil, err
	}

	return decode[types.Record](p.get(ctx, "eth_getBlockByNumber", types.Params{"boolean": full, "tag": tag}))
}

func (p *Proxy) UncleBlockByNumberAndIndex(ctx context.Context, index, tag string) (types.Record, error) {
	params, err := indexAndTag(index, tag)
	if err != nil {
		return nil, err
	}

	return decode[types.Record](p.get(ctx, "eth_getUncleByBlockNumberAndIndex", params))
}

func (p *Proxy) BlockTxCountByNumber(ctx context.Context, tag string) (string, error) {
	tag, err := CheckTag(tag)
	if err != nil {
		return "", err
	}

	return decode[string](p.get(ctx, "eth_getBlockTransactionCountByNumber", types.Params{"tag": tag}))
}

func (p *Proxy) TxByHash(ctx context.Context, txHash string) (types.Record, error) {
	txHash, err := CheckHex(txHash)
	if err != nil {
		return nil, err
	}

	return decode[types.Record](p.get(ctx, "eth_getTransactionByHash", types.Params{"txhash": txHash}))
}

func (p *Proxy) TxByNumberAndIndex(ctx context.Context, index, tag string) (types.Record, error) {
	params, err := indexAndTag(index, tag)
	if err != nil {
		return nil, err
	}

	return decode[types.Record](p.get(ctx, "eth_getTransactionByBlockNumberAndIndex", params))
}

// TxCount returns the number of transactions sent from address.
func (p *Proxy) TxCount(ctx context.Context, address, tag string) (string, error) {
	tag, err := CheckTag(tag)
	if err != nil {
		return "", err
	}

	return decode[string](p.get(ctx, "eth_getTransactionCount", types.Params{"address": address, "tag": tag}))
}

// SendRawTx submits a signed transaction and returns its hash.
func (p *Proxy) SendRawTx(ctx context.Context, rawHex string) (string, error) {
	return decode[string](p.post(ctx, "eth_sendRawTransaction", types.Params{"hex": rawHex}))
}

func (p *Proxy) TxReceipt(ctx context.Context, txHash string) (types.Record, error) {
	txHash, err := CheckHex(txHash)
	if err != nil {
		return nil, err
	}

	return decode[types.Record](p.get(ctx, "eth_getTransactionReceipt", types.Params{"txhash": txHash}))
}

// Call executes a message call without creating a transaction.
func (p *Proxy) Call(ctx context.Context, to, data, tag string) (string, error) {
	var err error
	if to, err = CheckHex(to); err != nil {
		return "", err
	}
	if data, err = CheckHex(data); err != nil {
		return "", err
	}
	if tag, err = CheckTag(tag); err != nil {
		return "", err
	}

	return decode[string](p.get(ctx, "eth_call", types.Params{"to": to, "data": data, "tag": tag}))
}

func (p *Proxy) Code(ctx context.Context, address, tag string) (string, error) {
	tag, err := CheckTag(tag)
	if err != nil {
		return "", err
	}

	return decode[string](p.get(ctx, "eth_getCode", types.Params{"address": address, "tag": tag}))
}

func (p *Proxy) StorageAt(ctx context.Context, address, position, tag string) (string, error) {
	tag, err := CheckTag(tag)
	if err != nil {
		return "", err
	}

	return decode[string](p.get(ctx, "eth_getStorageAt", types.Params{
		"address":  address,
		"position": position,
		"tag":      tag,
	}))
}

func (p *Proxy) GasPrice(ctx context.Context) (string, error) {
	return decode[string](p.get(ctx, "eth_gasPrice", nil))
}

// EstimateGas estimates the gas a call to the given address would use.
func (p *Proxy) EstimateGas(ctx context.Context, to, value, gasPrice, gas string) (string, error) {
	to, err := CheckHex(to)
	if err != nil {
		return "", err
	}

	return decode[string](p.get(ctx, "eth_estimateGas", types.Params{
		"to":       to,
		"value":    value,
		"gasPrice": gasPrice,
		"gas":      gas,
	}))
}

func indexAndTag(index, tag string) (types.Params, error) {
	index, err := CheckHex(index)
	if err != nil {
		return nil, err
	}
	if tag, err = CheckTag(tag); err != nil {
		return nil, err
	}

	return types.Params{"index": index, "tag": tag}, nil
}

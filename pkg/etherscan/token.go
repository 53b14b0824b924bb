package etherscan

import (
	"context"

	"github.com/goran-ethernal/ScanKit/pkg/types"
)

// Token wraps the token endpoints. Most of them are served by the stats and account modules.
type Token struct {
	module
}

func newToken(req Requester) *Token {
	return &Token{module{name: moduleToken, req: req}}
}

// TotalSupply returns the total supply of an ERC20 token.
func (t *Token) TotalSupply(ctx context.Context, contractAddress string) (string, error) {
	return decode[string](t.get(ctx, "tokensupply", types.Params{
		"module":          moduleStats,
		"contractaddress": contractAddress,
	}))
}

// AccountBalance returns the ERC20 token balance of address.
func (t *Token) AccountBalance(ctx context.Context, address, contractAddress, tag string) (string, error) {
	tag, err := CheckTag(tag)
	if err != nil {
		return "", err
	}

	return decode[string](t.get(ctx, "tokenbalance", types.Params{
		"module":          moduleAccount,
		"address":         address,
		"contractaddress": contractAddress,
		"tag":             tag,
	}))
}

func (t *Token) TotalSupplyByBlockNo(ctx context.Context, contractAddress string, block uint64) (string, error) {
	return decode[string](t.get(ctx, "tokensupplyhistory", types.Params{
		"module":          moduleStats,
		"contractaddress": contractAddress,
		"blockno":         block,
	}))
}

func (t *Token) AccountBalanceByBlockNo(ctx context.Context, address, contractAddress string, block uint64) (string, error) {
	return decode[string](t.get(ctx, "tokenbalancehistory", types.Params{
		"module":          moduleAccount,
		"address":         address,
		"contractaddress": contractAddress,
		"blockno":         block,
	}))
}

func (t *Token) TokenHolderList(ctx context.Context, contractAddress string, opts PageOptions) ([]types.Record, error) {
	return decode[[]types.Record](t.get(ctx, "tokenholderlist", types.Params{
		"contractaddress": contractAddress,
	}.With(opts.params())))
}

func (t *Token) TokenInfo(ctx context.Context, contractAddress string) ([]types.Record, error) {
	return decode[[]types.Record](t.get(ctx, "tokeninfo", types.Params{"contractaddress": contractAddress}))
}

// TokenHoldingERC20 lists the ERC20 tokens held by address.
func (t *Token) TokenHoldingERC20(ctx context.Context, address string, opts PageOptions) ([]types.Record, error) {
	return t.holdings(ctx, "addresstokenbalance", types.Params{"address": address}, opts)
}

// TokenHoldingERC721 lists the ERC721 tokens held by address.
func (t *Token) TokenHoldingERC721(ctx context.Context, address string, opts PageOptions) ([]types.Record, error) {
	return t.holdings(ctx, "addresstokennftbalance", types.Params{"address": address}, opts)
}

// TokenInventory lists the ERC721 token ids of one collection held by address.
func (t *Token) TokenInventory(ctx context.Context, address, contractAddress string, opts PageOptions) ([]types.Record, error) {
	return t.holdings(ctx, "addresstokennftinventory", types.Params{
		"address":         address,
		"contractaddress": contractAddress,
	}, opts)
}

func (t *Token) holdings(ctx context.Context, action string, params types.Params, opts PageOptions) ([]types.Record, error) {
	return decode[[]types.Record](t.get(ctx, action, params.With(opts.params()).With(types.Params{
		"module": moduleAccount,
	})))
}

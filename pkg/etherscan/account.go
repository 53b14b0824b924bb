package etherscan

import (
	"context"
	"fmt"
	"strings"

	"github.com/goran-ethernal/ScanKit/pkg/types"
)

var transferActions = map[string]string{
	StandardERC20:   "tokentx",
	StandardERC721:  "tokennfttx",
	StandardERC1155: "token1155tx",
}

// Account wraps the account module.
type Account struct {
	module
}

func newAccount(req Requester) *Account {
	return &Account{module{name: moduleAccount, req: req}}
}

// Balance returns the ether balance of address, in wei.
func (a *Account) Balance(ctx context.Context, address, tag string) (string, error) {
	tag, err := CheckTag(tag)
	if err != nil {
		return "", err
	}

	return decode[string](a.get(ctx, "balance", types.Params{"address": address, "tag": tag}))
}

// Balances returns the ether balances of several addresses in a single call.
func (a *Account) Balances(ctx context.Context, addresses []string, tag string) ([]types.Record, error) {
	tag, err := CheckTag(tag)
	if err != nil {
		return nil, err
	}

	return decode[[]types.Record](a.get(ctx, "balancemulti", types.Params{
		"address": strings.Join(addresses, ","),
		"tag":     tag,
	}))
}

// NormalTxs lists the normal transactions of address.
func (a *Account) NormalTxs(ctx context.Context, address string, opts ListOptions) ([]types.Record, error) {
	return a.list(ctx, "txlist", types.Params{"address": address}, opts)
}

// InternalTxs lists internal transactions by address or by transaction hash.
func (a *Account) InternalTxs(ctx context.Context, address, txHash string, opts ListOptions) ([]types.Record, error) {
	return a.list(ctx, "txlistinternal", types.Params{
		"address": optional(address),
		"txhash":  optional(txHash),
	}, opts)
}

// TokenFilter selects token transfers by holder, by token contract, or both.
type TokenFilter struct {
	Address         string
	ContractAddress string
	// Standard is one of erc20, erc721 or erc1155. Empty means erc20.
	Standard string
}

func (f TokenFilter) action() (string, types.Params, error) {
	if f.Address == "" && f.ContractAddress == "" {
		return "", nil, fmt.Errorf("%w: at least one of address or contract address must be specified", ErrInvalidArgument)
	}

	standard, err := CheckTokenStandard(f.Standard)
	if err != nil {
		return "", nil, err
	}
	if standard == "" {
		standard = StandardERC20
	}

	return transferActions[strings.ToLower(standard)], types.Params{
		"address":         optional(f.Address),
		"contractaddress": optional(f.ContractAddress),
	}, nil
}

// TokenTransfers lists token transfer events.
func (a *Account) TokenTransfers(ctx context.Context, filter TokenFilter, opts ListOptions) ([]types.Record, error) {
	action, params, err := filter.action()
	if err != nil {
		return nil, err
	}

	return a.list(ctx, action, params, opts)
}

// MinedBlocks lists blocks validated by address.
func (a *Account) MinedBlocks(ctx context.Context, address, blockType string, opts PageOptions) ([]types.Record, error) {
	if blockType == "" {
		blockType = BlockTypeBlocks
	}
	blockType, err := CheckBlockType(blockType)
	if err != nil {
		return nil, err
	}

	return decode[[]types.Record](a.get(ctx, "getminedblocks", types.Params{
		"address":   address,
		"blocktype": blockType,
	}.With(opts.params())))
}

// BeaconChainWithdrawals lists beacon chain withdrawals to address.
func (a *Account) BeaconChainWithdrawals(ctx context.Context, address string, opts ListOptions) ([]types.Record, error) {
	return a.list(ctx, "txsBeaconWithdrawal", types.Params{"address": address}, opts)
}

// BalanceByBlockNo returns the historical ether balance of address at block.
func (a *Account) BalanceByBlockNo(ctx context.Context, address string, block uint64) (string, error) {
	return decode[string](a.get(ctx, "balancehistory", types.Params{"address": address, "blockno": block}))
}

func (a *Account) list(ctx context.Context, action string, params types.Params, opts ListOptions) ([]types.Record, error) {
	window, err := opts.params()
	if err != nil {
		return nil, err
	}

	return a.page(ctx, params.With(window).With(types.Params{"action": action}))
}

// page requests one page of a listing endpoint. params carry the action and may override the module.
func (a *Account) page(ctx context.Context, params types.Params) ([]types.Record, error) {
	action, _ := params["action"].(string)
	return decode[[]types.Record](a.get(ctx, action, params))
}

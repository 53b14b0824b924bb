package etherscan

import (
	"context"
	"errors"
	"strings"

	"github.com/goran-ethernal/ScanKit/pkg/types"
)

const sourceNotVerified = "contract source code not verified"

// ContractUtils combines documented endpoints into contract level helpers.
type ContractUtils struct {
	account  *Account
	contract *Contract
}

func newContractUtils(account *Account, contract *Contract) *ContractUtils {
	return &ContractUtils{account: account, contract: contract}
}

// IsContract reports whether address holds a verified contract.
func (u *ContractUtils) IsContract(ctx context.Context, address string) (bool, error) {
	abi, err := u.contract.ContractABI(ctx, address)
	if err != nil {
		var apiErr *types.APIError
		if errors.As(err, &apiErr) &&
			strings.EqualFold(apiErr.Message, "NOTOK") &&
			strings.EqualFold(strings.TrimSpace(apiErr.ResultString()), sourceNotVerified) {
			return false, nil
		}
		return false, err
	}

	return abi != "", nil
}

// GetContractCreator returns the lowercased sender of the first internal transaction of
// contractAddress, falling back to its first normal transaction. An empty string and no
// error are returned when the address has neither.
func (u *ContractUtils) GetContractCreator(ctx context.Context, contractAddress string) (string, error) {
	first := ListOptions{StartBlock: Uint64(1), Page: 1, Offset: 1}

	records, err := u.account.InternalTxs(ctx, contractAddress, "", first)
	if err != nil && !types.IsNoTransactionsFound(err) {
		return "", err
	}

	if len(records) == 0 {
		records, err = u.account.NormalTxs(ctx, contractAddress, first)
		if err != nil && !types.IsNoTransactionsFound(err) {
			return "", err
		}
	}

	for _, r := range records {
		return strings.ToLower(r.String("from")), nil
	}

	return "", nil
}

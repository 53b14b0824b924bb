package etherscan

import (
	"context"

	"github.com/goran-ethernal/ScanKit/pkg/types"
)

// Transaction wraps the transaction module.
type Transaction struct {
	module
}

func newTransaction(req Requester) *Transaction {
	return &Transaction{module{name: moduleTransaction, req: req}}
}

// ContractExecutionStatus returns the error status of a contract execution.
func (t *Transaction) ContractExecutionStatus(ctx context.Context, txHash string) (types.Record, error) {
	return decode[types.Record](t.get(ctx, "getstatus", types.Params{"txhash": txHash}))
}

// TxReceiptStatus returns the receipt status of a post-Byzantium transaction.
func (t *Transaction) TxReceiptStatus(ctx context.Context, txHash string) (types.Record, error) {
	return decode[types.Record](t.get(ctx, "gettxreceiptstatus", types.Params{"txhash": txHash}))
}

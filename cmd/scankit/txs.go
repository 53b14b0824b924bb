package main

import (
	"encoding/json"
	"fmt"

	"github.com/goran-ethernal/ScanKit/pkg/etherscan"
	"github.com/spf13/cobra"
)

var txsArgs struct {
	query
	startBlock int64
	endBlock   int64
}

var txsCmd = &cobra.Command{
	Use:   "txs <address>",
	Short: "Stream a complete listing as JSON lines",
	Long: `Stream every record of a listing in block order, one JSON object per line.
The end block defaults to the current chain head.`,
	Example: `  scankit txs 0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae
  scankit txs --kind token --standard erc721 --start 15000000 0xde0b...
  scankit txs --kind logs --topic 0=0xddf2... --topic 1=0x000...a1 --topic-operator 0,1=and 0xa0b8...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTxs,
}

func init() {
	txsArgs.addFlags(txsCmd.Flags())
	txsCmd.Flags().Int64Var(&txsArgs.startBlock, "start", -1, "first block, -1 uses the configured start block")
	txsCmd.Flags().Int64Var(&txsArgs.endBlock, "end", -1, "last block, -1 uses the chain head")
}

func runTxs(cmd *cobra.Command, args []string) error {
	if err := txsArgs.validate(allKinds); err != nil {
		return err
	}

	var address string
	if len(args) > 0 {
		address = args[0]
	}

	ctx := cmd.Context()
	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := etherscan.BlocksOptions{}
	if txsArgs.startBlock >= 0 {
		opts.StartBlock = etherscan.Uint64(uint64(txsArgs.startBlock))
	}
	if txsArgs.endBlock >= 0 {
		opts.EndBlock = etherscan.Uint64(uint64(txsArgs.endBlock))
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	count := 0
	for record, err := range txsArgs.scan(ctx, s.client.Generators, address, opts) {
		if err != nil {
			return fmt.Errorf("scan failed after %d records: %w", count, err)
		}
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
		count++
	}

	s.log.Infof("streamed %d %s records", count, txsArgs.kind)

	return nil
}

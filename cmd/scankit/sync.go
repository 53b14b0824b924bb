package main

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/ethereum/go-ethereum/common"
	scancommon "github.com/goran-ethernal/ScanKit/internal/common"
	"github.com/goran-ethernal/ScanKit/internal/logger"
	"github.com/goran-ethernal/ScanKit/internal/metrics"
	"github.com/goran-ethernal/ScanKit/internal/store"
	"github.com/goran-ethernal/ScanKit/pkg/etherscan"
	"github.com/goran-ethernal/ScanKit/pkg/types"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var syncArgs struct {
	query
	concurrency int
	batchSize   int
}

var syncCmd = &cobra.Command{
	Use:   "sync <address>...",
	Short: "Sync listings of addresses into the record store",
	Long: `Scan the listing of every address up to the current chain head and store the
records in the configured SQLite store. Each address resumes from the block after
its checkpoint, so repeated runs only fetch new blocks.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSync,
}

func init() {
	syncArgs.addFlags(syncCmd.Flags())
	syncCmd.Flags().IntVar(&syncArgs.concurrency, "concurrency", 4, "addresses synced in parallel")
	syncCmd.Flags().IntVar(&syncArgs.batchSize, "batch-size", 500, "records written per transaction")
}

func runSync(cmd *cobra.Command, args []string) error {
	if err := syncArgs.validate(blockKinds); err != nil {
		return err
	}
	if syncArgs.concurrency < 1 || syncArgs.batchSize < 1 {
		return errors.New("concurrency and batch-size must be positive")
	}
	for _, address := range args {
		if !common.IsHexAddress(address) {
			return fmt.Errorf("invalid address %q", address)
		}
	}

	ctx := cmd.Context()
	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if s.cfg.Store == nil {
		return errors.New("sync requires a store section in the configuration")
	}

	stopMetrics, err := s.startMetrics(ctx)
	if err != nil {
		return err
	}
	defer stopMetrics()

	st, err := store.Open(ctx, *s.cfg.Store,
		logger.NewComponentLoggerFromConfig(scancommon.ComponentRecordStore, s.cfg.Logging))
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			s.log.Warnf("failed to close record store: %v", err)
		}
	}()

	head, err := s.client.Generators.CurrentBlock(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve chain head: %w", err)
	}

	s.log.Infof("syncing %d address(es), kind %s, up to block %d", len(args), syncArgs.kind, head)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(syncArgs.concurrency)

	for _, address := range args {
		w := &syncer{
			generators: s.client.Generators,
			store:      st,
			address:    common.HexToAddress(address),
			kind:       syncArgs.kind,
			startBlock: s.cfg.Scan.StartBlock,
			head:       head,
			batch:      syncArgs.batchSize,
			scanFunc:   syncArgs.scan,
			log:        s.log.WithFields("address", address),
		}
		g.Go(func() error {
			return w.run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		metrics.ComponentHealthSet(scancommon.ComponentCLI, false)
		return err
	}

	metrics.ComponentHealthSet(scancommon.ComponentCLI, true)
	s.log.Info("sync finished")

	return nil
}

// syncer moves the listing of one address into the store.
type syncer struct {
	generators *etherscan.Generators
	store      *store.Store
	address    common.Address
	kind       string
	startBlock uint64
	head       uint64
	batch      int
	scanFunc   func(context.Context, *etherscan.Generators, string, etherscan.BlocksOptions) iter.Seq2[types.Record, error]
	log        *logger.Logger
}

func (w *syncer) run(ctx context.Context) error {
	start := w.startBlock

	last, ok, err := w.store.Checkpoint(ctx, w.address, w.kind)
	if err != nil {
		return err
	}
	if ok {
		start = last + 1
	}
	if start > w.head {
		w.log.Infof("nothing to sync, block %d is past head %d", start, w.head)
		return nil
	}

	began := time.Now()
	opts := etherscan.BlocksOptions{StartBlock: etherscan.Uint64(start), EndBlock: etherscan.Uint64(w.head)}

	pending := make([]types.Record, 0, w.batch)
	total, inserted := 0, 0

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}

		n, err := w.store.SaveRecords(ctx, w.address, w.kind, pending)
		if err != nil {
			return err
		}
		inserted += n

		// every block before the newest one seen is complete
		newest, err := pending[len(pending)-1].BlockNumber()
		if err != nil {
			return err
		}
		if newest > start {
			if err := w.store.SetCheckpoint(ctx, w.address, w.kind, newest-1); err != nil {
				return err
			}
		}

		pending = pending[:0]
		return nil
	}

	for record, err := range w.scanFunc(ctx, w.generators, w.address.Hex(), opts) {
		if err != nil {
			metrics.ErrorsInc(scancommon.ComponentCLI, "error")
			if flushErr := flush(); flushErr != nil {
				w.log.Warnf("failed to store partial batch: %v", flushErr)
			}
			return fmt.Errorf("sync of %s failed after %d records: %w", w.address.Hex(), total, err)
		}

		pending = append(pending, record)
		total++
		if len(pending) >= w.batch {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	if err := flush(); err != nil {
		return err
	}
	if err := w.store.SetCheckpoint(ctx, w.address, w.kind, w.head); err != nil {
		return err
	}

	metrics.RecordsSyncedAdd(w.kind, total)
	metrics.LastSyncedBlockSet(w.kind, w.head)
	metrics.SyncDurationLog(w.kind, time.Since(began))
	w.log.Infof("synced blocks %d-%d: %d records, %d new, took %v", start, w.head, total, inserted, time.Since(began))

	return nil
}

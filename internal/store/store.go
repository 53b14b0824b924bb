package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/goran-ethernal/ScanKit/internal/db"
	"github.com/goran-ethernal/ScanKit/internal/logger"
	"github.com/goran-ethernal/ScanKit/internal/migrations"
	"github.com/goran-ethernal/ScanKit/pkg/config"
	"github.com/goran-ethernal/ScanKit/pkg/types"
	"github.com/russross/meddler"
)

const recordsTable = "records"

// Store is a SQLite sink for scan output.
// Records are keyed by (address, kind, identity), so the overlap a truncated page
// leaves behind is stored once.
type Store struct {
	db          *sql.DB
	maintenance db.Maintenance
	log         *logger.Logger
}

// Open opens the database, applies pending migrations and starts background maintenance.
func Open(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid store configuration: %w", err)
	}

	sqlDB, err := db.NewSQLiteDBFromConfig(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}

	if err := migrations.RunMigrationsDB(log, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate record store: %w", err)
	}

	maintenance := db.NewMaintenanceCoordinator(cfg.DB.Path, sqlDB, cfg.Maintenance, log)
	if err := maintenance.Start(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to start maintenance: %w", err)
	}

	log.Infof("record store opened at %s", cfg.DB.Path)

	return &Store{
		db:          sqlDB,
		maintenance: maintenance,
		log:         log,
	}, nil
}

// SaveRecords stores records of the given kind for address and returns how many were new.
func (s *Store) SaveRecords(ctx context.Context, address common.Address, kind string, records []types.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	unlock := s.maintenance.AcquireOperationLock()
	defer unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollback(tx)

	now := time.Now().UTC()
	inserted := 0

	for _, record := range records {
		row, err := toDBRecord(address, kind, record, now)
		if err != nil {
			return 0, err
		}

		n, err := insertOrIgnore(ctx, tx, recordsTable, row)
		if err != nil {
			return 0, fmt.Errorf("failed to insert record %s: %w", row.Identity, err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	recordsInsertedAdd(kind, inserted)
	recordsDuplicatedAdd(kind, len(records)-inserted)
	s.log.Debugf("stored %d/%d %s records for %s", inserted, len(records), kind, address.Hex())

	return inserted, nil
}

// Records returns the stored records of address and kind ordered by block.
func (s *Store) Records(ctx context.Context, address common.Address, kind string) ([]types.Record, error) {
	unlock := s.maintenance.AcquireOperationLock()
	defer unlock()

	const query = `
		SELECT * FROM records
		WHERE address = ? AND kind = ?
		ORDER BY block_number ASC, id ASC
	`
	var rows []*dbRecord
	if err := meddler.QueryAll(s.db, &rows, query, addressKey(address), kind); err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}

	records := make([]types.Record, len(rows))
	for i, row := range rows {
		records[i] = row.Data
	}

	return records, nil
}

// Checkpoint returns the last fully scanned block of address and kind.
// ok is false when nothing was scanned yet.
func (s *Store) Checkpoint(ctx context.Context, address common.Address, kind string) (block uint64, ok bool, err error) {
	unlock := s.maintenance.AcquireOperationLock()
	defer unlock()

	const query = `SELECT * FROM checkpoints WHERE address = ? AND kind = ?`

	var cp dbCheckpoint
	err = meddler.QueryRow(s.db, &cp, query, addressKey(address), kind)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to query checkpoint: %w", err)
	}

	return cp.LastBlock, true, nil
}

// SetCheckpoint records block as fully scanned. A checkpoint never moves backwards.
func (s *Store) SetCheckpoint(ctx context.Context, address common.Address, kind string, block uint64) error {
	unlock := s.maintenance.AcquireOperationLock()
	defer unlock()

	const query = `
		INSERT INTO checkpoints (address, kind, last_block, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(address, kind) DO UPDATE SET
			last_block = MAX(last_block, excluded.last_block),
			updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, addressKey(address), kind, block, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	checkpointLog(kind, block)

	return nil
}

// Maintenance exposes the maintenance coordinator of the underlying database.
func (s *Store) Maintenance() db.Maintenance {
	return s.maintenance
}

// Close stops maintenance and closes the database.
func (s *Store) Close() error {
	if err := s.maintenance.Stop(); err != nil {
		s.log.Warnf("failed to stop maintenance: %v", err)
	}

	return s.db.Close()
}

func (s *Store) rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		s.log.Errorf("failed to rollback transaction: %v", err)
	}
}

func insertOrIgnore(ctx context.Context, tx *sql.Tx, table string, row any) (int64, error) {
	columns, err := meddler.ColumnsQuoted(row, false)
	if err != nil {
		return 0, err
	}
	placeholders, err := meddler.PlaceholdersString(row, false)
	if err != nil {
		return 0, err
	}
	values, err := meddler.Values(row, false)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf("INSERT OR IGNORE INTO %s (%s) VALUES (%s)", table, columns, placeholders)
	res, err := tx.ExecContext(ctx, query, values...)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func toDBRecord(address common.Address, kind string, record types.Record, now time.Time) (*dbRecord, error) {
	block, err := record.BlockNumber()
	if err != nil {
		return nil, err
	}

	return &dbRecord{
		Address:     address,
		Kind:        kind,
		Identity:    record.Identity(),
		BlockNumber: block,
		TxHash:      txHash(record),
		Data:        record,
		CreatedAt:   now,
	}, nil
}

// txHash returns the transaction hash of the record, nil for records without one.
func txHash(record types.Record) *common.Hash {
	for _, field := range []string{"hash", "transactionHash"} {
		raw, err := hexutil.Decode(record.String(field))
		if err == nil && len(raw) == common.HashLength {
			hash := common.BytesToHash(raw)
			return &hash
		}
	}

	return nil
}

// addressKey matches the lowercase form written by the address meddler.
func addressKey(address common.Address) string {
	return strings.ToLower(address.Hex())
}

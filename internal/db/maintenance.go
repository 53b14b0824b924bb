package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goran-ethernal/ScanKit/internal/logger"
	"github.com/goran-ethernal/ScanKit/pkg/config"
)

type Maintenance interface {
	// Start begins background maintenance if enabled.
	Start(ctx context.Context) error
	// Stop stops background maintenance and waits for completion.
	Stop() error
	// AcquireOperationLock acquires a shared lock for a database operation.
	// The returned function releases it.
	AcquireOperationLock() func()
	// Stats returns the counters of past maintenance runs.
	Stats() MaintenanceStats
	// RunMaintenance checkpoints the WAL and vacuums the database.
	RunMaintenance(ctx context.Context) error
}

// NoOpMaintenance is used when maintenance is not configured.
type NoOpMaintenance struct{}

func (m *NoOpMaintenance) Start(context.Context) error          { return nil }
func (m *NoOpMaintenance) Stop() error                          { return nil }
func (m *NoOpMaintenance) RunMaintenance(context.Context) error { return nil }
func (m *NoOpMaintenance) AcquireOperationLock() func()         { return func() {} }
func (m *NoOpMaintenance) Stats() MaintenanceStats              { return MaintenanceStats{} }

// MaintenanceStats provides visibility into maintenance runs.
type MaintenanceStats struct {
	LastRun   time.Time
	Runs      uint64
	LastError error
}

// MaintenanceCoordinator serializes maintenance against normal operations.
// Operations hold the read side of opLock, maintenance holds the write side.
type MaintenanceCoordinator struct {
	db     *sql.DB
	config config.MaintenanceConfig
	dbPath string
	log    *logger.Logger

	opLock sync.RWMutex

	cancel context.CancelFunc
	wg     sync.WaitGroup

	statsLock sync.Mutex
	stats     MaintenanceStats
}

// NewMaintenanceCoordinator returns a NoOpMaintenance when cfg is nil.
func NewMaintenanceCoordinator(dbPath string, db *sql.DB, cfg *config.MaintenanceConfig, log *logger.Logger) Maintenance {
	if cfg == nil {
		return &NoOpMaintenance{}
	}

	return newMaintenanceCoordinator(dbPath, db, *cfg, log)
}

func newMaintenanceCoordinator(dbPath string, db *sql.DB, cfg config.MaintenanceConfig, log *logger.Logger) *MaintenanceCoordinator {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &MaintenanceCoordinator{
		db:     db,
		config: cfg,
		dbPath: dbPath,
		log:    log.WithComponent("db-maintenance"),
	}
}

// Start begins background maintenance if enabled.
func (m *MaintenanceCoordinator) Start(ctx context.Context) error {
	if !m.config.Enabled {
		m.log.Info("background maintenance is disabled")
		return nil
	}

	ctx, m.cancel = context.WithCancel(ctx)

	if m.config.VacuumOnStartup {
		m.log.Info("running startup maintenance")
		if err := m.RunMaintenance(ctx); err != nil {
			m.log.Warnf("startup maintenance failed: %v", err)
		}
	}

	m.wg.Add(1)
	go m.worker(ctx, m.config.CheckInterval.Duration)

	m.log.Infof("background maintenance started, interval: %v, checkpoint mode: %s",
		m.config.CheckInterval.Duration, m.config.WALCheckpointMode)

	return nil
}

// Stop stops background maintenance and waits for the worker to exit.
func (m *MaintenanceCoordinator) Stop() error {
	if m.cancel == nil {
		return nil
	}

	m.cancel()
	m.wg.Wait()
	m.cancel = nil
	m.log.Info("background maintenance stopped")

	return nil
}

func (m *MaintenanceCoordinator) worker(ctx context.Context, interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.log.Debug("running periodic maintenance")
			if err := m.RunMaintenance(ctx); err != nil {
				m.log.Warnf("periodic maintenance failed: %v", err)
			}
		}
	}
}

// RunMaintenance takes the exclusive lock, checkpoints the WAL and vacuums the database.
func (m *MaintenanceCoordinator) RunMaintenance(ctx context.Context) error {
	start := time.Now()
	maintenanceRunsInc()

	m.opLock.Lock()
	defer m.opLock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	initialSize, err := DBTotalSize(m.dbPath)
	if err != nil {
		m.log.Warnf("failed to get initial DB size: %v", err)
	}

	var runErr error
	if err := m.walCheckpoint(); err != nil {
		runErr = fmt.Errorf("WAL checkpoint failed: %w", err)
	}
	if err := Vacuum(m.db); err != nil {
		m.log.Warnf("VACUUM failed: %v", err)
		if runErr == nil {
			runErr = err
		}
	} else {
		vacuumRunsInc()
	}

	finalSize, err := DBTotalSize(m.dbPath)
	if err != nil {
		m.log.Warnf("failed to get final DB size: %v", err)
	}

	m.statsLock.Lock()
	m.stats.LastRun = time.Now().UTC()
	m.stats.Runs++
	m.stats.LastError = runErr
	m.statsLock.Unlock()

	maintenanceDurationLog(time.Since(start))

	if runErr != nil {
		maintenanceOutcomeInc("error")
		return runErr
	}

	maintenanceOutcomeInc("success")
	dbSizeLog(finalSize)
	if initialSize > finalSize {
		m.log.Infof("maintenance reclaimed %d bytes in %v", initialSize-finalSize, time.Since(start))
	}

	return nil
}

func (m *MaintenanceCoordinator) walCheckpoint() error {
	var mode string
	if err := m.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		return fmt.Errorf("failed to check journal mode: %w", err)
	}
	if !strings.EqualFold(mode, "wal") {
		m.log.Debug("database not in WAL mode, skipping WAL checkpoint")
		return nil
	}

	var busy, logFrames, checkpointed int
	err := m.db.QueryRow(fmt.Sprintf("PRAGMA wal_checkpoint(%s)", m.config.WALCheckpointMode)).
		Scan(&busy, &logFrames, &checkpointed)
	if err != nil {
		return err
	}

	walCheckpointInc(strings.ToLower(m.config.WALCheckpointMode))
	m.log.Debugf("WAL checkpoint mode: %s, busy: %d, log frames: %d, checkpointed: %d",
		m.config.WALCheckpointMode, busy, logFrames, checkpointed)

	return nil
}

// AcquireOperationLock acquires the shared side of the maintenance lock.
func (m *MaintenanceCoordinator) AcquireOperationLock() func() {
	m.opLock.RLock()
	return m.opLock.RUnlock
}

func (m *MaintenanceCoordinator) Stats() MaintenanceStats {
	m.statsLock.Lock()
	defer m.statsLock.Unlock()

	return m.stats
}

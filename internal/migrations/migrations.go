package migrations

import (
	"database/sql"
	_ "embed"

	"github.com/goran-ethernal/ScanKit/internal/db"
	"github.com/goran-ethernal/ScanKit/internal/logger"
)

//go:embed 001_records.sql
var mig001 string

//go:embed 002_checkpoints.sql
var mig002 string

// All returns the record store migrations in the order they apply.
func All() []db.Migration {
	return []db.Migration{
		{
			ID:  "001_records.sql",
			SQL: mig001,
		},
		{
			ID:  "002_checkpoints.sql",
			SQL: mig002,
		},
	}
}

func RunMigrations(dbPath string) error {
	return db.RunMigrations(dbPath, All())
}

func RunMigrationsDB(log *logger.Logger, sqlDB *sql.DB) error {
	return db.RunMigrationsDB(log, sqlDB, All())
}

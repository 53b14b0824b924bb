package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/goran-ethernal/ScanKit/internal/logger"
	migrate "github.com/rubenv/sql-migrate"
)

const (
	UpSeparator   = "-- +migrate Up"
	DownSeparator = "-- +migrate Down"

	// NoLimitMigrations applies every pending migration.
	NoLimitMigrations = 0
)

// Migration is one SQL file holding a Down section followed by an Up section.
type Migration struct {
	ID  string
	SQL string
}

// RunMigrations applies every pending migration to the database at dbPath.
func RunMigrations(dbPath string, migrations []Migration) error {
	db, err := NewSQLiteDB(dbPath)
	if err != nil {
		return fmt.Errorf("error creating DB %w", err)
	}
	defer db.Close()

	return RunMigrationsDB(logger.GetDefaultLogger(), db, migrations)
}

// RunMigrationsDB applies every pending migration on an open database.
func RunMigrationsDB(log *logger.Logger, db *sql.DB, migrations []Migration) error {
	return RunMigrationsDBExtended(log, db, migrations, migrate.Up, NoLimitMigrations)
}

// RunMigrationsDBExtended applies at most maxMigrations migrations in direction dir.
func RunMigrationsDBExtended(log *logger.Logger,
	db *sql.DB,
	migrations []Migration,
	dir migrate.MigrationDirection,
	maxMigrations int) error {
	source, err := memorySource(migrations)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(source.Migrations))
	for _, m := range source.Migrations {
		ids = append(ids, m.Id)
	}
	list := strings.Join(ids, ", ")

	log.Debugf("running migrations (max %d/%d): %s", maxMigrations, len(ids), list)

	n, err := migrate.ExecMax(db, "sqlite3", source, dir, maxMigrations)
	if err != nil {
		return fmt.Errorf("error executing migrations (max %d/%d) %s: %w", maxMigrations, len(ids), list, err)
	}

	log.Infof("successfully ran %d migrations from: %s", n, list)
	return nil
}

func memorySource(migrations []Migration) (*migrate.MemoryMigrationSource, error) {
	source := &migrate.MemoryMigrationSource{}

	for _, m := range migrations {
		down, up, found := strings.Cut(m.SQL, UpSeparator)
		if !found {
			return nil, fmt.Errorf("migration %s missing '%s' separator", m.ID, UpSeparator)
		}

		if _, after, ok := strings.Cut(down, DownSeparator); ok {
			down = after
		}

		source.Migrations = append(source.Migrations, &migrate.Migration{
			Id:   m.ID,
			Up:   []string{strings.TrimSpace(up)},
			Down: []string{strings.TrimSpace(down)},
		})
	}

	return source, nil
}

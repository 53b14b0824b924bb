package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/ScanKit/internal/logger"
	"github.com/goran-ethernal/ScanKit/pkg/config"
	"github.com/russross/meddler"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T, journal string) (*sql.DB, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "scankit_test.db")

	dbConfig := config.DatabaseConfig{Path: dbPath, JournalMode: journal}
	dbConfig.ApplyDefaults()

	sqlDB, err := NewSQLiteDBFromConfig(dbConfig)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return sqlDB, dbPath
}

func TestVacuum_Modes(t *testing.T) {
	t.Parallel()

	for _, journal := range []string{"WAL", "TRUNCATE"} {
		t.Run(journal, func(t *testing.T) {
			t.Parallel()

			db, dbPath := openTestDB(t, journal)

			_, err := db.Exec(`CREATE TABLE payloads (id INTEGER PRIMARY KEY, value TEXT);`)
			require.NoError(t, err)
			for i := range 2000 {
				_, err = db.Exec(`INSERT INTO payloads (value) VALUES (?);`, fmt.Sprintf("value_%d", i))
				require.NoError(t, err)
			}
			_, err = db.Exec(`DELETE FROM payloads WHERE id % 2 = 0;`)
			require.NoError(t, err)

			initialSize, err := DBTotalSize(dbPath)
			require.NoError(t, err)

			require.NoError(t, Vacuum(db))

			finalSize, err := DBTotalSize(dbPath)
			require.NoError(t, err)
			require.Positive(t, finalSize)

			if journal != "WAL" {
				require.LessOrEqual(t, finalSize, initialSize)
			}
		})
	}
}

func TestDBTotalSize(t *testing.T) {
	testCases := []struct {
		name       string
		files      map[string]string
		expectSize int64
	}{
		{
			name:       "main only",
			files:      map[string]string{"": "main-db-content"},
			expectSize: int64(len("main-db-content")),
		},
		{
			name:       "with wal and shm",
			files:      map[string]string{"": "main-db", "-wal": "wal-content", "-shm": "shm"},
			expectSize: int64(len("main-db") + len("wal-content") + len("shm")),
		},
		{
			name:       "missing files",
			files:      nil,
			expectSize: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mainPath := filepath.Join(t.TempDir(), "main.db")
			for suffix, data := range tc.files {
				require.NoError(t, os.WriteFile(mainPath+suffix, []byte(data), 0o644))
			}

			size, err := DBTotalSize(mainPath)
			require.NoError(t, err)
			require.Equal(t, tc.expectSize, size)
		})
	}
}

func TestRunMigrationsDB(t *testing.T) {
	db, _ := openTestDB(t, "WAL")

	migrations := []Migration{
		{
			ID: "001_payloads.sql",
			SQL: `-- +migrate Down
DROP TABLE IF EXISTS payloads;

-- +migrate Up
CREATE TABLE payloads (id INTEGER PRIMARY KEY, value TEXT);`,
		},
	}

	log := logger.NewNopLogger()
	require.NoError(t, RunMigrationsDB(log, db, migrations))
	// applied migrations are recorded and not run twice
	require.NoError(t, RunMigrationsDB(log, db, migrations))

	_, err := db.Exec(`INSERT INTO payloads (value) VALUES ('x')`)
	require.NoError(t, err)

	t.Run("missing up separator", func(t *testing.T) {
		err := RunMigrationsDB(log, db, []Migration{{ID: "002_bad.sql", SQL: "CREATE TABLE bad (id INTEGER);"}})
		require.ErrorContains(t, err, "missing")
	})
}

type meddledRow struct {
	ID      int64           `meddler:"id,pk"`
	Address common.Address  `meddler:"address,address"`
	Hash    *common.Hash    `meddler:"hash,hash"`
	Other   *common.Address `meddler:"other,address"`
}

func TestMeddlers(t *testing.T) {
	db, _ := openTestDB(t, "WAL")

	_, err := db.Exec(`CREATE TABLE meddled (id INTEGER PRIMARY KEY, address TEXT NOT NULL, hash TEXT, other TEXT)`)
	require.NoError(t, err)

	hash := common.HexToHash("0xabc")
	rows := []*meddledRow{
		{Address: common.HexToAddress("0xDEADbeef00000000000000000000000000000001"), Hash: &hash},
		{Address: common.HexToAddress("0x02")},
	}
	for _, row := range rows {
		require.NoError(t, meddler.Insert(db, "meddled", row))
	}

	var stored string
	require.NoError(t, db.QueryRow(`SELECT address FROM meddled WHERE id = ?`, rows[0].ID).Scan(&stored))
	require.Equal(t, "0xdeadbeef00000000000000000000000000000001", stored)

	var loaded []*meddledRow
	require.NoError(t, meddler.QueryAll(db, &loaded, `SELECT * FROM meddled ORDER BY id`))
	require.Len(t, loaded, 2)
	require.Equal(t, rows[0].Address, loaded[0].Address)
	require.Equal(t, hash, *loaded[0].Hash)
	require.Nil(t, loaded[0].Other)
	require.Nil(t, loaded[1].Hash)
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T, name string) *DB {
	t.Helper()
	db, err := New(Config{Path: filepath.Join(t.TempDir(), name+".db"), Name: name})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *DB, table string) bool {
	t.Helper()
	var n int
	err := db.Conn().QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&n)
	require.NoError(t, err)
	return n == 1
}

func TestMigrate_AppliesEmbeddedSchemas(t *testing.T) {
	charts := newDB(t, NameCharts)
	require.NoError(t, charts.Migrate())
	assert.True(t, tableExists(t, charts, "saved_charts"))
	assert.True(t, tableExists(t, charts, "render_log"))

	datasets := newDB(t, NameDatasets)
	require.NoError(t, datasets.Migrate())
	assert.True(t, tableExists(t, datasets, "dataset_rows"))
	assert.True(t, tableExists(t, datasets, "dataset_columns"))

	// idempotent
	require.NoError(t, charts.Migrate())
}

func TestMigrate_UnknownNameIsNoop(t *testing.T) {
	db := newDB(t, "scratch")
	require.NoError(t, db.Migrate())
	assert.False(t, tableExists(t, db, "saved_charts"))
}

func TestNew_DefaultsProfileAndCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "charts.db")
	db, err := New(Config{Path: path, Name: NameCharts})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, ProfileStandard, db.profile)
	assert.Equal(t, path, db.Path())
	assert.Equal(t, NameCharts, db.Name())
}

func TestWithTransaction(t *testing.T) {
	db := newDB(t, "tx")
	_, err := db.Conn().Exec("CREATE TABLE t (v INTEGER)")
	require.NoError(t, err)

	count := func() int {
		var n int
		require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM t").Scan(&n))
		return n
	}

	t.Run("commits on success", func(t *testing.T) {
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			_, err := tx.Exec("INSERT INTO t (v) VALUES (1)")
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, 1, count())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			_, _ = tx.Exec("INSERT INTO t (v) VALUES (2)")
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, count())
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			_, _ = tx.Exec("INSERT INTO t (v) VALUES (3)")
			panic("bad")
		})
		assert.ErrorContains(t, err, "panic in transaction")
		assert.Equal(t, 1, count())
	})

	t.Run("nil connection", func(t *testing.T) {
		assert.Error(t, WithTransaction(nil, func(*sql.Tx) error { return nil }))
	})
}

func TestHealthAndStats(t *testing.T) {
	db := newDB(t, NameCharts)
	require.NoError(t, db.Migrate())

	require.NoError(t, db.HealthCheck(context.Background()))
	require.NoError(t, db.WALCheckpoint())

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Equal(t, NameCharts, stats.Name)
	assert.Greater(t, stats.PageCount, int64(0))
}

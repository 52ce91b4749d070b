package iocache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/sitpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateHistoryNoneBackend(t *testing.T) {
	err := MigrateHistory(schema.NoneBackend, "", -1)
	assert.ErrorContains(t, err, "migrations are not supported for NoneBackend")
}

func TestMigrateHistoryUnsupportedBackend(t *testing.T) {
	err := MigrateHistory("oracle", "", -1)
	assert.ErrorContains(t, err, "unsupported backend")
}

func TestMigrateHistorySQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	// Latest, then a no-op rerun
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, -1))
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, -1))

	// Step down and back up
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, 1))
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, 0))
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, 2))

	// The migrated schema is the one the store writes to
	store, err := NewHistoryStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	runID, err := store.BeginRun(time.Now(), testRunParams(), nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordSeries(runID, testSeries()))
	require.NoError(t, store.EndRun(runID, time.Now(), 6))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalRuns)
}

func TestMigrationDirsEmbedded(t *testing.T) {
	for backend, dir := range migrationDirs {
		entries, err := migrationsFS.ReadDir(dir)
		require.NoError(t, err, backend)
		assert.Len(t, entries, 4, backend)
	}
}

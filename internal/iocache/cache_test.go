package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/sitpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetGlobals restores the global manager so InitStores can run again.
func resetGlobals(t *testing.T) {
	t.Helper()
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	Manager = &CacheStoreManager{}
	t.Cleanup(func() {
		CloseStores()
		initOnce = sync.Once{}
		closeOnce = sync.Once{}
		Manager = &CacheStoreManager{}
	})
}

func TestInitStores(t *testing.T) {
	t.Run("sqlite cache and history", func(t *testing.T) {
		resetGlobals(t)
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")
		historyPath := filepath.Join(dir, "history.db")

		err := InitStores(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, historyPath)
		require.NoError(t, err)

		assert.NotNil(t, Manager.GetReportStore())
		assert.NotNil(t, Manager.GetHistoryStore())

		CloseStores()
		for _, path := range []string{cachePath, historyPath} {
			_, err := os.Stat(path)
			assert.NoError(t, err, "database file should be created")
		}
	})

	t.Run("idempotent setup", func(t *testing.T) {
		resetGlobals(t)
		cachePath := filepath.Join(t.TempDir(), "cache.db")

		for range 3 {
			assert.NoError(t, InitStores(schema.SQLiteBackend, cachePath, "", ""))
		}
		first := Manager.GetReportStore()
		assert.NoError(t, InitStores(schema.SQLiteBackend, filepath.Join(t.TempDir(), "other.db"), "", ""))
		assert.Same(t, first, Manager.GetReportStore())

		// Multiple closes should be safe (sync.Once)
		CloseStores()
		CloseStores()
	})

	t.Run("none and empty backends leave stores unset", func(t *testing.T) {
		resetGlobals(t)
		require.NoError(t, InitStores(schema.NoneBackend, "", "", ""))
		assert.Nil(t, Manager.GetReportStore())
		assert.Nil(t, Manager.GetHistoryStore())
	})

	t.Run("history failure closes the cache", func(t *testing.T) {
		resetGlobals(t)
		cachePath := filepath.Join(t.TempDir(), "cache.db")
		err := InitStores(schema.SQLiteBackend, cachePath, "oracle", "")
		assert.ErrorContains(t, err, "failed to initialize run history")
		assert.Nil(t, Manager.GetReportStore())
	})
}

func TestNewManager(t *testing.T) {
	mgr := NewManager(nil, nil)
	assert.Nil(t, mgr.GetReportStore())
	assert.Nil(t, mgr.GetHistoryStore())

	store := &MockCacheStore{}
	mgr = NewManager(store, nil)
	assert.Same(t, store, mgr.GetReportStore())
}

func TestCacheStoreManagerConcurrency(t *testing.T) {
	store, err := NewCacheStore(reportTable, schema.SQLiteBackend, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	mgr := NewManager(store, nil)
	var wg sync.WaitGroup
	for i := range 10 {
		wg.Go(func() {
			s := mgr.GetReportStore()
			key := fmt.Sprintf("key-%d", i)
			assert.NoError(t, s.Set(key, []byte("v"), 1, int64(i)))
			_, _, _, err := s.Get(key)
			assert.NoError(t, err)
		})
	}
	wg.Wait()
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		wantErr bool
	}{
		{"simple", "report_cache", false},
		{"leading underscore", "_cache", false},
		{"digits", "cache2", false},
		{"empty", "", true},
		{"leading digit", "2cache", true},
		{"space", "report cache", true},
		{"injection", "cache; DROP TABLE x", true},
		{"quote", `cache"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.table)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, `"t"`, quoteTableName("t", schema.SQLiteBackend))
	assert.Equal(t, `"t"`, quoteTableName("t", schema.PostgreSQLBackend))
	assert.Equal(t, "`t`", quoteTableName("t", schema.MySQLBackend))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?, ?, ?", placeholders(schema.SQLiteBackend, 3))
	assert.Equal(t, "?", placeholders(schema.MySQLBackend, 1))
	assert.Equal(t, "$1, $2", placeholders(schema.PostgreSQLBackend, 2))
}

func TestGetUpsertQuery(t *testing.T) {
	tests := []struct {
		backend  schema.DatabaseBackend
		contains string
	}{
		{schema.SQLiteBackend, "INSERT OR REPLACE"},
		{schema.MySQLBackend, "ON DUPLICATE KEY UPDATE"},
		{schema.PostgreSQLBackend, "ON CONFLICT (cache_key)"},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			ps := &CacheStoreImpl{tableName: reportTable, backend: tt.backend}
			assert.Contains(t, ps.getUpsertQuery(), tt.contains)
		})
	}
}

func TestGetCreateTableQuery(t *testing.T) {
	assert.Contains(t, getCreateTableQuery("c", schema.SQLiteBackend), "cache_value BLOB")
	assert.Contains(t, getCreateTableQuery("c", schema.MySQLBackend), "LONGBLOB")
	assert.Contains(t, getCreateTableQuery("c", schema.PostgreSQLBackend), "BYTEA")
}

func TestSQLiteCacheStore(t *testing.T) {
	store, err := NewCacheStore(reportTable, schema.SQLiteBackend, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, store.Set("k1", []byte(`{"report":"growth"}`), 1, 1700000000))
		value, version, ts, err := store.Get("k1")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"report":"growth"}`), value)
		assert.Equal(t, 1, version)
		assert.Equal(t, int64(1700000000), ts)
	})

	t.Run("upsert replaces", func(t *testing.T) {
		require.NoError(t, store.Set("k2", []byte("old"), 1, 1))
		require.NoError(t, store.Set("k2", []byte("new"), 2, 2))
		value, version, ts, err := store.Get("k2")
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), value)
		assert.Equal(t, 2, version)
		assert.Equal(t, int64(2), ts)
	})

	t.Run("missing key", func(t *testing.T) {
		_, _, _, err := store.Get("missing")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("status", func(t *testing.T) {
		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, "sqlite", status.Backend)
		assert.True(t, status.Connected)
		assert.Equal(t, 2, status.TotalEntries)
		assert.Equal(t, time.Unix(1700000000, 0), status.LastEntryTime)
		assert.Equal(t, time.Unix(2, 0), status.OldestEntryTime)
		assert.Positive(t, status.TableSizeBytes)
	})
}

func TestNoneCacheStore(t *testing.T) {
	store, err := NewCacheStore("test_table", schema.NoneBackend, "")
	require.NoError(t, err)

	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, store.Set("k", []byte("v"), 1, 1))
	_, _, _, err = store.Get("k")
	assert.Error(t, err)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestNewCacheStoreErrors(t *testing.T) {
	_, err := NewCacheStore("bad name", schema.SQLiteBackend, "")
	assert.ErrorContains(t, err, "invalid table name")

	_, err = NewCacheStore("", schema.SQLiteBackend, "")
	assert.ErrorContains(t, err, "table name cannot be empty")

	_, err = NewCacheStore(reportTable, "oracle", "")
	assert.ErrorContains(t, err, "unsupported backend")

	_, err = NewCacheStore(reportTable, schema.SQLiteBackend, filepath.Join(t.TempDir(), "missing", "dir", "cache.db"))
	assert.Error(t, err)
}

func TestClearCache(t *testing.T) {
	t.Run("sqlite removes the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache.db")
		store, err := NewCacheStore(reportTable, schema.SQLiteBackend, path)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		require.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("sqlite missing file", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.SQLiteBackend, filepath.Join(t.TempDir(), "nope.db"), ""))
	})

	t.Run("sqlite empty path", func(t *testing.T) {
		assert.ErrorContains(t, ClearCache(schema.SQLiteBackend, "", ""), "dbFilePath cannot be empty")
	})

	t.Run("none backend", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	})

	t.Run("unsupported backend", func(t *testing.T) {
		assert.ErrorContains(t, ClearCache("oracle", "", ""), "unsupported backend")
	})
}

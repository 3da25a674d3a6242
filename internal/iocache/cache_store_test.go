package iocache

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/signalvane/signalvane/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteCache(t *testing.T) *CacheStoreImpl {
	t.Helper()
	store, err := NewCacheStore(fetchTable, schema.SQLiteBackend, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*CacheStoreImpl)
}

func TestCacheStore_SetGet(t *testing.T) {
	store := newSQLiteCache(t)

	_, _, _, err := store.Get("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, store.Set("github", []byte(`[{"name":"acme/zk"}]`), 1, 1700000000))
	data, version, ts, err := store.Get("github")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"acme/zk"}]`, string(data))
	assert.Equal(t, 1, version)
	assert.Equal(t, int64(1700000000), ts)

	// Upsert replaces the previous entry
	require.NoError(t, store.Set("github", []byte(`[]`), 2, 1700003600))
	data, version, ts, err = store.Get("github")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
	assert.Equal(t, 2, version)
	assert.Equal(t, int64(1700003600), ts)
}

func TestCacheStore_GetStatus(t *testing.T) {
	store := newSQLiteCache(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Zero(t, status.TotalEntries)

	require.NoError(t, store.Set("a", []byte("1"), 1, 100))
	require.NoError(t, store.Set("b", []byte("2"), 1, 300))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, time.Unix(300, 0), status.LastEntryTime)
	assert.Equal(t, time.Unix(100, 0), status.OldestEntryTime)
	assert.Positive(t, status.TableSizeBytes)
}

func TestCacheStore_NoneBackend(t *testing.T) {
	store, err := NewCacheStore(fetchTable, schema.NoneBackend, "")
	require.NoError(t, err)

	require.NoError(t, store.Set("k", []byte("v"), 1, 1))
	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestNewCacheStore_Errors(t *testing.T) {
	_, err := NewCacheStore("bad-name; DROP", schema.SQLiteBackend, "")
	assert.ErrorContains(t, err, "invalid table name")

	_, err = NewCacheStore(fetchTable, schema.DatabaseBackend("oracle"), "")
	assert.ErrorContains(t, err, "unsupported backend")

	_, err = NewCacheStore(fetchTable, schema.SQLiteBackend, filepath.Join(t.TempDir(), "missing", "dir", "cache.db"))
	assert.Error(t, err)
}

func TestQueries(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		create  string
		upsert  string
	}{
		{schema.SQLiteBackend, `"fetch_cache"`, "INSERT OR REPLACE"},
		{schema.MySQLBackend, "`fetch_cache`", "ON DUPLICATE KEY UPDATE"},
		{schema.PostgreSQLBackend, "BYTEA", "ON CONFLICT (cache_key)"},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			assert.Contains(t, getCreateTableQuery(fetchTable, tt.backend), tt.create)
			store := &CacheStoreImpl{tableName: fetchTable, backend: tt.backend}
			assert.Contains(t, store.getUpsertQuery(), tt.upsert)
		})
	}
}

func TestSQLHelpers(t *testing.T) {
	assert.NoError(t, validateTableName("signalvane_refresh_runs"))
	assert.Error(t, validateTableName(""))
	assert.Error(t, validateTableName("1table"))

	assert.Equal(t, "`runs`", quoteTableName("runs", schema.MySQLBackend))
	assert.Equal(t, `"runs"`, quoteTableName("runs", schema.PostgreSQLBackend))

	assert.Equal(t, "$3", placeholder(schema.PostgreSQLBackend, 3))
	assert.Equal(t, "?", placeholder(schema.MySQLBackend, 3))

	ts := time.Date(2026, 3, 1, 9, 0, 0, 5, time.FixedZone("X", 3600))
	formatted, ok := formatTime(ts, schema.SQLiteBackend).(string)
	require.True(t, ok)
	parsed, err := parseSQLiteTime(formatted)
	require.NoError(t, err)
	assert.True(t, ts.Equal(parsed))
	assert.IsType(t, time.Time{}, formatTime(ts, schema.PostgreSQLBackend))

	_, err = driverFor(schema.NoneBackend)
	assert.Error(t, err)
}

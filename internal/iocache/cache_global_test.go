package iocache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/signalvane/signalvane/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetGlobals(t *testing.T) {
	t.Helper()
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	Manager = &CacheStoreManager{}
}

func TestInitStores(t *testing.T) {
	t.Run("sqlite cache and archive", func(t *testing.T) {
		resetGlobals(t)
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")
		archivePath := filepath.Join(dir, "archive.db")

		require.NoError(t, InitStores(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, archivePath))
		assert.NotNil(t, Manager.GetFetchStore())
		assert.NotNil(t, Manager.GetArchiveStore())
		CloseCaching()

		assert.FileExists(t, cachePath)
		assert.FileExists(t, archivePath)
	})

	t.Run("idempotent setup", func(t *testing.T) {
		resetGlobals(t)
		path := filepath.Join(t.TempDir(), "cache.db")

		for range 3 {
			assert.NoError(t, InitStores(schema.SQLiteBackend, path, "", ""))
		}
		assert.Nil(t, Manager.GetArchiveStore(), "archive stays disabled without a backend")

		// Multiple closes should be safe (sync.Once)
		CloseCaching()
		CloseCaching()
	})

	t.Run("none backend", func(t *testing.T) {
		resetGlobals(t)
		require.NoError(t, InitStores(schema.NoneBackend, "", schema.NoneBackend, ""))
		assert.NotNil(t, Manager.GetFetchStore())
		assert.NotNil(t, Manager.GetArchiveStore())
		CloseCaching()
	})

	t.Run("archive failure closes the cache", func(t *testing.T) {
		resetGlobals(t)
		err := InitStores(schema.NoneBackend, "", schema.DatabaseBackend("oracle"), "")
		assert.ErrorContains(t, err, "failed to initialize archive store")
		assert.Nil(t, Manager.GetFetchStore())
	})
}

func TestClearCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	require.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
	assert.NoFileExists(t, path)

	// Already gone is fine
	assert.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
	assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	assert.Error(t, ClearCache(schema.DatabaseBackend("oracle"), "", ""))
}

func TestClearArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	store, err := NewArchiveStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearArchive(schema.SQLiteBackend, path, ""))
	assert.NoFileExists(t, path)
}

package iocache

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/signalvane/signalvane/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateArchive_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	var out bytes.Buffer

	require.NoError(t, MigrateArchive(&out, schema.SQLiteBackend, path, -1))
	assert.Contains(t, out.String(), "Successfully migrated from version 0 to version 2")

	out.Reset()
	require.NoError(t, MigrateArchive(&out, schema.SQLiteBackend, path, -1))
	assert.Contains(t, out.String(), "already at the latest version")

	// The migrated schema is the one the store writes to
	store, err := NewArchiveStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	runID, err := store.BeginRun(time.Now(), map[string]any{"query": "solana"})
	require.NoError(t, err)
	require.NoError(t, store.RecordNarrativeScore(runID, "AI Agents", schema.NarrativeScore{ObservedAt: time.Now(), NoveltyScore: 8}))
	require.NoError(t, store.Close())

	out.Reset()
	require.NoError(t, MigrateArchive(&out, schema.SQLiteBackend, path, 1))
	assert.Contains(t, out.String(), "from version 2 to version 1")

	out.Reset()
	require.NoError(t, MigrateArchive(&out, schema.SQLiteBackend, path, 0))
	assert.Contains(t, out.String(), "rolled back from version 1 to version 0")

	// Rolling back an empty database is harmless
	require.NoError(t, MigrateArchive(&out, schema.SQLiteBackend, path, 0))
}

func TestMigrateArchive_Errors(t *testing.T) {
	var out bytes.Buffer
	assert.ErrorContains(t, MigrateArchive(&out, schema.NoneBackend, "", -1), "not supported")
	assert.Error(t, MigrateArchive(&out, schema.DatabaseBackend("oracle"), "", -1))
}

func TestMigrationsEmbedded(t *testing.T) {
	for _, backend := range []string{"sqlite", "mysql", "postgresql"} {
		entries, err := migrationsFS.ReadDir("migrations/" + backend)
		require.NoError(t, err, backend)
		assert.Len(t, entries, 4, backend)
	}
}

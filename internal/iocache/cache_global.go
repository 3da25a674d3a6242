package iocache

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/schema"
)

// fetchTable is the name of the table for upstream fetch caching.
const fetchTable = "fetch_cache"

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetDBFilePath returns the path to the SQLite DB file for fetch caching.
func GetDBFilePath() string {
	return contract.GetCacheDBFilePath()
}

// GetArchiveDBFilePath returns the path to the SQLite DB file for the archive.
func GetArchiveDBFilePath() string {
	return contract.GetArchiveDBFilePath()
}

// InitStores initializes the global manager with separate fetch cache and archive stores.
// An empty cacheBackend disables fetch caching and an empty archiveBackend disables archiving.
func InitStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, archiveBackend schema.DatabaseBackend, archiveConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		var fetchStore contract.CacheStore
		if cacheBackend != "" {
			store, err := NewCacheStore(fetchTable, cacheBackend, cacheConnStr)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize fetch caching: %w", err)
				return
			}
			fetchStore = store
		}

		var archiveStore contract.ArchiveStore
		if archiveBackend != "" {
			store, err := NewArchiveStore(archiveBackend, archiveConnStr)
			if err != nil {
				if fetchStore != nil {
					_ = fetchStore.Close()
				}
				initErr = fmt.Errorf("failed to initialize archive store: %w", err)
				return
			}
			archiveStore = store
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.fetch = fetchStore
		Manager.archive = archiveStore
	})

	return initErr
}

// CloseCaching should be called on application shutdown.
func CloseCaching() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.fetch != nil {
			_ = Manager.fetch.Close()
		}
		if Manager.archive != nil {
			_ = Manager.archive.Close()
		}
	})
}

// ClearCache clears the fetch cache for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the table.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr, fetchTable)
}

// ClearArchive clears the archived runs for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the archive tables.
func ClearArchive(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr, refreshRunsTable, narrativeScoresTable)
}

func clearBackend(backend schema.DatabaseBackend, dbFilePath, connStr string, tables ...string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return errors.New("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		for _, table := range tables {
			if err := clearSQLTable(backend, connStr, table); err != nil {
				return err
			}
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(backend schema.DatabaseBackend, connStr, tableName string) error {
	driverName, err := driverFor(backend)
	if err != nil {
		return err
	}
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", backend, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", backend, err)
	}

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(tableName, backend))
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}
	return nil
}

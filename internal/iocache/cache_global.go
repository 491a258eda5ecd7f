package iocache

import (
	"fmt"
	"os"
	"sync"

	"github.com/benmcmorran/anamericanday/internal/contract"
	"github.com/benmcmorran/anamericanday/schema"
)

// extractionTable is the name of the table for extraction caching.
const extractionTable = "anamericanday_extraction_cache"

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	return contract.GetCacheDBFilePath()
}

// GetRunDBFilePath returns the path to the SQLite DB file for run storage.
func GetRunDBFilePath() string {
	return contract.GetRunDBFilePath()
}

// InitStores initializes the global manager with separate cache and run stores.
// An empty backend leaves the corresponding store unset.
func InitStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, runBackend schema.DatabaseBackend, runConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		extraction, runs, err := openStores(cacheBackend, cacheConnStr, runBackend, runConnStr)
		if err != nil {
			initErr = err
			return
		}
		Manager.Lock()
		defer Manager.Unlock()
		Manager.extraction = extraction
		Manager.runs = runs
	})

	return initErr
}

// NewManager builds a standalone manager, used where the global one is not wanted.
func NewManager(cacheBackend schema.DatabaseBackend, cacheConnStr string, runBackend schema.DatabaseBackend, runConnStr string) (*CacheStoreManager, error) {
	extraction, runs, err := openStores(cacheBackend, cacheConnStr, runBackend, runConnStr)
	if err != nil {
		return nil, err
	}
	return &CacheStoreManager{extraction: extraction, runs: runs}, nil
}

// Close closes both stores of the manager.
func (mgr *CacheStoreManager) Close() {
	mgr.Lock()
	defer mgr.Unlock()
	if mgr.extraction != nil {
		_ = mgr.extraction.Close()
	}
	if mgr.runs != nil {
		_ = mgr.runs.Close()
	}
}

func openStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, runBackend schema.DatabaseBackend, runConnStr string) (contract.CacheStore, contract.RunStore, error) {
	var extraction contract.CacheStore
	var err error
	if cacheBackend != "" {
		extraction, err = NewCacheStore(extractionTable, cacheBackend, cacheConnStr)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize extraction caching: %w", err)
		}
	}

	var runs contract.RunStore
	if runBackend != "" {
		runs, err = NewRunStore(runBackend, runConnStr)
		if err != nil {
			if extraction != nil {
				_ = extraction.Close()
			}
			return nil, nil, fmt.Errorf("failed to initialize run store: %w", err)
		}
	}
	return extraction, runs, nil
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(Manager.Close)
}

// ClearCache clears the cache for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the table.
// For NoneBackend, it does nothing.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr, extractionTable)
}

// ClearRuns clears the run data for the specified backend.
// For SQL backends (MySQL/PostgreSQL), it drops the run tables and the
// migration bookkeeping so the next open recreates them.
func ClearRuns(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr, labelAnchorsTable, runsTable, "schema_migrations")
}

func clearBackend(backend schema.DatabaseBackend, dbFilePath, connStr string, tables ...string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
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
	db, err := openDB(backend, connStr, "")
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(tableName, backend))
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}
	return nil
}

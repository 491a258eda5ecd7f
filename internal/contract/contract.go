// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/benmcmorran/anamericanday/schema"
)

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetExtractionStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking extraction runs and their label anchors.
type RunStore interface {
	// BeginRun creates a new extraction run and returns its unique ID
	BeginRun(startTime time.Time, params schema.RunParams) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, summary schema.ExtractionSummary) error

	// RecordLabels stores the label anchors computed during a run
	RecordLabels(runID int64, result *schema.LabelResult) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns returns every stored run ordered by ID
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllLabels returns every stored label anchor ordered by run
	GetAllLabels() ([]schema.LabelRecord, error)

	// Close closes the underlying connection
	Close() error
}

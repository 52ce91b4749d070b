// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/sitpulse/schema"
)

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetReportStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking report runs and the points they produced.
type HistoryStore interface {
	// BeginRun creates a new run row and returns its unique ID
	BeginRun(startTime time.Time, params schema.RunParams, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalPoints int) error

	// RecordSeries stores every point of the series under the run
	RecordSeries(runID int64, series schema.Series) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every recorded run ordered by ID
	GetAllRuns() ([]schema.ReportRunRecord, error)

	// GetAllPoints returns every recorded point ordered by run, series and period
	GetAllPoints() ([]schema.ReportPointRecord, error)

	// Close closes the underlying connection
	Close() error
}

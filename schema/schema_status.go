package schema

import "time"

// CacheStatus represents the status of the extraction cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// RunStatus represents the status of the run store.
type RunStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalRows     int64            `json:"total_rows"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// RunParams describes an extraction run when it begins.
type RunParams struct {
	Timescale     Timescale
	SourcePath    string
	Reference     string
	MissingPolicy MissingPolicy
}

// RunRecord represents a row from the extraction runs table.
type RunRecord struct {
	RunID           int64
	Timescale       string
	SourcePath      string
	Reference       string
	MissingPolicy   string
	StartTime       time.Time
	EndTime         *time.Time
	RunDurationMs   *int32
	TotalRows       int32
	DemographicsCnt int32
	ActivitiesCnt   int32
}

// LabelRecord represents a row from the label anchors table.
type LabelRecord struct {
	RunID       int64
	Demographic string
	Activity    string
	StackIndex  int32
	Found       bool
	AnchorIndex *int32
	AnchorValue *float64
}

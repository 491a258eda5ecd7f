package iocache

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/benmcmorran/anamericanday/internal/contract"
	"github.com/benmcmorran/anamericanday/schema"
)

// Table names for run tracking. Both are created by the embedded migrations.
const (
	runsTable         = "anamericanday_runs"
	labelAnchorsTable = "anamericanday_label_anchors"
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore opens the run store and migrates it to the latest version.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetRunDBFilePath())
	if err != nil {
		return nil, err
	}

	if _, err := applyMigrations(db, backend, -1); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare run tables: %w", err)
	}

	return &RunStoreImpl{db: db, backend: backend}, nil
}

// disabled reports whether the store is a no-op.
func (rs *RunStoreImpl) disabled() bool {
	return rs.backend == schema.NoneBackend || rs.db == nil
}

// insertQuery builds an INSERT statement with backend placeholders.
func (rs *RunStoreImpl) insertQuery(table string, columns ...string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteTableName(table, rs.backend),
		strings.Join(columns, ", "),
		strings.Join(placeholders(rs.backend, len(columns)), ", "))
}

// BeginRun creates a new extraction run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, params schema.RunParams) (int64, error) {
	if rs.disabled() {
		return 0, nil
	}

	query := rs.insertQuery(runsTable, "timescale", "source_path", "reference", "missing_policy", "start_time")
	args := []any{
		string(params.Timescale), params.SourcePath, params.Reference, string(params.MissingPolicy),
		formatTime(startTime, rs.backend),
	}

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		if err := rs.db.QueryRow(query+" RETURNING run_id", args...).Scan(&runID); err != nil {
			return 0, fmt.Errorf("failed to insert run: %w", err)
		}
	default: // SQLite and MySQL
		result, err := rs.db.Exec(query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert run: %w", err)
		}
		if runID, err = result.LastInsertId(); err != nil {
			return 0, fmt.Errorf("failed to read run id: %w", err)
		}
	}
	return runID, nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, summary schema.ExtractionSummary) error {
	if rs.disabled() {
		return nil
	}

	table := quoteTableName(runsTable, rs.backend)
	ph := placeholders(rs.backend, 5)

	var rawStart any
	selectQuery := fmt.Sprintf("SELECT start_time FROM %s WHERE run_id = %s", table, ph[0])
	if err := rs.db.QueryRow(selectQuery, runID).Scan(&rawStart); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := scanTime(rawStart)
	if err != nil {
		return fmt.Errorf("failed to parse start_time: %w", err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()
	updateQuery := fmt.Sprintf(
		"UPDATE %s SET end_time = %s, run_duration_ms = %s, total_rows = %s, demographics_count = %s, activities_count = %s WHERE run_id = %s",
		table, ph[0], ph[1], ph[2], ph[3], ph[4], placeholders(rs.backend, 6)[5])
	_, err = rs.db.Exec(updateQuery,
		formatTime(endTime, rs.backend), durationMs, summary.Rows,
		len(summary.Demographics), len(summary.Activities), runID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// RecordLabels stores the label anchors computed during a run.
func (rs *RunStoreImpl) RecordLabels(runID int64, result *schema.LabelResult) error {
	if rs.disabled() || result == nil {
		return nil
	}

	query := rs.insertQuery(labelAnchorsTable,
		"run_id", "demographic", "activity", "stack_index", "found", "anchor_index", "anchor_value")

	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin label transaction: %w", err)
	}
	for _, anchor := range result.Anchors {
		var index, value any
		if anchor.Found {
			index, value = anchor.Index, anchor.Value
		}
		if _, err := tx.Exec(query, runID, result.Demographic, anchor.Activity, anchor.StackIndex, anchor.Found, index, value); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert label anchor %s: %w", anchor.Activity, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit label anchors: %w", err)
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if rs.disabled() {
		return status, nil
	}

	table := quoteTableName(runsTable, rs.backend)
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var rawLast, rawOldest any
		lastQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", table)
		if err := rs.db.QueryRow(lastQuery).Scan(&status.LastRunID, &rawLast); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", table)
		if err := rs.db.QueryRow(oldestQuery).Scan(&rawOldest); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}

		var err error
		if status.LastRunTime, err = scanTime(rawLast); err != nil {
			return status, fmt.Errorf("failed to parse last run time: %w", err)
		}
		if status.OldestRunTime, err = scanTime(rawOldest); err != nil {
			return status, fmt.Errorf("failed to parse oldest run time: %w", err)
		}

		rowsQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_rows), 0) FROM %s", table)
		if err := rs.db.QueryRow(rowsQuery).Scan(&status.TotalRows); err != nil {
			return status, fmt.Errorf("failed to get total rows: %w", err)
		}
	}

	for _, name := range []string{runsTable, labelAnchorsTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(name, rs.backend))
		if err := rs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", name, err)
		}
		status.TableSizes[name] = count
	}
	return status, nil
}

// GetAllRuns retrieves all runs from the store.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, timescale, source_path, reference, missing_policy, start_time, end_time,
		run_duration_ms, total_rows, demographics_count, activities_count
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var rawStart, rawEnd any
		var duration sql.NullInt32
		if err := rows.Scan(&record.RunID, &record.Timescale, &record.SourcePath, &record.Reference,
			&record.MissingPolicy, &rawStart, &rawEnd, &duration,
			&record.TotalRows, &record.DemographicsCnt, &record.ActivitiesCnt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		if record.StartTime, err = scanTime(rawStart); err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}
		if rawEnd != nil {
			endTime, err := scanTime(rawEnd)
			if err != nil {
				return nil, fmt.Errorf("failed to parse end_time: %w", err)
			}
			record.EndTime = &endTime
		}
		if duration.Valid {
			record.RunDurationMs = &duration.Int32
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllLabels retrieves all label anchors from the store.
func (rs *RunStoreImpl) GetAllLabels() ([]schema.LabelRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, demographic, activity, stack_index, found, anchor_index, anchor_value
		FROM %s ORDER BY run_id, demographic, stack_index`, quoteTableName(labelAnchorsTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query label anchors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.LabelRecord
	for rows.Next() {
		var record schema.LabelRecord
		var index sql.NullInt32
		var value sql.NullFloat64
		if err := rows.Scan(&record.RunID, &record.Demographic, &record.Activity, &record.StackIndex,
			&record.Found, &index, &value); err != nil {
			return nil, fmt.Errorf("failed to scan label anchor: %w", err)
		}
		if index.Valid {
			record.AnchorIndex = &index.Int32
		}
		if value.Valid {
			record.AnchorValue = &value.Float64
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating label anchors: %w", err)
	}
	return results, nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

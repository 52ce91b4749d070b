package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/huangsam/sitpulse/internal/contract"
	"github.com/huangsam/sitpulse/internal/parquet"
	"github.com/huangsam/sitpulse/schema"
)

// Table names for run history.
const (
	reportRunsTable   = "sitpulse_report_runs"
	reportPointsTable = "sitpulse_report_points"
)

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDatabase(backend, connStr, contract.GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// createHistoryTables creates the run history tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{reportRunsTable, getCreateReportRunsQuery(backend)},
		{reportPointsTable, getCreateReportPointsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateReportRunsQuery returns the CREATE TABLE query for sitpulse_report_runs.
func getCreateReportRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(reportRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				report VARCHAR(32) NOT NULL,
				country VARCHAR(64) NOT NULL,
				window_start DATETIME(6) NOT NULL,
				window_end DATETIME(6) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_points INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				report TEXT NOT NULL,
				country TEXT NOT NULL,
				window_start TIMESTAMPTZ NOT NULL,
				window_end TIMESTAMPTZ NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_points INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				report TEXT NOT NULL,
				country TEXT NOT NULL,
				window_start TEXT NOT NULL,
				window_end TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_points INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateReportPointsQuery returns the CREATE TABLE query for sitpulse_report_points.
func getCreateReportPointsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(reportPointsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				series_name VARCHAR(64) NOT NULL,
				period DATETIME(6) NOT NULL,
				value DOUBLE,
				raw VARCHAR(32) NOT NULL,
				PRIMARY KEY (run_id, series_name, period)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				series_name TEXT NOT NULL,
				period TIMESTAMPTZ NOT NULL,
				value DOUBLE PRECISION,
				raw TEXT NOT NULL,
				PRIMARY KEY (run_id, series_name, period)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				series_name TEXT NOT NULL,
				period TEXT NOT NULL,
				value REAL,
				raw TEXT NOT NULL,
				PRIMARY KEY (run_id, series_name, period)
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new run row and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(startTime time.Time, params schema.RunParams, configParams map[string]any) (int64, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(reportRunsTable, hs.backend)
	columns := "report, country, window_start, window_end, start_time, config_params"
	args := []any{
		string(params.Report),
		params.Country,
		formatTime(params.WindowStart, hs.backend),
		formatTime(params.WindowEnd, hs.backend),
		formatTime(startTime, hs.backend),
		string(configJSON),
	}

	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING run_id`, quotedTableName, columns, placeholders(hs.backend, len(args)))
		err = hs.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, quotedTableName, columns, placeholders(hs.backend, len(args)))
		var result sql.Result
		result, err = hs.db.Exec(query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert report run: %w", err)
		}
		runID, err = result.LastInsertId()
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert report run: %w", err)
	}
	return runID, nil
}

// EndRun updates the run with completion data.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, totalPoints int) error {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(reportRunsTable, hs.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholders(hs.backend, 1))

	startTime, err := scanTime(hs.db.QueryRow(query, runID), hs.backend)
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	var updateQuery string
	switch hs.backend {
	case schema.PostgreSQLBackend:
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, total_points = $3 WHERE run_id = $4`, quotedTableName)
	default: // SQLite and MySQL
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_points = ? WHERE run_id = ?`, quotedTableName)
	}

	if _, err := hs.db.Exec(updateQuery, formatTime(endTime, hs.backend), durationMs, totalPoints, runID); err != nil {
		return fmt.Errorf("failed to update report run: %w", err)
	}
	return nil
}

// RecordSeries stores every point of the series under the run in one transaction.
// Non-finite values are stored as NULL with their text in raw.
func (hs *HistoryStoreImpl) RecordSeries(runID int64, series schema.Series) error {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	tx, err := hs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`INSERT INTO %s (run_id, series_name, period, value, raw) VALUES (%s)`,
		quoteTableName(reportPointsTable, hs.backend), placeholders(hs.backend, 5))
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare point insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, col := range series.Columns {
		for i, v := range col.Values {
			var value any
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				value = v
			}
			period := formatTime(series.Index[i], hs.backend)
			if _, err := stmt.Exec(runID, col.Name, period, value, parquet.FormatRaw(v)); err != nil {
				return fmt.Errorf("failed to insert point %s@%s: %w", col.Name, series.Dates[i], err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit points: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if hs.backend == schema.NoneBackend || hs.db == nil {
		return status, nil
	}

	runsTable := quoteTableName(reportRunsTable, hs.backend)

	runsQuery := fmt.Sprintf("SELECT COUNT(*), COALESCE(SUM(total_points), 0) FROM %s", runsTable)
	if err := hs.db.QueryRow(runsQuery).Scan(&status.TotalRuns, &status.TotalPoints); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		lastRunQuery := fmt.Sprintf("SELECT run_id FROM %s ORDER BY run_id DESC LIMIT 1", runsTable)
		if err := hs.db.QueryRow(lastRunQuery).Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}

		lastTimeQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", runsTable)
		lastRunTime, err := scanTime(hs.db.QueryRow(lastTimeQuery), hs.backend)
		if err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		status.LastRunTime = lastRunTime

		oldestRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runsTable)
		oldestRunTime, err := scanTime(hs.db.QueryRow(oldestRunQuery), hs.backend)
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldestRunTime
	}

	for _, table := range []string{reportRunsTable, reportPointsTable} {
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))
		var count int64
		if err := hs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves every report run ordered by ID.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.ReportRunRecord, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, report, country, window_start, window_end, start_time, end_time,
		run_duration_ms, total_points, config_params FROM %s ORDER BY run_id`, quoteTableName(reportRunsTable, hs.backend))

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query report runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ReportRunRecord
	for rows.Next() {
		var record schema.ReportRunRecord

		switch hs.backend {
		case schema.SQLiteBackend:
			var windowStart, windowEnd, startTime string
			var endTime *string
			if err := rows.Scan(&record.RunID, &record.Report, &record.Country, &windowStart, &windowEnd,
				&startTime, &endTime, &record.RunDurationMs, &record.TotalPoints, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan report run: %w", err)
			}
			if record.WindowStart, err = parseTime(windowStart); err != nil {
				return nil, fmt.Errorf("failed to parse window_start: %w", err)
			}
			if record.WindowEnd, err = parseTime(windowEnd); err != nil {
				return nil, fmt.Errorf("failed to parse window_end: %w", err)
			}
			if record.StartTime, err = parseTime(startTime); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endTime != nil {
				end, err := parseTime(*endTime)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &end
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.Report, &record.Country, &record.WindowStart, &record.WindowEnd,
				&record.StartTime, &record.EndTime, &record.RunDurationMs, &record.TotalPoints, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan report run: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report runs: %w", err)
	}
	return results, nil
}

// GetAllPoints retrieves every recorded point ordered by run, series and period.
func (hs *HistoryStoreImpl) GetAllPoints() ([]schema.ReportPointRecord, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, series_name, period, value, raw FROM %s ORDER BY run_id, series_name, period`,
		quoteTableName(reportPointsTable, hs.backend))

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query report points: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ReportPointRecord
	for rows.Next() {
		var record schema.ReportPointRecord
		var value sql.NullFloat64

		switch hs.backend {
		case schema.SQLiteBackend:
			var period string
			if err := rows.Scan(&record.RunID, &record.SeriesName, &period, &value, &record.Raw); err != nil {
				return nil, fmt.Errorf("failed to scan report point: %w", err)
			}
			if record.Period, err = parseTime(period); err != nil {
				return nil, fmt.Errorf("failed to parse period: %w", err)
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.SeriesName, &record.Period, &value, &record.Raw); err != nil {
				return nil, fmt.Errorf("failed to scan report point: %w", err)
			}
		}

		if value.Valid {
			v := value.Float64
			record.Value = &v
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report points: %w", err)
	}
	return results, nil
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t
	}
}

// parseTime reads a time stored by formatTime for SQLite.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// scanTime scans a single time column, which SQLite stores as text.
func scanTime(row *sql.Row, backend schema.DatabaseBackend) (time.Time, error) {
	if backend == schema.SQLiteBackend {
		var s string
		if err := row.Scan(&s); err != nil {
			return time.Time{}, err
		}
		return parseTime(s)
	}
	var t time.Time
	err := row.Scan(&t)
	return t, err
}

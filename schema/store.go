package schema

import "time"

// RunParams describes what a report run computed.
type RunParams struct {
	Report      ReportKind
	Country     string
	WindowStart time.Time
	WindowEnd   time.Time
}

// ReportRunRecord represents a row from the sitpulse_report_runs table.
type ReportRunRecord struct {
	RunID         int64
	Report        string
	Country       string
	WindowStart   time.Time
	WindowEnd     time.Time
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalPoints   int32
	ConfigParams  *string
}

// ReportPointRecord represents a row from the sitpulse_report_points table.
// Value is nil for NaN and infinities; Raw always holds the formatted value.
type ReportPointRecord struct {
	RunID      int64
	SeriesName string
	Period     time.Time
	Value      *float64
	Raw        string
}

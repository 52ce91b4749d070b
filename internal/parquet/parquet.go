// Package parquet provides row types and helpers for reading input tables from and
// exporting report data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/sitpulse/schema"
	"github.com/parquet-go/parquet-go"
)

// MembershipRow maps to the num-active table.
type MembershipRow struct {
	Period         time.Time `parquet:"period,snappy"`
	Country        string    `parquet:"country,snappy"`
	MembershipType string    `parquet:"membership_type,snappy"`
	NumActive      int64     `parquet:"num_active,snappy"`
}

// ApplicationRow maps to the applications table.
type ApplicationRow struct {
	SitterID        int64      `parquet:"suser_id,snappy"`
	AssignmentID    int64      `parquet:"assignment_id,snappy"`
	DateCreated     *time.Time `parquet:"date_created,optional,snappy"`
	LastModified    *time.Time `parquet:"last_modified,optional,snappy"`
	OwnerConfirmed  *int64     `parquet:"oconfirmed,optional,snappy"`
	SitterConfirmed *int64     `parquet:"sconfirmed,optional,snappy"`
	RequestID       *int64     `parquet:"request_id,optional,snappy"`
}

// SitterRow maps to the sitters table.
type SitterRow struct {
	UserID         int64      `parquet:"user_id,snappy"`
	FirstStartDate *time.Time `parquet:"fst_start_date,optional,snappy"`
	StartDate      *time.Time `parquet:"start_date,optional,snappy"`
	ExpiresDate    *time.Time `parquet:"expires_date,optional,snappy"`
	BillingCountry string     `parquet:"billing_country,snappy"`
}

// AssignmentRow maps to the assignments table.
type AssignmentRow struct {
	ID          int64      `parquet:"aid,snappy"`
	OwnerID     int64      `parquet:"ouser_id,snappy"`
	SitterID    *int64     `parquet:"sid,optional,snappy"`
	CreatedDate *time.Time `parquet:"created_date,optional,snappy"`
	StartDate   *time.Time `parquet:"start_date,optional,snappy"`
	EndDate     *time.Time `parquet:"end_date,optional,snappy"`
}

// OwnerRow maps to the owners table.
type OwnerRow struct {
	UserID         int64      `parquet:"user_id,snappy"`
	JoinedDate     *time.Time `parquet:"joined_date,optional,snappy"`
	FirstStartDate *time.Time `parquet:"fst_start_date,optional,snappy"`
	StartDate      *time.Time `parquet:"start_date,optional,snappy"`
	ExpiresDate    *time.Time `parquet:"expires_date,optional,snappy"`
	PublishedDate  *time.Time `parquet:"published_date,optional,snappy"`
	BillingCountry string     `parquet:"billing_country,snappy"`
}

// VerificationRow maps to the standard-verif table.
type VerificationRow struct {
	UserID        int64      `parquet:"user_id,snappy"`
	StandardVerif *time.Time `parquet:"standard_verif,optional,snappy"`
}

// SeriesPoint is one value of a report series in long format.
// Value may be NaN or infinite; Raw keeps the formatted value for readers that drop them.
type SeriesPoint struct {
	Report     string    `parquet:"report,snappy"`
	Country    string    `parquet:"country,snappy"`
	SeriesName string    `parquet:"series_name,snappy"`
	Period     time.Time `parquet:"period,snappy"`
	DateLabel  string    `parquet:"date_label,snappy"`
	Value      float64   `parquet:"value,snappy"`
	Raw        string    `parquet:"raw,snappy"`
}

// ReportRun maps to the sitpulse_report_runs database table.
type ReportRun struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	Report      string    `parquet:"report,snappy"`
	Country     string    `parquet:"country,snappy"`
	WindowStart time.Time `parquet:"window_start,snappy"`
	WindowEnd   time.Time `parquet:"window_end,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	TotalPoints int32 `parquet:"total_points,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// ReportPoint maps to the sitpulse_report_points database table.
type ReportPoint struct {
	RunID      int64     `parquet:"run_id,snappy"`
	SeriesName string    `parquet:"series_name,snappy"`
	Period     time.Time `parquet:"period,snappy"`
	Value      *float64  `parquet:"value,optional,snappy"`
	Raw        string    `parquet:"raw,snappy"`
}

// ReadRows reads every row of a Parquet file into T.
// Columns are matched by name; columns T does not declare are ignored.
func ReadRows[T any](path string) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	total := 0
	for total < len(rows) {
		n, err := reader.Read(rows[total:])
		total += n
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read parquet rows from %s: %w", path, err)
		}
		if n == 0 {
			break
		}
	}
	return rows[:total], nil
}

// WriteRows writes a slice of rows to a Parquet file, replacing it if present.
func WriteRows[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return WriteTo(file, data)
}

// WriteTo writes rows to w as a complete Parquet file.
func WriteTo[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertSeries flattens a series into long-format points.
func ConvertSeries(s schema.Series) []SeriesPoint {
	out := make([]SeriesPoint, 0, len(s.Columns)*s.Len())
	for _, col := range s.Columns {
		for i, v := range col.Values {
			out = append(out, SeriesPoint{
				Report:     string(s.Report),
				Country:    s.Country,
				SeriesName: col.Name,
				Period:     s.Index[i],
				DateLabel:  s.Dates[i],
				Value:      v,
				Raw:        FormatRaw(v),
			})
		}
	}
	return out
}

// ConvertReportRunRecords converts database records to Parquet rows.
func ConvertReportRunRecords(records []schema.ReportRunRecord) []ReportRun {
	out := make([]ReportRun, len(records))
	for i, r := range records {
		out[i] = ReportRun{
			RunID:         r.RunID,
			Report:        r.Report,
			Country:       r.Country,
			WindowStart:   r.WindowStart,
			WindowEnd:     r.WindowEnd,
			StartTime:     r.StartTime,
			EndTime:       r.EndTime,
			RunDurationMs: r.RunDurationMs,
			TotalPoints:   r.TotalPoints,
			ConfigParams:  r.ConfigParams,
		}
	}
	return out
}

// ConvertReportPointRecords converts database records to Parquet rows.
func ConvertReportPointRecords(records []schema.ReportPointRecord) []ReportPoint {
	out := make([]ReportPoint, len(records))
	for i, r := range records {
		out[i] = ReportPoint{
			RunID:      r.RunID,
			SeriesName: r.SeriesName,
			Period:     r.Period,
			Value:      r.Value,
			Raw:        r.Raw,
		}
	}
	return out
}

// FormatRaw renders a value losslessly, including NaN and the infinities.
func FormatRaw(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

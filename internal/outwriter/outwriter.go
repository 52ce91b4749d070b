// Package outwriter has output and writer logic.
package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/sitpulse/internal/contract"
	"github.com/huangsam/sitpulse/internal/parquet"
	"github.com/huangsam/sitpulse/schema"
)

// PrintSeries prints a report series using the configured output format.
func PrintSeries(series schema.Series, summary *schema.GrowthSummary, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteSeriesJSON(w, series, summary)
		}, "Wrote JSON report")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteSeriesCSV(w, series, cfg.Precision)
		}, "Wrote CSV report")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("--output-file is required for parquet output")
		}
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteTo(w, parquet.ConvertSeries(series))
		}, "Wrote parquet report")
	default:
		if err := WriteSeriesTable(os.Stdout, series, summary, cfg); err != nil {
			return err
		}
		fmt.Printf("Report computed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend)
		return nil
	}
}

// WriteSeriesJSON writes the series and the optional growth summary as indented JSON.
func WriteSeriesJSON(w io.Writer, series schema.Series, summary *schema.GrowthSummary) error {
	return writeJSON(w, schema.ReportDocument{Series: series, Latest: summary})
}

// WriteSeriesCSV writes one row per date with a column per series value.
func WriteSeriesCSV(w io.Writer, series schema.Series, precision int) error {
	header := append([]string{"date"}, series.Names()...)
	fmtFloat := createFormatter(precision)
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for i, date := range series.Dates {
			row := make([]string, 0, len(series.Columns)+1)
			row = append(row, date)
			for _, c := range series.Columns {
				row = append(row, fmtFloat(c.Values[i]))
			}
			if err := csvWriter.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

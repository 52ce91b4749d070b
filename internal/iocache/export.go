package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/sitpulse/internal/contract"
	"github.com/huangsam/sitpulse/internal/parquet"
)

// ExecuteHistoryExport writes the recorded runs and points of the global history store
// to two Parquet files next to outputFile.
func ExecuteHistoryExport(outputFile string) error {
	return ExportHistory(Manager.GetHistoryStore(), outputFile)
}

// ExportHistory writes the runs and points of store to outputFile.report_runs.parquet
// and outputFile.report_points.parquet.
func ExportHistory(store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run history is disabled. Set --history-backend to enable it")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total report runs: %d\n", status.TotalRuns)
	fmt.Printf("Total report points: %d\n", status.TableSizes[reportPointsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve report runs: %w", err)
	}
	points, err := store.GetAllPoints()
	if err != nil {
		return fmt.Errorf("failed to retrieve report points: %w", err)
	}

	parquetRuns := parquet.ConvertReportRunRecords(runs)
	runsFile := outputFile + ".report_runs.parquet"
	if err := parquet.WriteRows(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write report runs: %w", err)
	}
	fmt.Printf("Exported %d report runs to: %s\n", len(parquetRuns), runsFile)

	parquetPoints := parquet.ConvertReportPointRecords(points)
	pointsFile := outputFile + ".report_points.parquet"
	if err := parquet.WriteRows(parquetPoints, pointsFile); err != nil {
		return fmt.Errorf("failed to write report points: %w", err)
	}
	fmt.Printf("Exported %d report points to: %s\n", len(parquetPoints), pointsFile)

	return nil
}

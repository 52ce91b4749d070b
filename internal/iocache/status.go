package iocache

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/huangsam/sitpulse/internal/contract"
	"github.com/huangsam/sitpulse/schema"
)

const statusTimeFormat = "2006-01-02 15:04:05"

func printField(w io.Writer, label string, value any) {
	_, _ = fmt.Fprintf(w, "%s %v\n", contract.LabelColor.Sprint(label+":"), value)
}

// PrintCacheStatus prints cache status information.
func PrintCacheStatus(w io.Writer, status schema.CacheStatus) {
	printField(w, "Cache Backend", status.Backend)
	printField(w, "Connected", status.Connected)
	if !status.Connected {
		return
	}
	printField(w, "Total Entries", status.TotalEntries)
	if status.TotalEntries > 0 {
		printField(w, "Last Entry", status.LastEntryTime.Format(statusTimeFormat))
		printField(w, "Oldest Entry", status.OldestEntryTime.Format(statusTimeFormat))
	}
	printField(w, "Table Size", fmt.Sprintf("%d bytes", status.TableSizeBytes))
}

// PrintHistoryStatus prints run history status information.
func PrintHistoryStatus(w io.Writer, status schema.HistoryStatus) {
	printField(w, "History Backend", status.Backend)
	printField(w, "Connected", status.Connected)
	if !status.Connected {
		return
	}
	printField(w, "Total Runs", status.TotalRuns)
	if status.TotalRuns > 0 {
		printField(w, "Last Run ID", status.LastRunID)
		printField(w, "Last Run", status.LastRunTime.Format(statusTimeFormat))
		printField(w, "Oldest Run", status.OldestRunTime.Format(statusTimeFormat))
		printField(w, "Total Points Recorded", status.TotalPoints)
	}
	_, _ = fmt.Fprintln(w, contract.LabelColor.Sprint("Table Sizes:"))
	for _, table := range slices.Sorted(maps.Keys(status.TableSizes)) {
		_, _ = fmt.Fprintf(w, "  %s: %d rows\n", table, status.TableSizes[table])
	}
}

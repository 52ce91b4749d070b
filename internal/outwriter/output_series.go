package outwriter

import (
	"fmt"
	"io"
	"math"

	"github.com/huangsam/sitpulse/internal/contract"
	"github.com/huangsam/sitpulse/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteSeriesTable prints the series as one or more tables that fit the terminal,
// followed by the growth summary when one is given.
func WriteSeriesTable(w io.Writer, series schema.Series, summary *schema.GrowthSummary, cfg *contract.Config) error {
	title := fmt.Sprintf("%s (%s)", series.Report.Title(), series.Country)
	_, _ = fmt.Fprintln(w, paint(contract.HeaderColor, title, cfg.UseColors))

	if series.Len() == 0 {
		_, _ = fmt.Fprintln(w, "No data points in the report window.")
		return writeGrowthSummary(w, summary, cfg)
	}

	fmtFloat := createFormatter(cfg.Precision)

	// --- 1. Format every cell once ---
	cells := make([][]string, len(series.Columns))
	widths := make([]int, len(series.Columns))
	for j, c := range series.Columns {
		cells[j] = make([]string, len(c.Values))
		widths[j] = len(c.Name)
		for i, v := range c.Values {
			cells[j][i] = fmtFloat(v)
			widths[j] = max(widths[j], len(cells[j][i]))
		}
	}

	dateWidth := len(schema.SeriesDateFormat)
	for _, group := range splitColumns(dateWidth, widths, getTerminalWidth(cfg)) {
		table := tablewriter.NewWriter(w)

		// --- 2. Define Headers ---
		headers := []string{"Date"}
		for _, j := range group {
			headers = append(headers, series.Columns[j].Name)
		}
		table.Header(headers)

		// 3. Configure Alignment
		table.Configure(func(tc *tablewriter.Config) {
			tc.Row.Alignment.Global = tw.AlignRight
		})

		// --- 4. Prepare Data Rows ---
		data := make([][]string, 0, len(series.Dates))
		for i, date := range series.Dates {
			row := []string{date}
			for _, j := range group {
				cell := cells[j][i]
				if isNonFinite(series.Columns[j].Values[i]) {
					cell = paint(contract.NonFiniteFmt, cell, cfg.UseColors)
				}
				row = append(row, cell)
			}
			data = append(data, row)
		}

		// --- 5. Render the table ---
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	return writeGrowthSummary(w, summary, cfg)
}

// writeGrowthSummary prints the latest membership counts of a growth report.
func writeGrowthSummary(w io.Writer, summary *schema.GrowthSummary, cfg *contract.Config) error {
	if summary == nil {
		return nil
	}
	label := paint(contract.LabelColor, "Latest members", cfg.UseColors)
	_, err := fmt.Fprintf(w, "%s (%s): homeowner=%d housesitter=%d combined=%d\n",
		label, summary.Period.Format(contract.DateFormat), summary.Homeowner, summary.Housesitter, summary.Combined)
	return err
}

func isNonFinite(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

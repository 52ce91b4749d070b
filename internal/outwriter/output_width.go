package outwriter

import (
	"os"

	"github.com/huangsam/sitpulse/internal/contract"
	"golang.org/x/term"
)

// Table layout constants, in terminal cells.
const (
	defaultTermWidth = 80 // Conservative default for narrow terminals and CI
	tableBorder      = 4  // Outer borders and padding of the first column
	columnPadding    = 3  // Separator plus padding around each cell
)

// getTerminalWidth returns the width override or the detected terminal width.
func getTerminalWidth(cfg *contract.Config) int {
	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		return cfg.Width
	}

	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return defaultTermWidth
	}
	return detectedWidth
}

// splitColumns groups column indexes so that each group, printed after the date
// column, fits within termWidth. Every group holds at least one column.
func splitColumns(dateWidth int, widths []int, termWidth int) [][]int {
	var groups [][]int
	var current []int
	used := tableBorder + dateWidth

	for i, w := range widths {
		cell := w + columnPadding
		if len(current) > 0 && used+cell > termWidth {
			groups = append(groups, current)
			current = nil
			used = tableBorder + dateWidth
		}
		current = append(current, i)
		used += cell
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

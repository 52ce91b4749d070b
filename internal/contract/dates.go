package contract

import (
	"fmt"
	"strings"
	"time"
)

// DateFormat is the canonical date representation for flags and CSV output.
const DateFormat = "2006-01-02"

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// reportDateLayouts are accepted by ParseReportDate in order.
var reportDateLayouts = []string{
	DateFormat,
	"02-Jan-2006",
	"2006/01/02",
}

// recordTimeLayouts are accepted by ParseRecordTime in order.
var recordTimeLayouts = []string{
	DateFormat,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"02-Jan-2006",
}

// ParseReportDate parses a reporting window bound such as "2016-01-01" or "01-Jan-2016".
func ParseReportDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range reportDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (expected YYYY-MM-DD or DD-Mon-YYYY)", s)
}

// ParseRecordTime parses a timestamp cell from an input table.
// An empty cell yields the zero time and no error.
func ParseRecordTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "NaT" {
		return time.Time{}, nil
	}
	for _, layout := range recordTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

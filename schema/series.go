package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// SeriesDateFormat is the label format for every series index.
const SeriesDateFormat = "02-01-2006"

// Values is a column of report values. NaN and infinities are legal and survive
// JSON encoding as the strings "NaN", "+Inf" and "-Inf".
type Values []float64

// MarshalJSON implements json.Marshaler.
func (v Values) MarshalJSON() ([]byte, error) {
	out := make([]any, len(v))
	for i, f := range v {
		switch {
		case math.IsNaN(f):
			out[i] = "NaN"
		case math.IsInf(f, 1):
			out[i] = "+Inf"
		case math.IsInf(f, -1):
			out[i] = "-Inf"
		default:
			out[i] = f
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Values) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Values, len(raw))
	for i, r := range raw {
		switch x := r.(type) {
		case float64:
			out[i] = x
		case string:
			f, err := strconv.ParseFloat(x, 64)
			if err != nil {
				return fmt.Errorf("invalid value %q at position %d: %w", x, i, err)
			}
			out[i] = f
		case nil:
			out[i] = math.NaN()
		default:
			return fmt.Errorf("unexpected value type %T at position %d", r, i)
		}
	}
	*v = out
	return nil
}

// Column is one named sequence of a Series.
type Column struct {
	Name   string `json:"name"`
	Values Values `json:"values"`
}

// Series is the chart-ready output of a report: a date index plus named columns of equal length.
type Series struct {
	Report  ReportKind  `json:"report"`
	Country string      `json:"country"`
	Index   []time.Time `json:"index"`
	Dates   []string    `json:"dates"`
	Columns []Column    `json:"columns"`
}

// Get returns the values of the named column.
func (s Series) Get(name string) (Values, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c.Values, true
		}
	}
	return nil, false
}

// Names returns the column names in order.
func (s Series) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Map returns the series as a name to values mapping plus the date labels under "datestr".
func (s Series) Map() map[string]any {
	out := make(map[string]any, len(s.Columns)+1)
	out["datestr"] = s.Dates
	for _, c := range s.Columns {
		out[c.Name] = c.Values
	}
	return out
}

// Len returns the number of points in the index.
func (s Series) Len() int {
	return len(s.Index)
}

// GrowthSummary holds the latest membership counts shown alongside the growth report.
type GrowthSummary struct {
	Period      time.Time `json:"period"`
	Homeowner   int       `json:"homeowner"`
	Housesitter int       `json:"housesitter"`
	Combined    int       `json:"combined"`
}

// ReportDocument is a series as returned by the JSON writers, the HTTP API and the MCP tools.
// Latest is only set for the growth report.
type ReportDocument struct {
	Series
	Latest *GrowthSummary `json:"latest,omitempty"`
}

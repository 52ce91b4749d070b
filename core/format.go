package core

import (
	"slices"
	"time"

	"github.com/huangsam/sitpulse/core/agg"
	"github.com/huangsam/sitpulse/core/country"
	"github.com/huangsam/sitpulse/schema"
)

// FormatSeries shapes an aggregation table into the series handed to writers and servers.
// Values are copied unchanged, including NaN and infinities.
func FormatSeries(kind schema.ReportKind, filter country.Filter, t agg.Table) schema.Series {
	s := schema.Series{
		Report:  kind,
		Country: filter.String(),
		Index:   slices.Clone(t.Index),
		Dates:   make([]string, len(t.Index)),
		Columns: make([]schema.Column, len(t.Columns)),
	}
	for i, ts := range t.Index {
		s.Dates[i] = ts.Format(schema.SeriesDateFormat)
	}
	for i, c := range t.Columns {
		s.Columns[i] = schema.Column{Name: c.Name, Values: slices.Clone(c.Values)}
	}
	if s.Index == nil {
		s.Index = []time.Time{}
	}
	return s
}

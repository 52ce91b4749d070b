package agg

import (
	"slices"
	"time"

	"github.com/huangsam/sitpulse/core/country"
	"github.com/huangsam/sitpulse/schema"
)

// GrowthRatio is the name of the sitters per owner column.
const GrowthRatio = "ratio"

// GrowthRow is the number of active members per role in one period.
type GrowthRow struct {
	Period      time.Time
	Homeowner   int
	Housesitter int
	Combined    int
}

// Ratio returns sitters per owner. A period without owners yields NaN or +Inf.
func (r GrowthRow) Ratio() float64 {
	return float64(r.Housesitter) / float64(r.Homeowner)
}

// Growth pivots the membership counts by role, keeps the countries selected by
// filter and sums them per period. Rows are ordered by period. Membership types
// other than homeowner, housesitter and combined are ignored.
func Growth(counts []schema.MembershipCount, filter country.Filter) []GrowthRow {
	byPeriod := make(map[time.Time]*GrowthRow)
	for _, c := range counts {
		if c.Period.IsZero() || !filter.Matches(c.Country) {
			continue
		}
		key := truncateDay(c.Period)
		row, ok := byPeriod[key]
		if !ok {
			row = &GrowthRow{Period: key}
			byPeriod[key] = row
		}
		switch c.MembershipType {
		case schema.HomeownerMembership:
			row.Homeowner += c.NumActive
		case schema.HousesitterMembership:
			row.Housesitter += c.NumActive
		case schema.CombinedMembership:
			row.Combined += c.NumActive
		}
	}

	rows := make([]GrowthRow, 0, len(byPeriod))
	for _, r := range byPeriod {
		rows = append(rows, *r)
	}
	slices.SortFunc(rows, func(a, b GrowthRow) int { return a.Period.Compare(b.Period) })
	return rows
}

// GrowthTable lays the growth rows out as columns, adding the sitter to owner ratio.
func GrowthTable(rows []GrowthRow) Table {
	t := Table{Index: make([]time.Time, len(rows))}
	owners := make(schema.Values, len(rows))
	sitters := make(schema.Values, len(rows))
	combined := make(schema.Values, len(rows))
	ratios := make(schema.Values, len(rows))
	for i, r := range rows {
		t.Index[i] = r.Period
		owners[i] = float64(r.Homeowner)
		sitters[i] = float64(r.Housesitter)
		combined[i] = float64(r.Combined)
		ratios[i] = r.Ratio()
	}
	t.Add(string(schema.HomeownerMembership), owners)
	t.Add(string(schema.HousesitterMembership), sitters)
	t.Add(string(schema.CombinedMembership), combined)
	t.Add(GrowthRatio, ratios)
	return t
}

// Latest returns the most recent growth row, or false when there is none.
func Latest(rows []GrowthRow) (GrowthRow, bool) {
	if len(rows) == 0 {
		return GrowthRow{}, false
	}
	return rows[len(rows)-1], true
}

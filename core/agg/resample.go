// Package agg has the aggregation logic behind every report: growth counts,
// onboarding success for sitters and owners, and the rolling network health window.
package agg

import (
	"math"
	"slices"
	"time"

	"github.com/huangsam/sitpulse/schema"
)

const (
	day = 24 * time.Hour

	// onboardingPeriod is how long after a member's first start date their
	// applications or assignments still count as onboarding activity.
	onboardingPeriod = 90 * day

	// verificationPeriod is the deadline for a sitter to pass standard verification.
	verificationPeriod = 30 * day

	// rollingMonths is the lookback of the network health window.
	rollingMonths = 12
)

// Table is an aggregation result: a time index plus named columns of equal length.
type Table struct {
	Index   []time.Time
	Columns []schema.Column
}

// Add appends a named column.
func (t *Table) Add(name string, values schema.Values) {
	t.Columns = append(t.Columns, schema.Column{Name: name, Values: values})
}

// Get returns the values of the named column.
func (t *Table) Get(name string) (schema.Values, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c.Values, true
		}
	}
	return nil, false
}

// MonthEnd returns midnight UTC of the last day of t's month.
func MonthEnd(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC)
}

// subtractMonths moves t back n calendar months. The day is clamped to the
// length of the target month, so 31 March minus one month is 28 or 29 February.
func subtractMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m-time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := MonthEnd(first).Day(); d > last {
		d = last
	}
	hh, mm, ss := t.Clock()
	return time.Date(first.Year(), first.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}

// truncateDay drops the time of day, keeping the calendar date in UTC.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// withinOnboarding reports whether created falls 0 to 90 days after firstStart.
// Missing dates never qualify.
func withinOnboarding(created, firstStart time.Time) bool {
	if created.IsZero() || firstStart.IsZero() {
		return false
	}
	d := created.Sub(firstStart)
	return d >= 0 && d <= onboardingPeriod
}

// months buckets timestamps into every calendar month touched by a window,
// keyed by month-end. Empty months still get a bucket.
type months struct {
	window schema.Window
	first  time.Time
	index  []time.Time
}

func newMonths(w schema.Window) *months {
	ms := &months{window: w, first: MonthEnd(w.Start)}
	last := MonthEnd(w.End)
	for m := ms.first; !m.After(last); m = MonthEnd(m.AddDate(0, 0, 1)) {
		ms.index = append(ms.index, m)
	}
	return ms
}

// slot returns the bucket position of t, or false when t is outside the window.
func (ms *months) slot(t time.Time) (int, bool) {
	if !ms.window.Contains(t) {
		return 0, false
	}
	i := (t.Year()-ms.first.Year())*12 + int(t.Month()) - int(ms.first.Month())
	return i, i >= 0 && i < len(ms.index)
}

// newColumn returns an empty accumulator with one cell per month.
func (ms *months) newColumn() column {
	return make(column, len(ms.index))
}

type cell struct {
	sum float64
	n   int
}

// column accumulates values per month bucket.
type column []cell

func (c column) add(i int, v float64) {
	c[i].sum += v
	c[i].n++
}

// sums returns the bucket totals. Empty buckets are 0.
func (c column) sums() schema.Values {
	out := make(schema.Values, len(c))
	for i, x := range c {
		out[i] = x.sum
	}
	return out
}

// means returns the bucket averages. Empty buckets are NaN.
func (c column) means() schema.Values {
	out := make(schema.Values, len(c))
	for i, x := range c {
		if x.n == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = x.sum / float64(x.n)
	}
	return out
}

// activity counts members per calendar day of their first start date and how
// many of them stayed inactive during onboarding.
type activity map[time.Time]*dayActivity

type dayActivity struct {
	members  int
	inactive int
}

func (a activity) add(firstStart time.Time, inactive bool) {
	key := truncateDay(firstStart)
	d, ok := a[key]
	if !ok {
		d = &dayActivity{}
		a[key] = d
	}
	d.members++
	if inactive {
		d.inactive++
	}
}

// resample sums member counts per month and averages the daily inactive share.
func (a activity) resample(ms *months) (members, percentInactive schema.Values) {
	days := make([]time.Time, 0, len(a))
	for d := range a {
		days = append(days, d)
	}
	slices.SortFunc(days, time.Time.Compare)

	count, share := ms.newColumn(), ms.newColumn()
	for _, d := range days {
		i, ok := ms.slot(d)
		if !ok {
			continue
		}
		act := a[d]
		count.add(i, float64(act.members))
		share.add(i, float64(act.inactive)/float64(act.members))
	}
	return count.sums(), share.means()
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

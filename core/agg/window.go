package agg

import (
	"slices"
	"time"
)

// multiset counts how many times each id is currently in the window, so that
// distinct counts stay correct when duplicates enter and leave independently.
type multiset map[int64]int

func (m multiset) add(id int64) {
	m[id]++
}

func (m multiset) remove(id int64) {
	if m[id] <= 1 {
		delete(m, id)
		return
	}
	m[id]--
}

func (m multiset) distinct() int {
	return len(m)
}

// RollingBounds returns the half-open interval [lo, hi) of the trailing
// 12-month window ending on checkpoint. Both calendar days are included.
func RollingBounds(checkpoint time.Time) (lo, hi time.Time) {
	end := truncateDay(checkpoint)
	return subtractMonths(end, rollingMonths), end.AddDate(0, 0, 1)
}

// Checkpoints returns every month-end from the month of start up to and
// including the calendar day of latest. A zero latest yields none.
func Checkpoints(start, latest time.Time) []time.Time {
	if latest.IsZero() {
		return nil
	}
	last := truncateDay(latest)
	var out []time.Time
	for m := MonthEnd(start); !m.After(last); m = MonthEnd(m.AddDate(0, 0, 1)) {
		out = append(out, m)
	}
	return out
}

// slider walks a time-sorted event slice with two pointers. Events enter when
// they fall before the upper bound and leave once they fall before the lower
// bound. Bounds must not decrease between calls.
type slider[T any] struct {
	events     []T
	at         func(T) time.Time
	head, tail int
}

func newSlider[T any](events []T, at func(T) time.Time) *slider[T] {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b T) int { return at(a).Compare(at(b)) })
	return &slider[T]{events: sorted, at: at}
}

func (s *slider[T]) advance(lo, hi time.Time, enter, leave func(T)) {
	for s.head < len(s.events) && s.at(s.events[s.head]).Before(hi) {
		enter(s.events[s.head])
		s.head++
	}
	for s.tail < s.head && s.at(s.events[s.tail]).Before(lo) {
		leave(s.events[s.tail])
		s.tail++
	}
}

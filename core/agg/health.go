package agg

import (
	"time"

	"github.com/huangsam/sitpulse/core/country"
	"github.com/huangsam/sitpulse/schema"
)

// Network health series names, in output order.
const (
	Owners              = "owners"
	Sitters             = "sitters"
	Applications        = "applications"
	Assignments         = "assignments"
	FilledAssignments   = "filled_assignments"
	SuccessfulSitters   = "successful_sitters"
	SuccessfulOwners    = "successful_owners"
	AssignmentsPerOwner = "assignments_per_owner"
	AppsPerAssignment   = "apps_per_assignment"
	OwnerSuccess        = "owner_success"
	SitsPerSitter       = "sits_per_sitter"
	SitterSuccess       = "sitter_success"
	MemberRatio         = "member_ratio"
)

// PlacedApplication is an application positioned at its assignment's creation date.
// Requested is false when the application has no request id; such rows still
// count their sitter but not the application itself.
type PlacedApplication struct {
	SitterID  int64
	At        time.Time
	Requested bool
}

// HealthEvents are the records the rolling window slides over.
type HealthEvents struct {
	Assignments  []schema.Assignment
	Applications []PlacedApplication
}

// Latest returns the most recent application time, or the zero time when there
// are none. Assignments that drew no application never extend the series.
func (e HealthEvents) Latest() time.Time {
	var latest time.Time
	for _, p := range e.Applications {
		if p.At.After(latest) {
			latest = p.At
		}
	}
	return latest
}

// NetworkHealthEvents keeps the applications whose assignment exists and places
// them at that assignment's creation date. With a country filter, assignments
// are kept by their owner's billing country and applications by their sitter's.
// Records without a creation date are dropped.
func NetworkHealthEvents(
	apps []schema.Application,
	assignments []schema.Assignment,
	sitters map[int64]schema.Sitter,
	owners map[int64]schema.Owner,
	filter country.Filter,
) HealthEvents {
	byID := indexByID(assignments, func(a schema.Assignment) int64 { return a.ID })

	var ev HealthEvents
	for _, a := range assignments {
		if a.CreatedDate.IsZero() {
			continue
		}
		if filter != country.All {
			o, ok := owners[a.OwnerID]
			if !ok || !filter.Matches(o.BillingCountry) {
				continue
			}
		}
		ev.Assignments = append(ev.Assignments, a)
	}

	for _, app := range apps {
		a, ok := byID[app.AssignmentID]
		if !ok || a.CreatedDate.IsZero() {
			continue
		}
		if filter != country.All {
			s, ok := sitters[app.SitterID]
			if !ok || !filter.Matches(s.BillingCountry) {
				continue
			}
		}
		ev.Applications = append(ev.Applications, PlacedApplication{SitterID: app.SitterID, At: a.CreatedDate, Requested: app.RequestID != nil})
	}
	return ev
}

// HealthCounts are the raw counts of one trailing 12-month window.
type HealthCounts struct {
	Checkpoint        time.Time
	Owners            int
	Sitters           int
	Applications      int
	Assignments       int
	FilledAssignments int
	SuccessfulSitters int
	SuccessfulOwners  int
}

// The ratios below divide as float64 so empty windows give NaN or +Inf.

// AssignmentsPerOwner returns assignments / owners.
func (c HealthCounts) AssignmentsPerOwner() float64 {
	return ratio(c.Assignments, c.Owners)
}

// AppsPerAssignment returns applications / assignments.
func (c HealthCounts) AppsPerAssignment() float64 {
	return ratio(c.Applications, c.Assignments)
}

// OwnerSuccess returns successful owners / owners.
func (c HealthCounts) OwnerSuccess() float64 {
	return ratio(c.SuccessfulOwners, c.Owners)
}

// ConfirmationRate returns filled assignments / assignments.
func (c HealthCounts) ConfirmationRate() float64 {
	return ratio(c.FilledAssignments, c.Assignments)
}

// SitsPerSitter returns filled assignments / sitters.
func (c HealthCounts) SitsPerSitter() float64 {
	return ratio(c.FilledAssignments, c.Sitters)
}

// SitterSuccess returns successful sitters / sitters.
func (c HealthCounts) SitterSuccess() float64 {
	return ratio(c.SuccessfulSitters, c.Sitters)
}

// MemberRatio returns sitters / owners.
func (c HealthCounts) MemberRatio() float64 {
	return ratio(c.Sitters, c.Owners)
}

func ratio(a, b int) float64 {
	return float64(a) / float64(b)
}

// rollingState is the content of the current window.
type rollingState struct {
	owners            multiset
	sitters           multiset
	assignments       multiset
	successfulOwners  multiset
	successfulSitters multiset
	applications      int
	filled            int
}

func newRollingState() *rollingState {
	return &rollingState{
		owners:            make(multiset),
		sitters:           make(multiset),
		assignments:       make(multiset),
		successfulOwners:  make(multiset),
		successfulSitters: make(multiset),
	}
}

func (s *rollingState) addAssignment(a schema.Assignment) {
	s.owners.add(a.OwnerID)
	s.assignments.add(a.ID)
	if a.IsAssignmentFilled() {
		s.filled++
		s.successfulOwners.add(a.OwnerID)
		s.successfulSitters.add(*a.SitterID)
	}
}

func (s *rollingState) removeAssignment(a schema.Assignment) {
	s.owners.remove(a.OwnerID)
	s.assignments.remove(a.ID)
	if a.IsAssignmentFilled() {
		s.filled--
		s.successfulOwners.remove(a.OwnerID)
		s.successfulSitters.remove(*a.SitterID)
	}
}

func (s *rollingState) addApplication(p PlacedApplication) {
	if p.Requested {
		s.applications++
	}
	s.sitters.add(p.SitterID)
}

func (s *rollingState) removeApplication(p PlacedApplication) {
	if p.Requested {
		s.applications--
	}
	s.sitters.remove(p.SitterID)
}

func (s *rollingState) counts(checkpoint time.Time) HealthCounts {
	return HealthCounts{
		Checkpoint:        checkpoint,
		Owners:            s.owners.distinct(),
		Sitters:           s.sitters.distinct(),
		Applications:      s.applications,
		Assignments:       s.assignments.distinct(),
		FilledAssignments: s.filled,
		SuccessfulSitters: s.successfulSitters.distinct(),
		SuccessfulOwners:  s.successfulOwners.distinct(),
	}
}

// NetworkHealthCounts computes the window counts at each checkpoint. The
// checkpoints must be in ascending order. Records enter and leave the window
// once each, so the cost is linear in the number of records plus checkpoints.
func NetworkHealthCounts(ev HealthEvents, checkpoints []time.Time) []HealthCounts {
	state := newRollingState()
	assignments := newSlider(ev.Assignments, func(a schema.Assignment) time.Time { return a.CreatedDate })
	applications := newSlider(ev.Applications, func(p PlacedApplication) time.Time { return p.At })

	out := make([]HealthCounts, 0, len(checkpoints))
	for _, cp := range checkpoints {
		lo, hi := RollingBounds(cp)
		assignments.advance(lo, hi, state.addAssignment, state.removeAssignment)
		applications.advance(lo, hi, state.addApplication, state.removeApplication)
		out = append(out, state.counts(cp))
	}
	return out
}

// NetworkHealthTable lays out the raw counts and the derived ratios per checkpoint.
func NetworkHealthTable(counts []HealthCounts) Table {
	t := Table{Index: make([]time.Time, len(counts))}
	for i, c := range counts {
		t.Index[i] = c.Checkpoint
	}

	col := func(name string, f func(HealthCounts) float64) {
		v := make(schema.Values, len(counts))
		for i, c := range counts {
			v[i] = f(c)
		}
		t.Add(name, v)
	}
	col(Owners, func(c HealthCounts) float64 { return float64(c.Owners) })
	col(Sitters, func(c HealthCounts) float64 { return float64(c.Sitters) })
	col(Applications, func(c HealthCounts) float64 { return float64(c.Applications) })
	col(Assignments, func(c HealthCounts) float64 { return float64(c.Assignments) })
	col(FilledAssignments, func(c HealthCounts) float64 { return float64(c.FilledAssignments) })
	col(SuccessfulSitters, func(c HealthCounts) float64 { return float64(c.SuccessfulSitters) })
	col(SuccessfulOwners, func(c HealthCounts) float64 { return float64(c.SuccessfulOwners) })
	col(AssignmentsPerOwner, HealthCounts.AssignmentsPerOwner)
	col(AppsPerAssignment, HealthCounts.AppsPerAssignment)
	col(OwnerSuccess, HealthCounts.OwnerSuccess)
	col(ConfirmationRate, HealthCounts.ConfirmationRate)
	col(SitsPerSitter, HealthCounts.SitsPerSitter)
	col(SitterSuccess, HealthCounts.SitterSuccess)
	col(MemberRatio, HealthCounts.MemberRatio)
	return t
}

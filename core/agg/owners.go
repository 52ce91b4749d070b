package agg

import (
	"github.com/huangsam/sitpulse/core/country"
	"github.com/huangsam/sitpulse/schema"
)

// Owner onboarding series names, in output order. The inactive share reuses PercentInactive.
const (
	NbAssignments       = "nb_assignments"
	NbAppsPerAssignment = "nb_apps_per_assignment"
	NbOwners            = "nb_owners"
	ConfirmationRate    = "confirmation_rate"
)

// OwnerStats is the onboarding activity of one owner.
type OwnerStats struct {
	Owner          schema.Owner
	NbAssignments  int
	NbConfirmed    int
	NbApplications int
}

// IsSuccessful reports whether at least one onboarding assignment was filled.
func (o OwnerStats) IsSuccessful() bool {
	return o.NbConfirmed > 0
}

// AppsPerAssignment is the average number of applications per onboarding
// assignment. It is only meaningful when NbAssignments > 0.
func (o OwnerStats) AppsPerAssignment() float64 {
	return float64(o.NbApplications) / float64(o.NbAssignments)
}

// RelevantAssignment is an assignment posted during its owner's first 90 days.
type RelevantAssignment struct {
	Assignment schema.Assignment
	Owner      schema.Owner
}

// OwnerOnboarding is the intermediate result of the owner onboarding join.
type OwnerOnboarding struct {
	Owners      []OwnerStats
	Assignments []RelevantAssignment
}

func ownerID(o schema.Owner) int64 { return o.UserID }

// ApplicationsPerAssignment counts applications per assignment id.
func ApplicationsPerAssignment(apps []schema.Application) map[int64]int {
	out := make(map[int64]int)
	for _, a := range apps {
		out[a.AssignmentID]++
	}
	return out
}

// OwnerOnboardingStats joins assignments to their owners, keeps those posted
// within 90 days of the owner's first start date and counts per owner the
// assignments, the filled ones and the applications they received. appCounts
// gives the applications per assignment id. Owners and relevant assignments
// are restricted to the filter by the owner's billing country.
func OwnerOnboardingStats(assignments []schema.Assignment, owners []schema.Owner, appCounts map[int64]int, filter country.Filter) OwnerOnboarding {
	byID := indexByID(owners, ownerID)

	type counts struct{ assignments, confirmed, apps int }
	perOwner := make(map[int64]*counts)
	var relevant []RelevantAssignment
	for _, a := range assignments {
		o, ok := byID[a.OwnerID]
		if !ok || !withinOnboarding(a.CreatedDate, o.FirstStartDate) {
			continue
		}
		c, ok := perOwner[a.OwnerID]
		if !ok {
			c = &counts{}
			perOwner[a.OwnerID] = c
		}
		c.assignments++
		c.apps += appCounts[a.ID]
		if a.IsAssignmentFilled() {
			c.confirmed++
		}
		if filter.Matches(o.BillingCountry) {
			relevant = append(relevant, RelevantAssignment{Assignment: a, Owner: o})
		}
	}

	out := OwnerOnboarding{Assignments: relevant}
	for _, o := range uniqueByID(owners, ownerID) {
		if !filter.Matches(o.BillingCountry) {
			continue
		}
		st := OwnerStats{Owner: o}
		if c, ok := perOwner[o.UserID]; ok {
			st.NbAssignments = c.assignments
			st.NbConfirmed = c.confirmed
			st.NbApplications = c.apps
		}
		out.Owners = append(out.Owners, st)
	}
	return out
}

// OwnerOnboardingTable resamples the owner onboarding stats by the month of
// each owner's first start date.
func OwnerOnboardingTable(data OwnerOnboarding, w schema.Window) Table {
	ms := newMonths(w)
	nbAssignments, success, appsPerAssignment := ms.newColumn(), ms.newColumn(), ms.newColumn()
	act := make(activity)

	for _, st := range data.Owners {
		i, ok := ms.slot(st.Owner.FirstStartDate)
		if !ok {
			continue
		}
		nbAssignments.add(i, float64(st.NbAssignments))
		success.add(i, boolValue(st.IsSuccessful()))
		if st.NbAssignments > 0 {
			appsPerAssignment.add(i, st.AppsPerAssignment())
		}
		act.add(st.Owner.FirstStartDate, st.NbAssignments == 0)
	}
	numOwners, percentInactive := act.resample(ms)

	filled := ms.newColumn()
	for _, ra := range data.Assignments {
		if i, ok := ms.slot(ra.Owner.FirstStartDate); ok {
			filled.add(i, boolValue(ra.Assignment.IsAssignmentFilled()))
		}
	}

	t := Table{Index: ms.index}
	t.Add(NbAssignments, nbAssignments.sums())
	t.Add(NbAppsPerAssignment, appsPerAssignment.means())
	t.Add(IsSuccessful, success.means())
	t.Add(PercentInactive, percentInactive)
	t.Add(NbOwners, numOwners)
	t.Add(ConfirmationRate, filled.means())
	return t
}

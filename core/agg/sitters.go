package agg

import (
	"time"

	"github.com/huangsam/sitpulse/core/country"
	"github.com/huangsam/sitpulse/schema"
)

// Sitter onboarding series names, in output order.
const (
	NbApplications  = "nb_applications"
	ConfirmedSits   = "confirmed_sits"
	IsSuccessful    = "is_successful"
	PercentInactive = "percent_inactive"
	NumSitters      = "num_sitters"
	VerifInOneMonth = "verif_in_one_month"
)

// SitterStats is the onboarding activity of one sitter.
type SitterStats struct {
	Sitter         schema.Sitter
	NbApplications int
	ConfirmedSits  int
}

// IsSuccessful reports whether the sitter had at least one confirmed sit during onboarding.
func (s SitterStats) IsSuccessful() bool {
	return s.ConfirmedSits > 0
}

// indexByID maps each id to the first record carrying it.
func indexByID[T any](records []T, id func(T) int64) map[int64]T {
	out := make(map[int64]T, len(records))
	for _, r := range records {
		k := id(r)
		if _, seen := out[k]; !seen {
			out[k] = r
		}
	}
	return out
}

// uniqueByID returns records in input order, dropping later duplicates of an id.
func uniqueByID[T any](records []T, id func(T) int64) []T {
	seen := make(map[int64]struct{}, len(records))
	out := make([]T, 0, len(records))
	for _, r := range records {
		k := id(r)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

func sitterID(s schema.Sitter) int64 { return s.UserID }

// JoinedApplications returns the applications whose sitter exists, in input order.
func JoinedApplications(apps []schema.Application, sitters map[int64]schema.Sitter) []schema.Application {
	out := make([]schema.Application, 0, len(apps))
	for _, a := range apps {
		if _, ok := sitters[a.SitterID]; ok {
			out = append(out, a)
		}
	}
	return out
}

// SitterOnboardingStats counts, for every sitter in the filter, the applications
// they sent and the sits confirmed during their first 90 days. Sitters without
// any relevant application are kept with zero counts.
func SitterOnboardingStats(apps []schema.Application, sitters []schema.Sitter, filter country.Filter) []SitterStats {
	byID := indexByID(sitters, sitterID)

	type counts struct{ apps, confirmed int }
	perSitter := make(map[int64]*counts)
	for _, a := range apps {
		s, ok := byID[a.SitterID]
		if !ok || !withinOnboarding(a.DateCreated, s.FirstStartDate) {
			continue
		}
		c, ok := perSitter[a.SitterID]
		if !ok {
			c = &counts{}
			perSitter[a.SitterID] = c
		}
		c.apps++
		if a.IsAssignmentFilled() {
			c.confirmed++
		}
	}

	var out []SitterStats
	for _, s := range uniqueByID(sitters, sitterID) {
		if !filter.Matches(s.BillingCountry) {
			continue
		}
		st := SitterStats{Sitter: s}
		if c, ok := perSitter[s.UserID]; ok {
			st.NbApplications = c.apps
			st.ConfirmedSits = c.confirmed
		}
		out = append(out, st)
	}
	return out
}

// SitterOnboardingTable resamples the sitter onboarding stats by the month of each
// sitter's first start date. The verif_in_one_month column is only present
// when verifications are given.
func SitterOnboardingTable(stats []SitterStats, verifications []schema.Verification, w schema.Window) Table {
	ms := newMonths(w)
	nbApps, confirmed, success := ms.newColumn(), ms.newColumn(), ms.newColumn()
	act := make(activity)

	for _, st := range stats {
		i, ok := ms.slot(st.Sitter.FirstStartDate)
		if !ok {
			continue
		}
		nbApps.add(i, float64(st.NbApplications))
		confirmed.add(i, float64(st.ConfirmedSits))
		success.add(i, boolValue(st.IsSuccessful()))
		act.add(st.Sitter.FirstStartDate, st.NbApplications == 0)
	}
	numSitters, percentInactive := act.resample(ms)

	t := Table{Index: ms.index}
	t.Add(NbApplications, nbApps.sums())
	t.Add(ConfirmedSits, confirmed.means())
	t.Add(IsSuccessful, success.means())
	t.Add(PercentInactive, percentInactive)
	t.Add(NumSitters, numSitters)

	if len(verifications) > 0 {
		t.Add(VerifInOneMonth, verificationRate(stats, verifications, ms))
	}
	return t
}

// verificationRate is the monthly share of sitters verified within 30 days of
// their first start date. The earliest verification of a user counts; sitters
// never verified count as not verified.
func verificationRate(stats []SitterStats, verifications []schema.Verification, ms *months) schema.Values {
	earliest := make(map[int64]time.Time, len(verifications))
	for _, v := range verifications {
		if v.StandardVerif.IsZero() {
			continue
		}
		if cur, ok := earliest[v.UserID]; !ok || v.StandardVerif.Before(cur) {
			earliest[v.UserID] = v.StandardVerif
		}
	}

	rate := ms.newColumn()
	for _, st := range stats {
		i, ok := ms.slot(st.Sitter.FirstStartDate)
		if !ok {
			continue
		}
		verifiedAt, ok := earliest[st.Sitter.UserID]
		rate.add(i, boolValue(ok && verifiedAt.Sub(st.Sitter.FirstStartDate) <= verificationPeriod))
	}
	return rate.means()
}

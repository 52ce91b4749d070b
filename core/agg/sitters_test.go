package agg

import (
	"math"
	"testing"
	"time"

	"github.com/huangsam/sitpulse/core/country"
	"github.com/huangsam/sitpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sitterFixture() ([]schema.Application, []schema.Sitter) {
	sitters := []schema.Sitter{
		{UserID: 1, FirstStartDate: date(2016, 1, 1), BillingCountry: "United Kingdom"},
		{UserID: 2, FirstStartDate: date(2016, 1, 1), BillingCountry: "Peru"},
		{UserID: 3, FirstStartDate: date(2016, 2, 10), BillingCountry: "United States"},
		{UserID: 1, FirstStartDate: date(2015, 6, 1), BillingCountry: "Canada"}, // duplicate id, ignored
	}
	apps := []schema.Application{
		// 59 days in and confirmed by both parties.
		{SitterID: 1, AssignmentID: 100, DateCreated: date(2016, 3, 1), OwnerConfirmed: 1, SitterConfirmed: 1},
		// 95 days in: outside onboarding.
		{SitterID: 2, AssignmentID: 101, DateCreated: date(2016, 4, 5), OwnerConfirmed: 1, SitterConfirmed: 1},
		// Before membership started.
		{SitterID: 3, AssignmentID: 102, DateCreated: date(2016, 2, 9)},
		// Unknown sitter: dropped by the join.
		{SitterID: 99, AssignmentID: 100, DateCreated: date(2016, 1, 2), OwnerConfirmed: 1, SitterConfirmed: 1},
	}
	return apps, sitters
}

func TestSitterOnboardingStats(t *testing.T) {
	apps, sitters := sitterFixture()
	stats := SitterOnboardingStats(apps, sitters, country.All)

	require.Len(t, stats, 3)
	assert.Equal(t, int64(1), stats[0].Sitter.UserID)
	assert.Equal(t, "United Kingdom", stats[0].Sitter.BillingCountry)
	assert.Equal(t, 1, stats[0].NbApplications)
	assert.Equal(t, 1, stats[0].ConfirmedSits)
	assert.True(t, stats[0].IsSuccessful())

	for _, st := range stats[1:] {
		assert.Zero(t, st.NbApplications, "sitter %d", st.Sitter.UserID)
		assert.Zero(t, st.ConfirmedSits, "sitter %d", st.Sitter.UserID)
		assert.False(t, st.IsSuccessful())
	}
}

func TestSitterOnboardingSyntheticSitter(t *testing.T) {
	apps, sitters := sitterFixture()
	stats := SitterOnboardingStats(apps, sitters, "United Kingdom")
	tbl := SitterOnboardingTable(stats, nil, window(date(2016, 1, 1), date(2016, 3, 31)))

	require.Len(t, tbl.Index, 3)
	assert.Equal(t, date(2016, 1, 31), tbl.Index[0])
	assert.Equal(t, 1.0, mustColumn(t, tbl, NbApplications)[0])
	assert.Equal(t, 1.0, mustColumn(t, tbl, ConfirmedSits)[0])
	assert.Equal(t, 1.0, mustColumn(t, tbl, IsSuccessful)[0])
	assert.Equal(t, 1.0, mustColumn(t, tbl, NumSitters)[0])
	assert.Equal(t, 0.0, mustColumn(t, tbl, PercentInactive)[0])
}

func TestSitterOnboardingTable(t *testing.T) {
	apps, sitters := sitterFixture()
	stats := SitterOnboardingStats(apps, sitters, country.All)
	tbl := SitterOnboardingTable(stats, nil, window(date(2016, 1, 1), date(2016, 3, 31)))

	assert.Equal(t, []string{NbApplications, ConfirmedSits, IsSuccessful, PercentInactive, NumSitters}, columnNames(tbl))
	assertValues(t, schema.Values{1, 0, 0}, mustColumn(t, tbl, NbApplications))
	assertValues(t, schema.Values{0.5, 0, math.NaN()}, mustColumn(t, tbl, ConfirmedSits))
	assertValues(t, schema.Values{0.5, 0, math.NaN()}, mustColumn(t, tbl, IsSuccessful))
	// The inactive sitter of January stays in the denominator.
	assertValues(t, schema.Values{2, 1, 0}, mustColumn(t, tbl, NumSitters))
	assertValues(t, schema.Values{0.5, 1, math.NaN()}, mustColumn(t, tbl, PercentInactive))
}

func TestSitterOnboardingExcludesLateApplication(t *testing.T) {
	fst := date(2016, 1, 1)
	sitters := []schema.Sitter{{UserID: 7, FirstStartDate: fst, BillingCountry: "Australia"}}
	apps := []schema.Application{
		{SitterID: 7, AssignmentID: 1, DateCreated: fst.AddDate(0, 0, 95), OwnerConfirmed: 1, SitterConfirmed: 1},
	}

	stats := SitterOnboardingStats(apps, sitters, country.All)
	require.Len(t, stats, 1)
	assert.Zero(t, stats[0].NbApplications)
	assert.Zero(t, stats[0].ConfirmedSits)

	tbl := SitterOnboardingTable(stats, nil, window(fst, date(2016, 1, 31)))
	assertValues(t, schema.Values{0}, mustColumn(t, tbl, NbApplications))
	assertValues(t, schema.Values{0}, mustColumn(t, tbl, IsSuccessful))
	assertValues(t, schema.Values{1}, mustColumn(t, tbl, PercentInactive))
}

func TestSitterSuccessIsShareOfSuccessfulSitters(t *testing.T) {
	var sitters []schema.Sitter
	var apps []schema.Application
	for i := range 30 {
		id := int64(i + 1)
		fst := date(2016, time.Month(1+i%4), 1+i%20)
		sitters = append(sitters, schema.Sitter{UserID: id, FirstStartDate: fst, BillingCountry: country.TopMarkets[i%5]})
		for j := range i % 3 {
			apps = append(apps, schema.Application{
				SitterID:        id,
				AssignmentID:    int64(1000 + i*10 + j),
				DateCreated:     fst.AddDate(0, 0, 10*j),
				OwnerConfirmed:  1,
				SitterConfirmed: (i + j) % 2,
			})
		}
	}

	w := window(date(2016, 1, 1), date(2016, 4, 30))
	stats := SitterOnboardingStats(apps, sitters, country.All)
	tbl := SitterOnboardingTable(stats, nil, w)
	success := mustColumn(t, tbl, IsSuccessful)

	ms := newMonths(w)
	total, successful := make([]int, len(ms.index)), make([]int, len(ms.index))
	for _, st := range stats {
		i, ok := ms.slot(st.Sitter.FirstStartDate)
		require.True(t, ok)
		total[i]++
		if st.ConfirmedSits > 0 {
			successful[i]++
		}
	}
	for i, v := range success {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
		assert.InDelta(t, float64(successful[i])/float64(total[i]), v, 1e-12)
	}
}

func TestSitterOnboardingPartition(t *testing.T) {
	apps, sitters := sitterFixture()
	w := window(date(2016, 1, 1), date(2016, 3, 31))
	all := SitterOnboardingTable(SitterOnboardingStats(apps, sitters, country.All), nil, w)

	apps2 := mustColumn(t, all, NbApplications)
	members := mustColumn(t, all, NumSitters)
	sumApps := make([]float64, len(apps2))
	sumMembers := make([]float64, len(members))
	for _, opt := range country.Options()[1:] {
		tbl := SitterOnboardingTable(SitterOnboardingStats(apps, sitters, country.Filter(opt)), nil, w)
		for i, v := range mustColumn(t, tbl, NbApplications) {
			sumApps[i] += v
		}
		for i, v := range mustColumn(t, tbl, NumSitters) {
			sumMembers[i] += v
		}
	}
	assert.Equal(t, []float64(apps2), sumApps)
	assert.Equal(t, []float64(members), sumMembers)
}

func TestSitterVerification(t *testing.T) {
	apps, sitters := sitterFixture()
	verifs := []schema.Verification{
		{UserID: 1, StandardVerif: date(2016, 1, 20)},
		{UserID: 2, StandardVerif: date(2016, 2, 15)},
		{UserID: 2, StandardVerif: date(2016, 3, 20)},
		{UserID: 42, StandardVerif: date(2016, 1, 2)},
	}

	stats := SitterOnboardingStats(apps, sitters, country.All)
	tbl := SitterOnboardingTable(stats, verifs, window(date(2016, 1, 1), date(2016, 3, 31)))

	assertValues(t, schema.Values{0.5, 0, math.NaN()}, mustColumn(t, tbl, VerifInOneMonth))

	without := SitterOnboardingTable(stats, nil, window(date(2016, 1, 1), date(2016, 3, 31)))
	_, ok := without.Get(VerifInOneMonth)
	assert.False(t, ok)
}

func TestJoinedApplications(t *testing.T) {
	apps, sitters := sitterFixture()
	joined := JoinedApplications(apps, indexByID(sitters, sitterID))
	require.Len(t, joined, 3)
	for _, a := range joined {
		assert.NotEqual(t, int64(99), a.SitterID)
	}
}

func columnNames(t Table) []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

package core

import (
	"fmt"

	"github.com/huangsam/sitpulse/core/agg"
	"github.com/huangsam/sitpulse/core/country"
	"github.com/huangsam/sitpulse/schema"
)

// Pipeline holds the loaded tables of one dataset and computes every report from them.
// The tables and the lookups derived from them are never modified after NewPipeline
// returns, so a Pipeline is safe for concurrent use.
type Pipeline struct {
	ds     *schema.Dataset
	window schema.Window

	sitters   map[int64]schema.Sitter
	owners    map[int64]schema.Owner
	joined    []schema.Application // applications with a known sitter
	appCounts map[int64]int        // joined applications per assignment id
}

// NewPipeline indexes the dataset for reports over window.
func NewPipeline(ds *schema.Dataset, window schema.Window) *Pipeline {
	sitters := make(map[int64]schema.Sitter, len(ds.Sitters))
	for _, s := range ds.Sitters {
		if _, ok := sitters[s.UserID]; !ok {
			sitters[s.UserID] = s
		}
	}
	owners := make(map[int64]schema.Owner, len(ds.Owners))
	for _, o := range ds.Owners {
		if _, ok := owners[o.UserID]; !ok {
			owners[o.UserID] = o
		}
	}
	joined := agg.JoinedApplications(ds.Applications, sitters)

	return &Pipeline{
		ds:        ds,
		window:    window,
		sitters:   sitters,
		owners:    owners,
		joined:    joined,
		appCounts: agg.ApplicationsPerAssignment(joined),
	}
}

// Window returns the reporting window.
func (p *Pipeline) Window() schema.Window {
	return p.window
}

// Fingerprint identifies the source files the pipeline was built from.
func (p *Pipeline) Fingerprint() string {
	return p.ds.Fingerprint
}

// Growth returns active members per role and the sitter to owner ratio by period.
func (p *Pipeline) Growth(filter country.Filter) schema.Series {
	rows := agg.Growth(p.ds.Memberships, filter)
	return FormatSeries(schema.GrowthReport, filter, agg.GrowthTable(rows))
}

// LatestGrowth returns the membership counts of the most recent period.
func (p *Pipeline) LatestGrowth(filter country.Filter) (schema.GrowthSummary, bool) {
	latest, ok := agg.Latest(agg.Growth(p.ds.Memberships, filter))
	if !ok {
		return schema.GrowthSummary{}, false
	}
	return schema.GrowthSummary{
		Period:      latest.Period,
		Homeowner:   latest.Homeowner,
		Housesitter: latest.Housesitter,
		Combined:    latest.Combined,
	}, true
}

// SitterOnboarding returns the monthly success, activity and volume of new sitters.
func (p *Pipeline) SitterOnboarding(filter country.Filter) schema.Series {
	stats := agg.SitterOnboardingStats(p.joined, p.ds.Sitters, filter)
	t := agg.SitterOnboardingTable(stats, p.ds.Verifications, p.window)
	return FormatSeries(schema.SitterOnboardingReport, filter, t)
}

// OwnerOnboarding returns the monthly success, activity and volume of new owners.
func (p *Pipeline) OwnerOnboarding(filter country.Filter) schema.Series {
	data := agg.OwnerOnboardingStats(p.ds.Assignments, p.ds.Owners, p.appCounts, filter)
	return FormatSeries(schema.OwnerOnboardingReport, filter, agg.OwnerOnboardingTable(data, p.window))
}

// NetworkHealth returns the trailing 12-month activity ratios at every month-end
// from the start of the window to the latest activity.
func (p *Pipeline) NetworkHealth(filter country.Filter) schema.Series {
	ev := agg.NetworkHealthEvents(p.joined, p.ds.Assignments, p.sitters, p.owners, filter)
	counts := agg.NetworkHealthCounts(ev, agg.Checkpoints(p.window.Start, ev.Latest()))
	return FormatSeries(schema.NetworkHealthReport, filter, agg.NetworkHealthTable(counts))
}

// Report computes the named report. Unknown reports and country filters are rejected.
func (p *Pipeline) Report(kind schema.ReportKind, filter country.Filter) (schema.Series, error) {
	filter, err := country.ParseFilter(string(filter))
	if err != nil {
		return schema.Series{}, err
	}
	switch kind {
	case schema.GrowthReport:
		return p.Growth(filter), nil
	case schema.SitterOnboardingReport:
		return p.SitterOnboarding(filter), nil
	case schema.OwnerOnboardingReport:
		return p.OwnerOnboarding(filter), nil
	case schema.NetworkHealthReport:
		return p.NetworkHealth(filter), nil
	}
	return schema.Series{}, fmt.Errorf("unknown report %q", kind)
}

// Package core has the report pipeline, its memoization and the command executors.
package core

import (
	"context"
	"time"

	"github.com/huangsam/sitpulse/core/country"
	"github.com/huangsam/sitpulse/internal/contract"
	"github.com/huangsam/sitpulse/internal/loader"
	"github.com/huangsam/sitpulse/internal/outwriter"
	"github.com/huangsam/sitpulse/schema"
)

// ExecutorFunc defines the function signature for executing a report command.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// LoadPipeline reads every configured table and prepares the pipeline over the configured window.
func LoadPipeline(ctx context.Context, cfg *contract.Config) (*Pipeline, error) {
	ds, err := loader.Load(ctx, cfg.Sources, cfg.Workers)
	if err != nil {
		return nil, err
	}
	return NewPipeline(ds, cfg.Window), nil
}

// ExecuteGrowth prints membership growth and the latest member counts.
func ExecuteGrowth(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	return executeReport(ctx, cfg, mgr, schema.GrowthReport)
}

// ExecuteSitterOnboarding prints the onboarding success of new sitters.
func ExecuteSitterOnboarding(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	return executeReport(ctx, cfg, mgr, schema.SitterOnboardingReport)
}

// ExecuteOwnerOnboarding prints the onboarding success of new owners.
func ExecuteOwnerOnboarding(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	return executeReport(ctx, cfg, mgr, schema.OwnerOnboardingReport)
}

// ExecuteNetworkHealth prints the rolling 12-month network health ratios.
func ExecuteNetworkHealth(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	return executeReport(ctx, cfg, mgr, schema.NetworkHealthReport)
}

func executeReport(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, kind schema.ReportKind) error {
	start := time.Now()
	p, err := LoadPipeline(ctx, cfg)
	if err != nil {
		return err
	}

	series, err := runReport(ctx, cfg, p, mgr, kind)
	if err != nil {
		return err
	}

	return outwriter.PrintSeries(series, p.latestFor(kind, cfg.Country), cfg, time.Since(start))
}

// BuildReport computes a report through the cache for the HTTP and MCP servers.
// Runs served this way are not recorded in the run history.
func BuildReport(p *Pipeline, kind schema.ReportKind, filter country.Filter, mgr contract.CacheManager) (schema.ReportDocument, error) {
	series, err := CachedReport(p, kind, filter, mgr)
	if err != nil {
		return schema.ReportDocument{}, err
	}
	return schema.ReportDocument{Series: series, Latest: p.latestFor(kind, filter)}, nil
}

// latestFor returns the latest member counts for the growth report and nil otherwise.
func (p *Pipeline) latestFor(kind schema.ReportKind, filter country.Filter) *schema.GrowthSummary {
	if kind != schema.GrowthReport {
		return nil
	}
	latest, ok := p.LatestGrowth(filter)
	if !ok {
		return nil
	}
	return &latest
}

// runReport computes one report through the cache and records it in the run
// history when a history store is configured. History failures only warn.
func runReport(ctx context.Context, cfg *contract.Config, p *Pipeline, mgr contract.CacheManager, kind schema.ReportKind) (schema.Series, error) {
	if err := ctx.Err(); err != nil {
		return schema.Series{}, err
	}

	// --- 0. Begin Run Tracking (if configured) ---
	var runID int64
	var history contract.HistoryStore
	if mgr != nil {
		history = mgr.GetHistoryStore()
	}
	if history != nil {
		params := schema.RunParams{
			Report:      kind,
			Country:     cfg.Country.String(),
			WindowStart: cfg.Window.Start,
			WindowEnd:   cfg.Window.End,
		}
		configParams := map[string]any{
			"data_dir":      cfg.DataDir,
			"workers":       cfg.Workers,
			"output":        string(cfg.Output),
			"cache_backend": string(cfg.CacheBackend),
		}
		id, err := history.BeginRun(time.Now(), params, configParams)
		if err != nil {
			contract.LogWarn("Run history initialization failed", err)
		} else {
			runID = id
		}
	}

	// --- 1. Computation (with caching) ---
	series, err := CachedReport(p, kind, cfg.Country, mgr)
	if err != nil {
		return schema.Series{}, err
	}

	// --- 2. End Run Tracking ---
	if history != nil && runID > 0 {
		if err := history.RecordSeries(runID, series); err != nil {
			contract.LogWarn("Failed to record report points", err)
		}
		if err := history.EndRun(runID, time.Now(), countPoints(series)); err != nil {
			contract.LogWarn("Failed to finalize run tracking", err)
		}
	}
	return series, nil
}

// countPoints returns the number of values in the series.
func countPoints(s schema.Series) int {
	return len(s.Index) * len(s.Columns)
}

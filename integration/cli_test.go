//go:build basic

package integration

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/sitpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noCache = []string{"SITPULSE_CACHE_BACKEND=none"}

func TestReportCommandsJSON(t *testing.T) {
	tests := []struct {
		command string
		kind    schema.ReportKind
		column  string
	}{
		{"growth", schema.GrowthReport, "ratio"},
		{"sitters", schema.SitterOnboardingReport, "num_sitters"},
		{"owners", schema.OwnerOnboardingReport, "nb_owners"},
		{"health", schema.NetworkHealthReport, "member_ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			out, err := runSitpulse(t, noCache, tt.command, "--output", "json", "--report-end", "2016-03-31")
			require.NoError(t, err)

			var doc schema.ReportDocument
			require.NoError(t, json.Unmarshal([]byte(out), &doc))
			assert.Equal(t, tt.kind, doc.Report)
			assert.Equal(t, "All", doc.Country)
			assert.Contains(t, doc.Names(), tt.column)
			assert.NotEmpty(t, doc.Dates)
		})
	}
}

func TestGrowthTextOutput(t *testing.T) {
	out, err := runSitpulse(t, noCache, "growth", "--country", "United Kingdom", "--color", "no", "--width", "200")
	require.NoError(t, err)
	assert.Contains(t, out, "Membership Growth (United Kingdom)")
	assert.Contains(t, out, "31-03-2016")
	assert.Contains(t, out, "Latest members (2016-03-31): homeowner=130 housesitter=335 combined=15")
	assert.Contains(t, out, "Cache backend: none")
}

func TestSittersCSVOutput(t *testing.T) {
	out, err := runSitpulse(t, noCache, "sitters", "--output", "csv", "--report-end", "2016-03-31")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "date,"))
	assert.True(t, strings.HasPrefix(lines[1], "31-01-2016,"))
}

func TestUnknownCountryFails(t *testing.T) {
	_, err := runSitpulse(t, noCache, "health", "--country", "Atlantis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown country")
}

func TestMissingTableFails(t *testing.T) {
	env := append([]string{"SITPULSE_MEMBERSHIPS=" + filepath.Join(t.TempDir(), "nope.csv")}, noCache...)
	_, err := runSitpulse(t, env, "growth")
	assert.Error(t, err)
}

func TestSQLiteCacheAndHistory(t *testing.T) {
	dir := t.TempDir()
	env := []string{
		"SITPULSE_CACHE_BACKEND=sqlite",
		"SITPULSE_CACHE_DB_CONNECT=" + filepath.Join(dir, "cache.db"),
		"SITPULSE_HISTORY_BACKEND=sqlite",
		"SITPULSE_HISTORY_DB_CONNECT=" + filepath.Join(dir, "history.db"),
	}

	// Second run is served from the cache
	for range 2 {
		_, err := runSitpulse(t, env, "health", "--output", "json")
		require.NoError(t, err)
	}

	out, err := runSitpulse(t, env, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Entries: 1")

	out, err = runSitpulse(t, env, "history", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Runs: 2")

	exportBase := filepath.Join(dir, "export")
	_, err = runSitpulse(t, env, "history", "export", "--output-file", exportBase)
	require.NoError(t, err)
	assert.FileExists(t, exportBase+".report_runs.parquet")
	assert.FileExists(t, exportBase+".report_points.parquet")

	_, err = runSitpulse(t, env, "history", "clear")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "history.db"))

	_, err = runSitpulse(t, env, "cache", "clear")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "cache.db"))
}

func TestHistoryMigrate(t *testing.T) {
	dir := t.TempDir()
	env := []string{
		"SITPULSE_HISTORY_BACKEND=sqlite",
		"SITPULSE_HISTORY_DB_CONNECT=" + filepath.Join(dir, "history.db"),
	}

	_, err := runSitpulse(t, env, "history", "migrate")
	require.NoError(t, err)

	_, err = runSitpulse(t, env, "history", "migrate", "--target-version", "0")
	require.NoError(t, err)
}

func TestVersion(t *testing.T) {
	out, err := runSitpulse(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sitpulse CLI")
}

package iocache

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/sitpulse/internal/parquet"
	"github.com/huangsam/sitpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeries() schema.Series {
	jan := time.Date(2016, 1, 31, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2016, 2, 29, 0, 0, 0, 0, time.UTC)
	return schema.Series{
		Report:  schema.NetworkHealthReport,
		Country: "Canada",
		Index:   []time.Time{jan, feb},
		Dates:   []string{"31-01-2016", "29-02-2016"},
		Columns: []schema.Column{
			{Name: "owners", Values: schema.Values{0, 3}},
			{Name: "owner_success", Values: schema.Values{math.NaN(), 0.5}},
			{Name: "member_ratio", Values: schema.Values{math.Inf(1), 2}},
		},
	}
}

func testRunParams() schema.RunParams {
	return schema.RunParams{
		Report:      schema.NetworkHealthReport,
		Country:     "Canada",
		WindowStart: time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC),
		WindowEnd:   time.Date(2017, 11, 30, 0, 0, 0, 0, time.UTC),
	}
}

func newSQLiteHistory(t *testing.T) *HistoryStoreImpl {
	t.Helper()
	store, err := NewHistoryStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*HistoryStoreImpl)
}

func TestHistoryStoreNoneBackend(t *testing.T) {
	store, err := NewHistoryStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun(time.Now(), testRunParams(), map[string]any{"workers": 1})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), runID)
	assert.NoError(t, store.RecordSeries(1, testSeries()))
	assert.NoError(t, store.EndRun(1, time.Now(), 6))

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Nil(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestHistoryStoreSQLite(t *testing.T) {
	store := newSQLiteHistory(t)

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	runID, err := store.BeginRun(start, testRunParams(), map[string]any{"workers": 4, "output": "text"})
	require.NoError(t, err)
	assert.Positive(t, runID)

	series := testSeries()
	require.NoError(t, store.RecordSeries(runID, series))
	require.NoError(t, store.EndRun(runID, start.Add(1500*time.Millisecond), 6))

	t.Run("runs", func(t *testing.T) {
		runs, err := store.GetAllRuns()
		require.NoError(t, err)
		require.Len(t, runs, 1)

		run := runs[0]
		assert.Equal(t, runID, run.RunID)
		assert.Equal(t, "health", run.Report)
		assert.Equal(t, "Canada", run.Country)
		assert.True(t, run.WindowStart.Equal(testRunParams().WindowStart))
		assert.True(t, run.WindowEnd.Equal(testRunParams().WindowEnd))
		assert.True(t, run.StartTime.Equal(start))
		require.NotNil(t, run.EndTime)
		assert.True(t, run.EndTime.Equal(start.Add(1500*time.Millisecond)))
		require.NotNil(t, run.RunDurationMs)
		assert.Equal(t, int32(1500), *run.RunDurationMs)
		assert.Equal(t, int32(6), run.TotalPoints)
		require.NotNil(t, run.ConfigParams)
		assert.JSONEq(t, `{"workers": 4, "output": "text"}`, *run.ConfigParams)
	})

	t.Run("points", func(t *testing.T) {
		points, err := store.GetAllPoints()
		require.NoError(t, err)
		require.Len(t, points, 6)

		byKey := make(map[string]schema.ReportPointRecord)
		for _, p := range points {
			byKey[p.SeriesName+"@"+p.Period.Format("2006-01-02")] = p
		}

		nan := byKey["owner_success@2016-01-31"]
		assert.Nil(t, nan.Value)
		assert.Equal(t, "NaN", nan.Raw)

		inf := byKey["member_ratio@2016-01-31"]
		assert.Nil(t, inf.Value)
		assert.Equal(t, "+Inf", inf.Raw)

		half := byKey["owner_success@2016-02-29"]
		require.NotNil(t, half.Value)
		assert.Equal(t, 0.5, *half.Value)
		assert.Equal(t, "0.5", half.Raw)
	})

	t.Run("status", func(t *testing.T) {
		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, "sqlite", status.Backend)
		assert.Equal(t, 1, status.TotalRuns)
		assert.Equal(t, runID, status.LastRunID)
		assert.True(t, status.LastRunTime.Equal(start))
		assert.True(t, status.OldestRunTime.Equal(start))
		assert.Equal(t, 6, status.TotalPoints)
		assert.Equal(t, int64(1), status.TableSizes[reportRunsTable])
		assert.Equal(t, int64(6), status.TableSizes[reportPointsTable])
	})

	t.Run("duplicate points roll back", func(t *testing.T) {
		err := store.RecordSeries(runID, series)
		assert.Error(t, err)

		points, err := store.GetAllPoints()
		require.NoError(t, err)
		assert.Len(t, points, 6)
	})

	t.Run("unknown run", func(t *testing.T) {
		assert.Error(t, store.EndRun(999, time.Now(), 0))
	})
}

func TestExportHistory(t *testing.T) {
	t.Run("requires output file", func(t *testing.T) {
		assert.ErrorContains(t, ExportHistory(newSQLiteHistory(t), ""), "--output-file is required")
	})

	t.Run("disabled history", func(t *testing.T) {
		assert.ErrorContains(t, ExportHistory(nil, "out"), "run history is disabled")
	})

	t.Run("empty history", func(t *testing.T) {
		assert.ErrorContains(t, ExportHistory(newSQLiteHistory(t), "out"), "no run history found")
	})

	t.Run("writes both files", func(t *testing.T) {
		store := newSQLiteHistory(t)
		runID, err := store.BeginRun(time.Now(), testRunParams(), nil)
		require.NoError(t, err)
		require.NoError(t, store.RecordSeries(runID, testSeries()))
		require.NoError(t, store.EndRun(runID, time.Now(), 6))

		out := filepath.Join(t.TempDir(), "history")
		require.NoError(t, ExportHistory(store, out))

		runs, err := parquet.ReadRows[parquet.ReportRun](out + ".report_runs.parquet")
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, "health", runs[0].Report)

		points, err := parquet.ReadRows[parquet.ReportPoint](out + ".report_points.parquet")
		require.NoError(t, err)
		assert.Len(t, points, 6)
	})
}

func TestClearHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := NewHistoryStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearHistory(schema.SQLiteBackend, path, ""))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestPrintStatus(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	var buf bytes.Buffer
	PrintCacheStatus(&buf, schema.CacheStatus{Backend: "none"})
	assert.Contains(t, buf.String(), "Cache Backend: none")
	assert.NotContains(t, buf.String(), "Total Entries")

	buf.Reset()
	PrintHistoryStatus(&buf, schema.HistoryStatus{
		Backend:     "sqlite",
		Connected:   true,
		TotalRuns:   2,
		LastRunID:   2,
		TotalPoints: 12,
		TableSizes:  map[string]int64{reportRunsTable: 2, reportPointsTable: 12},
	})
	out := buf.String()
	assert.Contains(t, out, "Total Runs: 2")
	assert.Contains(t, out, "Total Points Recorded: 12")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(reportPointsTable)), bytes.Index(buf.Bytes(), []byte(reportRunsTable)))
}

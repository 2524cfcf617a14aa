package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashcsv/internal/config"
	apperrors "dashcsv/internal/errors"
	"dashcsv/internal/shared/testutil"
)

var allReports = []string{
	"publishers.csv",
	"elements.csv",
	"elements_total.csv",
	"registry.csv",
	"timeliness_frequency.csv",
	"timeliness_timelag.csv",
	"transactions_type_year.csv",
	"activities_per_publisher.csv",
	"forwardlooking.csv",
	"comprehensiveness_summary.csv",
	"comprehensiveness_core.csv",
	"comprehensiveness_financials.csv",
	"comprehensiveness_valueadded.csv",
}

func testConfig(f *testutil.StatsFixtures) *config.Config {
	cfg := config.Default()
	cfg.Paths = f.PathsConfig()
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) (*Application, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)

	a, err := New(cfg, WithLogger(logger), WithClock(func() time.Time { return testutil.FixedNow }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return a, handler
}

func readOutputs(t *testing.T, dir string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	for _, name := range allReports {
		out[name] = testutil.ReadFile(t, filepath.Join(dir, name))
	}
	return out
}

func TestApplication_EndToEnd(t *testing.T) {
	f := testutil.NewStatsFixtures(t)
	f.SeedStandard()
	a, logs := newTestApp(t, testConfig(f))

	summary, err := a.Run(context.Background(), nil)
	require.NoError(t, err)

	testutil.AssertNoErrors(t, logs)
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "Statistics store opened")
	assert.True(t, logs.ContainsAttr("component", "runner"))
	assert.True(t, logs.ContainsAttr("component", "stats"))

	assert.Empty(t, summary.Failed)
	assert.Len(t, summary.Steps, 13)
	assert.Equal(t, 37, summary.Rows)
	assert.NotEmpty(t, summary.RunID)

	for _, name := range allReports {
		assert.FileExists(t, a.Paths.GetReportPath(name))
	}

	records := testutil.ReadCSV(t, a.Paths.GetReportPath("activities_per_publisher.csv"))
	assert.Equal(t, [][]string{
		{"Publisher Name", "Publisher Registry Id", "Number of activities"},
		{"alpha Agency", "org-alpha", "5"},
		{"Beta Org", "org-beta", "20"},
		{"Délta Trust", "org-delta", "0"},
	}, records)

	assert.NoFileExists(t, a.Paths.WorkbookPath())
}

func TestApplication_Deterministic(t *testing.T) {
	f := testutil.NewStatsFixtures(t)
	f.SeedStandard()
	a, logs := newTestApp(t, testConfig(f))

	_, err := a.Run(context.Background(), nil)
	require.NoError(t, err)
	first := readOutputs(t, a.Paths.OutputDir)

	logs.Clear()
	_, err = a.Run(context.Background(), nil)
	require.NoError(t, err)
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "Export run finished")
	assert.Equal(t, first, readOutputs(t, a.Paths.OutputDir))
}

func TestApplication_ParallelMatchesSequential(t *testing.T) {
	f := testutil.NewStatsFixtures(t)
	f.SeedStandard()

	seqCfg := testConfig(f)
	seqCfg.Paths.OutputDir = "out-sequential"
	seq, _ := newTestApp(t, seqCfg)
	_, err := seq.Run(context.Background(), nil)
	require.NoError(t, err)

	parCfg := testConfig(f)
	parCfg.Paths.OutputDir = "out-parallel"
	parCfg.Export.Parallel = true
	parCfg.Export.Workers = 4
	par, _ := newTestApp(t, parCfg)
	_, err = par.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, readOutputs(t, seq.Paths.OutputDir), readOutputs(t, par.Paths.OutputDir))
}

func removeRegistryRecord(t *testing.T, f *testutil.StatsFixtures, id string) {
	t.Helper()
	require.NoError(t, os.Remove(filepath.Join(f.Paths().CKANPublishersDir(), id+".json")))
}

func TestApplication_StrictMissingKey(t *testing.T) {
	f := testutil.NewStatsFixtures(t)
	f.SeedStandard()
	removeRegistryRecord(t, f, "org-beta")
	a, _ := newTestApp(t, testConfig(f))

	summary, err := a.Run(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsMissingKey(err))
	assert.Equal(t, []string{"publishers"}, summary.Failed)

	assert.FileExists(t, a.Paths.GetReportPath("publishers.csv"), "partial file stays on disk")
	assert.NoFileExists(t, a.Paths.GetReportPath("elements.csv"))
}

func TestApplication_LenientMissingKey(t *testing.T) {
	f := testutil.NewStatsFixtures(t)
	f.SeedStandard()
	removeRegistryRecord(t, f, "org-beta")

	cfg := testConfig(f)
	cfg.Export.Strict = false
	a, logs := newTestApp(t, cfg)

	summary, err := a.Run(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsMissingKey(err))
	assert.Equal(t, []string{"publishers"}, summary.Failed)

	assert.Len(t, logs.GetRecordsByLevel(slog.LevelError), 2, "the failed step and the run summary")
	failure, ok := logs.FindRecord("Step failed")
	require.True(t, ok)
	assert.Equal(t, slog.LevelError, failure.Level)
	assert.Equal(t, "publishers", failure.Attrs["step"])
	assert.Contains(t, failure.Attrs["error"], "org-beta")

	for _, name := range allReports[1:] {
		assert.FileExists(t, a.Paths.GetReportPath(name))
	}

	records := testutil.ReadCSV(t, a.Paths.GetReportPath("activities_per_publisher.csv"))
	assert.Len(t, records, 3, "publishers missing from the registry drop out of title order")
}

func TestApplication_SelectReports(t *testing.T) {
	f := testutil.NewStatsFixtures(t)
	f.SeedStandard()
	a, _ := newTestApp(t, testConfig(f))

	summary, err := a.Run(context.Background(), []string{"registry", "elements"})
	require.NoError(t, err)
	require.Len(t, summary.Steps, 2)
	assert.Equal(t, "elements", summary.Steps[0].ID)
	assert.Equal(t, "registry", summary.Steps[1].ID)

	assert.FileExists(t, a.Paths.GetReportPath("registry.csv"))
	assert.FileExists(t, a.Paths.GetReportPath("elements.csv"))
	assert.NoFileExists(t, a.Paths.GetReportPath("publishers.csv"))

	_, err = a.Run(context.Background(), []string{"no-such-report"})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestApplication_ConfiguredReports(t *testing.T) {
	f := testutil.NewStatsFixtures(t)
	f.SeedStandard()
	cfg := testConfig(f)
	cfg.Export.Reports = []string{"forwardlooking"}
	a, _ := newTestApp(t, cfg)

	summary, err := a.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, summary.Steps, 1)
	assert.FileExists(t, a.Paths.GetReportPath("forwardlooking.csv"))
	assert.NoFileExists(t, a.Paths.GetReportPath("registry.csv"))
}

func TestApplication_WorkbookAndMetrics(t *testing.T) {
	f := testutil.NewStatsFixtures(t)
	f.SeedStandard()

	cfg := testConfig(f)
	cfg.Export.Workbook = true
	cfg.Export.BOMPrefix = true
	cfg.Telemetry.MetricsFile = filepath.Join(t.TempDir(), "dashcsv.prom")
	a, _ := newTestApp(t, cfg)

	_, err := a.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.FileExists(t, a.Paths.WorkbookPath())

	content := testutil.ReadFile(t, a.Paths.GetReportPath("registry.csv"))
	assert.Equal(t, "\xEF\xBB\xBFname,title", content[:len("\xEF\xBB\xBFname,title")])

	metrics := testutil.ReadFile(t, cfg.Telemetry.MetricsFile)
	assert.Contains(t, metrics, "dashcsv_reports_total")
	assert.Contains(t, metrics, `report="comprehensiveness_core"`)
}

func TestApplication_MissingInputs(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.BaseDir = t.TempDir()

	_, err := New(cfg, WithLogger(slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))))
	assert.Error(t, err)
}

func TestApplication_MalformedRegistry(t *testing.T) {
	f := testutil.NewStatsFixtures(t)
	f.SeedStandard()
	f.WriteFile(filepath.Join(f.Paths().CKANPublishersDir(), "org-broken.json"), `{"result": `)

	_, err := New(testConfig(f), WithLogger(slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
}

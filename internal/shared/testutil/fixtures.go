package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dashcsv/internal/config"
)

// FixedNow is the clock used by the standard dataset: the previous twelve
// months run from 2023-03 to 2024-02 and the forward-looking years are
// 2024 to 2026.
var FixedNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

// StatsFixtures writes stats-calculated and data trees for testing
type StatsFixtures struct {
	t       *testing.T
	BaseDir string
	paths   *config.Paths
}

// NewStatsFixtures creates an empty tree below a test temp directory
func NewStatsFixtures(t *testing.T) *StatsFixtures {
	t.Helper()
	base := t.TempDir()

	cfg := config.Default().Paths
	cfg.BaseDir = base
	paths, err := config.NewPaths(cfg)
	require.NoError(t, err)

	f := &StatsFixtures{t: t, BaseDir: base, paths: paths}
	require.NoError(t, os.MkdirAll(paths.InvertedPublisherDir(), 0755))
	require.NoError(t, os.MkdirAll(paths.AggregatedPublisherDir(), 0755))
	require.NoError(t, os.MkdirAll(paths.GitAggregateDatedDir(), 0755))
	require.NoError(t, os.MkdirAll(paths.CKANPublishersDir(), 0755))
	return f
}

// Paths returns the resolved paths of the fixture tree
func (f *StatsFixtures) Paths() *config.Paths {
	return f.paths
}

// PathsConfig returns a configuration section pointing at the fixture tree
func (f *StatsFixtures) PathsConfig() config.PathsConfig {
	cfg := config.Default().Paths
	cfg.BaseDir = f.BaseDir
	return cfg
}

// WriteFile writes raw content to path, creating parent directories
func (f *StatsFixtures) WriteFile(path, content string) {
	f.t.Helper()
	require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(f.t, os.WriteFile(path, []byte(content), 0644))
}

// SetInverted writes stats-calculated/current/inverted-publisher/<key>.json
func (f *StatsFixtures) SetInverted(key, json string) {
	f.WriteFile(filepath.Join(f.paths.InvertedPublisherDir(), key+".json"), json)
}

// SetAggregated writes one key of a publisher's aggregated statistics
func (f *StatsFixtures) SetAggregated(id, key, json string) {
	f.WriteFile(filepath.Join(f.paths.AggregatedPublisherDir(), id, key+".json"), json)
}

// SetAggregatedAll writes several keys of a publisher's aggregated statistics
func (f *StatsFixtures) SetAggregatedAll(id string, values map[string]string) {
	for key, json := range values {
		f.SetAggregated(id, key, json)
	}
}

// SetDated writes one key of a publisher's dated git aggregate
func (f *StatsFixtures) SetDated(id, key, json string) {
	f.WriteFile(filepath.Join(f.paths.GitAggregateDatedDir(), id, key+".json"), json)
}

// AddRegistryRecord writes data/ckan_publishers/<id>.json around result
func (f *StatsFixtures) AddRegistryRecord(id, result string) {
	f.WriteFile(filepath.Join(f.paths.CKANPublishersDir(), id+".json"), `{"result": `+result+`}`)
}

// SetTickets writes data/tickets.json
func (f *StatsFixtures) SetTickets(json string) {
	f.WriteFile(f.paths.TicketsFile(), json)
}

// SeedStandard writes a small dataset exercising every report.
//
// Activity index order is org-beta, org-alpha, org-delta; title order is
// org-alpha ("alpha Agency"), org-beta ("Beta Org"), org-delta ("Délta
// Trust"). org-gamma is only in the registry.
func (f *StatsFixtures) SeedStandard() {
	f.SetInverted("activities", `{"org-beta": 20, "org-alpha": 5, "org-delta": 0}`)
	f.SetInverted("elements", `{
		"iati-activity": {"org-beta": 20, "org-alpha": 5},
		"budget": {"org-beta": 3, "org-unknown": 9}
	}`)
	f.SetInverted("elements_total", `{
		"iati-activity": {"org-beta": 22, "org-alpha": 5, "org-delta": 1}
	}`)

	f.SetAggregatedAll("org-beta", map[string]string{
		"activities":                             `20`,
		"organisations":                          `1`,
		"activity_files":                         `3`,
		"organisation_files":                     `1`,
		"file_size":                              `204800`,
		"reporting_orgs":                         `{"XM-DAC-1": 20, "XM-DAC-2": 1}`,
		"hierarchies":                            `{"1": 18, "2": 2}`,
		"sum_transactions_by_type_by_year":       `{"C": {"USD": {"2023": 100, "2024": 200}}, "D": {"EUR": {"2023": 50.5}}}`,
		"transaction_months_with_year":           `{"2024-02": 3, "2024-01": 1, "2023-07": 2}`,
		"forwardlooking_activities_current":      `{"2024": 10, "2025": 4}`,
		"forwardlooking_activities_with_budgets": `{"2024": 5, "2025": 4}`,
		"comprehensiveness":                      `{"version": 20, "title": 20, "description": 10, "transaction_commitment": 5}`,
		"comprehensiveness_with_validation":      `{"version": 20, "title": 18, "description": 10}`,
		"comprehensiveness_denominator_default":  `20`,
		"comprehensiveness_denominators":         `{"transaction_commitment": 10, "transaction_spend": 10, "transaction_traceability": 0}`,
	})
	f.SetAggregatedAll("org-alpha", map[string]string{
		"activities":                       `5`,
		"organisations":                    `2`,
		"activity_files":                   `1`,
		"organisation_files":               `0`,
		"file_size":                        `1536`,
		"reporting_orgs":                   `["GB-1"]`,
		"hierarchies":                      `{}`,
		"sum_transactions_by_type_by_year": `{}`,
		"transaction_months_with_year":     `{"2023-05": 1}`,
	})
	f.SetAggregatedAll("org-delta", map[string]string{
		"activities":                             `0`,
		"organisations":                          `0`,
		"activity_files":                         `0`,
		"organisation_files":                     `1`,
		"file_size":                              `10`,
		"reporting_orgs":                         `{}`,
		"hierarchies":                            `{}`,
		"sum_transactions_by_type_by_year":       `{}`,
		"forwardlooking_activities_current":      `{}`,
		"forwardlooking_activities_with_budgets": `{}`,
		"comprehensiveness":                      `{"version": 0}`,
		"comprehensiveness_with_validation":      `{}`,
		"comprehensiveness_denominator_default":  `0`,
	})

	f.SetDated("org-beta", "most_recent_transaction_date", `{
		"2024-02-10": "2024-01-04",
		"2023-06-01": "2023-05-30",
		"2023-09-03": "2023-09-01",
		"2023-12-02": "2023-12-01",
		"2024-01-05": "2024-01-04"
	}`)
	f.SetDated("org-alpha", "most_recent_transaction_date", `{"2022-01-01": "2021-12-01"}`)
	f.SetDated("org-gamma", "most_recent_transaction_date", `{"2023-04-01": "2023-04-01"}`)
	f.SetDated("org-unregistered", "most_recent_transaction_date", `{"2024-02-01": "2024-02-01"}`)
	f.SetDated("org-delta", "activities", `{"2024-02-01": 0}`)

	f.AddRegistryRecord("org-alpha", `{
		"name": "org-alpha", "title": "alpha Agency", "publisher_frequency": "",
		"publisher_iati_id": "GB-1", "state": "active", "license_id": "cc-by",
		"publisher_timeliness": null, "publisher_ui": true
	}`)
	f.AddRegistryRecord("org-beta", `{
		"name": "org-beta", "title": "Beta Org", "publisher_iati_id": "XM-DAC-1",
		"publisher_country": "FR", "state": "active", "image_url": "http://example.org/a,b.png",
		"publisher_description": "Line one\nLine \"two\""
	}`)
	f.AddRegistryRecord("org-delta", `{
		"name": "org-delta", "title": "Délta Trust", "publisher_iati_id": "", "state": "active"
	}`)
	f.AddRegistryRecord("org-gamma", `{
		"name": "org-gamma", "title": "Gamma Fund", "publisher_iati_id": "XI-IATI-9",
		"state": "deleted", "publisher_refs": 0
	}`)

	f.SetTickets(`{"org-beta": ["T1", "T2"]}`)
}

// ReadCSV parses a written report
func ReadCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)
	return records
}

// ReadFile returns the raw bytes of a written report
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

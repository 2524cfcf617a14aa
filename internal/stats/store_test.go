package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "dashcsv/internal/errors"
	"dashcsv/internal/shared/testutil"
	"dashcsv/pkg/contracts/domain"
)

func openStandard(t *testing.T) (*Store, *testutil.StatsFixtures) {
	t.Helper()
	fx := testutil.NewStatsFixtures(t)
	fx.SeedStandard()
	return Open(fx.Paths()), fx
}

func TestActivityIndex(t *testing.T) {
	store, _ := openStandard(t)

	entries, err := store.ActivityIndex()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	var ids, counts []string
	for _, e := range entries {
		ids = append(ids, e.PublisherID)
		counts = append(counts, e.Activities.Text())
	}
	assert.Equal(t, []string{"org-beta", "org-alpha", "org-delta"}, ids, "index order is file order")
	assert.Equal(t, []string{"20", "5", "0"}, counts)

	pubIDs, err := store.PublisherIDs()
	require.NoError(t, err)
	assert.Equal(t, ids, pubIDs)
}

func TestActivityIndex_Missing(t *testing.T) {
	fx := testutil.NewStatsFixtures(t)
	store := Open(fx.Paths())

	_, err := store.ActivityIndex()
	require.Error(t, err)
	assert.True(t, apperrors.IsMissingKey(err))
}

func TestActivityIndex_NotAnObject(t *testing.T) {
	fx := testutil.NewStatsFixtures(t)
	fx.SetInverted("activities", `[1, 2]`)

	_, err := Open(fx.Paths()).ActivityIndex()
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
}

func TestElements(t *testing.T) {
	store, _ := openStandard(t)

	valid, err := store.Elements(ElementsValid)
	require.NoError(t, err)
	assert.Equal(t, []string{"iati-activity", "budget"}, valid.Keys())

	total, err := store.Elements(ElementsTotal)
	require.NoError(t, err)
	assert.Equal(t, []string{"iati-activity"}, total.Keys())
}

func TestPublisherStats(t *testing.T) {
	store, _ := openStandard(t)

	tests := []struct {
		id   string
		want domain.PublisherStats
	}{
		{
			id: "org-beta",
			want: domain.PublisherStats{
				Organisations:     1,
				ActivityFiles:     3,
				OrganisationFiles: 1,
				FileSize:          204800,
				ReportingOrgs:     []string{"XM-DAC-1", "XM-DAC-2"},
				Hierarchies:       []string{"1", "2"},
			},
		},
		{
			id: "org-alpha",
			want: domain.PublisherStats{
				Organisations:     2,
				ActivityFiles:     1,
				OrganisationFiles: 0,
				FileSize:          1536,
				ReportingOrgs:     []string{"GB-1"},
				Hierarchies:       []string{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := store.PublisherStats(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPublisherStats_MissingKey(t *testing.T) {
	store, fx := openStandard(t)
	fx.SetAggregated("org-partial", "organisations", `1`)

	_, err := store.PublisherStats("org-partial")
	require.Error(t, err)
	assert.True(t, apperrors.IsMissingKey(err))

	_, err = store.PublisherStats("org-absent")
	require.Error(t, err)
	assert.True(t, apperrors.IsMissingKey(err))
}

func TestPublisherStats_BadType(t *testing.T) {
	store, fx := openStandard(t)
	fx.SetAggregatedAll("org-bad", map[string]string{
		"organisations":      `"many"`,
		"activity_files":     `1`,
		"organisation_files": `1`,
		"file_size":          `1`,
		"reporting_orgs":     `[]`,
		"hierarchies":        `[]`,
	})

	_, err := store.PublisherStats("org-bad")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
}

func TestAggregatedAccessors(t *testing.T) {
	store, _ := openStandard(t)

	activities, err := store.AggregatedActivities("org-beta")
	require.NoError(t, err)
	assert.Equal(t, "20", activities.Text())

	tx, err := store.TransactionsByTypeByYear("org-beta")
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "D"}, tx.Keys())

	_, ok, err := store.AggregatedValue("org-alpha", "forwardlooking_activities_current")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.TransactionsByTypeByYear("org-gamma")
	require.Error(t, err)
	assert.True(t, apperrors.IsMissingKey(err))

	pubs, err := store.AggregatedPublishers()
	require.NoError(t, err)
	assert.Equal(t, []string{"org-alpha", "org-beta", "org-delta"}, pubs)
}

func TestDatedAccessors(t *testing.T) {
	store, _ := openStandard(t)

	pubs, err := store.DatedPublishers()
	require.NoError(t, err)
	assert.Equal(t, []string{"org-alpha", "org-beta", "org-delta", "org-gamma", "org-unregistered"}, pubs)

	v, ok, err := store.DatedValue("org-beta", KeyMostRecentTransactionDate)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5, v.Len())

	_, ok, err = store.DatedValue("org-delta", KeyMostRecentTransactionDate)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLogSummary(t *testing.T) {
	store, _ := openStandard(t)
	logger, handler := testutil.NewTestLogger(t)

	store.LogSummary(logger)

	testutil.AssertLogAttr(t, handler, "publishers", int64(3))
	require.True(t, handler.ContainsMessage("Statistics store opened"))

	rec, ok := handler.FindRecord("Statistics store opened")
	require.True(t, ok)
	assert.Greater(t, rec.Attrs["input_bytes"], int64(0))
	assert.NotEmpty(t, rec.Attrs["input_size"])
}

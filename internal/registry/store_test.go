package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "dashcsv/internal/errors"
	"dashcsv/internal/files"
	"dashcsv/internal/shared/testutil"
	"dashcsv/pkg/contracts/domain"
)

func openStandard(t *testing.T) *Store {
	t.Helper()
	fx := testutil.NewStatsFixtures(t)
	fx.SeedStandard()
	store, err := Open(fx.Paths())
	require.NoError(t, err)
	return store
}

func record(id, title string) Record {
	return NewRecord(id, files.NewObject().Set("title", files.NewString(title)))
}

func TestOpen(t *testing.T) {
	store := openStandard(t)

	require.Equal(t, 4, store.Len())
	var ids []string
	for _, r := range store.Records() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"org-alpha", "org-beta", "org-delta", "org-gamma"}, ids)

	beta, err := store.Lookup("org-beta")
	require.NoError(t, err)
	title, err := beta.Title()
	require.NoError(t, err)
	assert.Equal(t, "Beta Org", title)
	country, ok := beta.Field("publisher_country")
	require.True(t, ok)
	assert.Equal(t, "FR", country.Text())
	_, ok = beta.Field("publisher_ui")
	assert.False(t, ok)

	desc, ok := beta.Field("publisher_description")
	require.True(t, ok)
	assert.Equal(t, "Line one\nLine \"two\"", desc.Text())
}

func TestOpen_WithoutTickets(t *testing.T) {
	fx := testutil.NewStatsFixtures(t)
	fx.AddRegistryRecord("org-a", `{"title": "A"}`)

	store, err := Open(fx.Paths())
	require.NoError(t, err)
	assert.Equal(t, 0, store.TicketCount("org-a"))
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errType apperrors.ErrorType
	}{
		{"malformed json", `{"result": `, apperrors.ErrTypeParsing},
		{"missing result", `{"success": true}`, apperrors.ErrTypeMissingKey},
		{"result not an object", `{"result": []}`, apperrors.ErrTypeParsing},
		{"not an object", `[]`, apperrors.ErrTypeParsing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := testutil.NewStatsFixtures(t)
			fx.WriteFile(fx.Paths().CKANPublishersDir()+"/broken.json", tt.content)

			_, err := Open(fx.Paths())
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.errType), err.Error())
		})
	}
}

func TestOpen_MissingDirectory(t *testing.T) {
	fx := testutil.NewStatsFixtures(t)
	paths := *fx.Paths()
	paths.DataDir = paths.DataDir + "-absent"

	_, err := Open(&paths)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestLookup(t *testing.T) {
	store := openStandard(t)

	title, err := store.Title("org-delta")
	require.NoError(t, err)
	assert.Equal(t, "Délta Trust", title)

	_, err = store.Title("org-unknown")
	require.Error(t, err)
	assert.True(t, apperrors.IsMissingKey(err))

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "org-unknown", appErr.Context["key"])

	assert.True(t, store.Has("org-gamma"))
	assert.False(t, store.Has("org-unknown"))
}

func TestIATIID(t *testing.T) {
	store := New([]Record{
		NewRecord("with", files.NewObject().Set("publisher_iati_id", files.NewString("XM-1"))),
		NewRecord("without", nil),
	}, nil)

	v, err := store.IATIID("with")
	require.NoError(t, err)
	assert.Equal(t, "XM-1", v.Text())

	_, err = store.IATIID("without")
	assert.True(t, apperrors.IsMissingKey(err))

	_, err = store.IATIID("unknown")
	assert.True(t, apperrors.IsMissingKey(err))
}

func TestTicketCount(t *testing.T) {
	store := openStandard(t)

	assert.Equal(t, 2, store.TicketCount("org-beta"))
	assert.Equal(t, 0, store.TicketCount("org-alpha"))
}

func TestOrderedByTitle(t *testing.T) {
	store := New([]Record{
		record("b", "beta"),
		record("a", "Alpha"),
		record("e", "Éclair"),
		record("z", "ZED"),
		record("a2", "alpha"),
	}, nil)

	got, err := store.OrderedByTitle([]string{"z", "e", "a2", "unknown", "b", "a"})
	require.NoError(t, err)

	assert.Equal(t, []domain.Publisher{
		{ID: "a2", Title: "alpha"},
		{ID: "a", Title: "Alpha"},
		{ID: "b", Title: "beta"},
		{ID: "z", Title: "ZED"},
		{ID: "e", Title: "Éclair"},
	}, got, "case-folded order, ties keep input order, unknown ids dropped")
}

type staticIDs struct {
	ids   []string
	err   error
	calls int
}

func (s *staticIDs) PublisherIDs() ([]string, error) {
	s.calls++
	return s.ids, s.err
}

func TestTitleIndex(t *testing.T) {
	store := openStandard(t)
	ids := &staticIDs{ids: []string{"org-beta", "org-alpha", "org-delta"}}
	index := NewTitleIndex(store, ids)

	first, err := index.PublishersByTitle()
	require.NoError(t, err)
	assert.Equal(t, []domain.Publisher{
		{ID: "org-alpha", Title: "alpha Agency"},
		{ID: "org-beta", Title: "Beta Org"},
		{ID: "org-delta", Title: "Délta Trust"},
	}, first)

	first[0].Title = "mutated"
	second, err := index.PublishersByTitle()
	require.NoError(t, err)
	assert.Equal(t, "alpha Agency", second[0].Title)
	assert.Equal(t, 1, ids.calls)
}

func TestTitleIndex_Error(t *testing.T) {
	index := NewTitleIndex(New(nil, nil), &staticIDs{err: assert.AnError})

	_, err := index.PublishersByTitle()
	assert.ErrorIs(t, err, assert.AnError)
}

func TestTitle_MissingField(t *testing.T) {
	store := New([]Record{
		record("titled", "Titled"),
		NewRecord("untitled", files.NewObject().Set("name", files.NewString("untitled"))),
		NewRecord("null", files.NewObject().Set("title", files.NewNull())),
	}, nil)

	_, err := store.Title("untitled")
	require.Error(t, err)
	assert.True(t, apperrors.IsMissingKey(err))

	title, err := store.Title("null")
	require.NoError(t, err)
	assert.Equal(t, "", title)

	_, err = store.OrderedByTitle([]string{"titled", "untitled"})
	assert.True(t, apperrors.IsMissingKey(err))

	_, err = NewTitleIndex(store, &staticIDs{ids: []string{"untitled"}}).PublishersByTitle()
	assert.True(t, apperrors.IsMissingKey(err))
}

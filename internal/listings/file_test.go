package listings

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/card-cli/internal/lexicon"
	"github.com/sells-group/card-cli/internal/model"
)

func day(d int) time.Time { return time.Date(2026, 9, d, 0, 0, 0, 0, time.UTC) }

func fixtureListings() []model.Listing {
	return []model.Listing{
		{ID: "1", Title: "2025 Topps Chrome Cooper Flagg #251 PSA 10", Price: 400, Date: day(1), Status: StatusSold},
		{ID: "2", Title: "2025 Topps Chrome Cooper Flagg #251 PSA 10 Gem Mint", Price: 420, Date: day(2), Status: StatusSold},
		{ID: "3", Title: "2025 Topps Chrome Cooper Flagg #251 PSA 9", Price: 150, Date: day(3), Status: StatusSold},
		{ID: "4", Title: "2025 Topps Chrome Dylan Harper #252 PSA 10", Price: 90, Date: day(4), Status: StatusSold},
		{ID: "5", Title: "2025 Topps Chrome Cooper Flagg #251 PSA 10", Price: 500, Status: StatusActive},
		{ID: "6", Title: "2025 Topps Chrome Cooper Flagg #251 PSA 10", Price: 460, Status: StatusActive},
	}
}

func TestFileSource_FetchComps_ExactGradeOnly(t *testing.T) {
	src := NewFileSource(fixtureListings(), lexicon.Default())
	q := model.ListingQuery{Player: "Cooper Flagg", Year: 2025, Set: "Topps Chrome", CardNumber: "251", Grade: "PSA 10"}

	comps, err := src.FetchComps(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, comps, 2)
	for _, c := range comps {
		assert.Equal(t, "PSA 10", c.Grade)
		assert.Contains(t, c.Title, "Cooper Flagg")
	}
}

func TestFileSource_FetchComps_GradeAgnostic(t *testing.T) {
	src := NewFileSource(fixtureListings(), lexicon.Default())

	comps, err := src.FetchComps(context.Background(), model.ListingQuery{Player: "Cooper Flagg"})
	require.NoError(t, err)
	assert.Len(t, comps, 3)
}

func TestFileSource_FetchForSale(t *testing.T) {
	src := NewFileSource(fixtureListings(), lexicon.Default())
	q := model.ListingQuery{Player: "Cooper Flagg", Year: 2025, Set: "Topps Chrome", Grade: "PSA 10"}

	sum, err := src.FetchForSale(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Count)
	require.NotNil(t, sum.MedianAsk)
	assert.InDelta(t, 480, *sum.MedianAsk, 1e-9)
	assert.Nil(t, sum.EstimatedSaleLow)
}

func TestFileSource_FetchComps_UngradedTitleNotPromoted(t *testing.T) {
	src := NewFileSource([]model.Listing{
		{ID: "1", Title: "2025 Topps Chrome Cooper Flagg #251", Price: 40, Date: day(1), Status: StatusSold},
		{ID: "2", Title: "2025 Topps Chrome Cooper Flagg #251 PSA 9", Price: 150, Date: day(2), Status: StatusSold},
	}, lexicon.Default())
	q := model.ListingQuery{Player: "Cooper Flagg", Year: 2025, Set: "Topps Chrome", CardNumber: "251", Grade: "PSA 10"}

	comps, err := src.FetchComps(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, comps)
}

func TestFileSource_UnknownPlayer(t *testing.T) {
	src := NewFileSource(fixtureListings(), lexicon.Default())

	comps, err := src.FetchComps(context.Background(), model.ListingQuery{Player: "Victor Wembanyama", Grade: "PSA 10"})
	require.NoError(t, err)
	assert.Empty(t, comps)

	sum, err := src.FetchForSale(context.Background(), model.ListingQuery{Player: "Victor Wembanyama"})
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Count)
	assert.Nil(t, sum.MedianAsk)
}

func TestFileSource_Search(t *testing.T) {
	src := NewFileSource(fixtureListings(), lexicon.Default())

	ls, err := src.Search(context.Background(), "flagg psa 9")
	require.NoError(t, err)
	require.Len(t, ls, 1)
	assert.Equal(t, "3", ls[0].ID)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"listings":[
		{"id":"a","title":"2025 Topps Chrome Cooper Flagg PSA 10","price":410,"date":"2026-09-01T00:00:00Z","status":"sold"}
	]}`), 0o600))

	src, err := LoadFile(path, lexicon.Default())
	require.NoError(t, err)
	comps, err := src.FetchComps(context.Background(), model.ListingQuery{Player: "Cooper Flagg", Grade: "PSA 10"})
	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.InDelta(t, 410, comps[0].Price, 1e-9)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"), lexicon.Default())
	assert.ErrorContains(t, err, "listings: read")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{`), 0o600))
	_, err = LoadFile(bad, lexicon.Default())
	assert.ErrorContains(t, err, "listings: parse")
}

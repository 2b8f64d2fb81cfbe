package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/card-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "cards.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

var flagg = model.CardRef{Player: "Cooper Flagg", Year: 2025, Set: "Topps Chrome", Grade: "PSA 10"}

func TestSQLite_GetCmv_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)
	got, err := st.GetCmv(context.Background(), flagg)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_PutThenGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	put, err := st.PutCmv(ctx, flagg, model.NewCmvResult(412.5, model.CmvHigh, "exact_grade", 6, at))
	require.NoError(t, err)
	assert.NotEmpty(t, put.ID)

	got, err := st.GetCmv(ctx, flagg)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, put.ID, got.ID)
	assert.Equal(t, flagg, got.Card)
	require.NotNil(t, got.Result.EstimatedCMV)
	assert.InDelta(t, 412.5, *got.Result.EstimatedCMV, 1e-9)
	assert.Equal(t, model.CmvHigh, got.Result.CmvConfidence)
	assert.True(t, at.Equal(got.UpdatedAt))
}

func TestSQLite_PutReplacesAndKeepsID(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	first, err := st.PutCmv(ctx, flagg, model.NewCmvResult(100, model.CmvLow, "proxy", 3, t0))
	require.NoError(t, err)
	_, err = st.PutCmv(ctx, flagg, model.NewCmvResult(150, model.CmvMedium, "grade_adjacent", 4, t0.Add(time.Hour)))
	require.NoError(t, err)

	got, err := st.GetCmv(ctx, flagg)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.InDelta(t, 150, *got.Result.EstimatedCMV, 1e-9)

	all, err := st.ListCmv(ctx, CmvFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLite_ListCmv_UpdatedBefore(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fresh := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := st.PutCmv(ctx, flagg, model.NewCmvResult(100, model.CmvHigh, "exact_grade", 5, old))
	require.NoError(t, err)
	raw := flagg.WithGrade("raw")
	_, err = st.PutCmv(ctx, raw, model.UnavailableCmv(fresh))
	require.NoError(t, err)

	stale, err := st.ListCmv(ctx, CmvFilter{UpdatedBefore: fresh.Add(-24 * time.Hour)})
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "PSA 10", stale[0].Card.Grade)

	page, err := st.ListCmv(ctx, CmvFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "raw", page[0].Card.Grade)
	assert.False(t, page[0].Result.Available())
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mongo"})
	assert.ErrorContains(t, err, "unknown driver")
}

func TestOpen_SQLiteMigrates(t *testing.T) {
	st, err := Open(context.Background(), Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "c.db")})
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	_, err = st.PutCmv(context.Background(), flagg, model.UnavailableCmv(time.Now()))
	require.NoError(t, err)
}

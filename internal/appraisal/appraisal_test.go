package appraisal

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/card-cli/internal/grade"
	"github.com/sells-group/card-cli/internal/identity"
	"github.com/sells-group/card-cli/internal/lexicon"
	"github.com/sells-group/card-cli/internal/model"
	"github.com/sells-group/card-cli/internal/signal"
	"github.com/sells-group/card-cli/internal/store"
	"github.com/sells-group/card-cli/internal/valuation"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

// gradeComps serves three recent sales per grade label.
type gradeComps struct {
	prices map[string]float64
	calls  atomic.Int32
}

func (g *gradeComps) FetchComps(_ context.Context, q model.ListingQuery) ([]model.Comp, error) {
	g.calls.Add(1)
	p, ok := g.prices[q.Grade]
	if !ok {
		return nil, nil
	}
	out := make([]model.Comp, 3)
	for i := range out {
		out[i] = model.Comp{Title: q.Player, Price: p, Date: testNow.AddDate(0, 0, -i-1), Grade: q.Grade}
	}
	return out, nil
}

func newComps() *gradeComps {
	return &gradeComps{prices: map[string]float64{
		valuation.RawGrade: 100,
		"PSA 10":           500,
		"PSA 9":            200,
		"PSA 8":            150,
	}}
}

func newAppraiser(comps valuation.CompSource, cache store.Store) *Appraiser {
	lex := lexicon.Default()
	engine := valuation.NewEngine(comps, nil, lex, valuation.DefaultConfig()).WithNow(testNow)
	return New(lex, identity.NewResolver(lex).WithNow(testNow), engine, grade.NewModeler(), cache)
}

func flaggRequest() Request {
	return Request{
		Lines:  []model.OcrLine{{Text: "COOPER FLAGG"}},
		Vision: signal.DecodeVision([]byte(`{"grade": "PSA 9", "confidence": "high"}`)),
		Images: model.ImageStats{Count: 2, AvgBytes: 900_000, MinBytes: 800_000, MaxBytes: 1_000_000},
	}
}

func TestAppraise_EndToEnd(t *testing.T) {
	comps := newComps()
	rep := newAppraiser(comps, nil).Appraise(context.Background(), flaggRequest())

	assert.NotEmpty(t, rep.ID)
	assert.Equal(t, testNow, rep.GeneratedAt)
	require.NotNil(t, rep.Identity.Player)
	assert.Equal(t, "Cooper Flagg", *rep.Identity.Player)
	assert.False(t, rep.Cached)

	require.True(t, rep.Values.Raw.Available())
	assert.Equal(t, 100.0, *rep.Values.Raw.EstimatedCMV)
	psa10, ok := rep.Values.ByGrade("PSA 10")
	require.True(t, ok)
	assert.Equal(t, 500.0, *psa10.EstimatedCMV)
	require.NotNil(t, rep.Values.Graded[0].Premium)
	assert.Equal(t, 5.0, *rep.Values.Graded[0].Premium)

	assert.Equal(t, "PSA 9", rep.Grade.GradeRange)
	assert.Equal(t, grade.SourceModel, rep.Grade.Source)
	// exact-grade comps at every grade stand in for the grade confidence
	assert.Equal(t, model.ConfidenceHigh, rep.Grade.Probabilities.Confidence)

	psa := rep.Grade.Probabilities.PSA
	want := psa["10"]*500 + psa["9"]*200 + psa["8"]*150 + psa["7_or_lower"]*100
	require.NotNil(t, rep.ExpectedValue)
	assert.InDelta(t, want, *rep.ExpectedValue, 0.01)
}

func TestAppraise_RequestGradeOverridesVision(t *testing.T) {
	req := flaggRequest()
	req.GradeRange = "PSA 8-9"
	req.GradeConfidence = model.ConfidenceLow

	rep := newAppraiser(newComps(), nil).Appraise(context.Background(), req)

	assert.Equal(t, "PSA 8-9", rep.Grade.GradeRange)
	assert.Equal(t, model.ConfidenceLow, rep.Grade.Probabilities.Confidence)
}

func TestAppraise_NoPlayerSkipsValuation(t *testing.T) {
	comps := newComps()
	rep := newAppraiser(comps, nil).Appraise(context.Background(), Request{})

	assert.Nil(t, rep.Identity.Player)
	assert.Zero(t, comps.calls.Load())
	assert.Equal(t, model.CmvUnavailable, rep.Values.Raw.CmvConfidence)
	require.Len(t, rep.Values.Graded, len(StandardGrades))
	for _, g := range rep.Values.Graded {
		assert.False(t, g.Result.Available(), g.Grade)
		assert.Nil(t, g.Premium)
	}
	assert.Nil(t, rep.ExpectedValue)
	assert.Equal(t, grade.SourceImageStats, rep.Grade.Source)
}

func TestAppraise_ServesFreshValuesFromCache(t *testing.T) {
	cache, err := store.NewSQLite(filepath.Join(t.TempDir(), "cards.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() }) //nolint:errcheck
	require.NoError(t, cache.Migrate(context.Background()))

	comps := newComps()
	a := newAppraiser(comps, cache)

	first := a.Appraise(context.Background(), flaggRequest())
	assert.False(t, first.Cached)
	calls := comps.calls.Load()
	require.Positive(t, calls)

	rows, err := cache.ListCmv(context.Background(), store.CmvFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 1+len(StandardGrades))

	second := a.Appraise(context.Background(), flaggRequest())
	assert.True(t, second.Cached)
	assert.Equal(t, calls, comps.calls.Load())
	require.NotNil(t, second.ExpectedValue)
	assert.InDelta(t, *first.ExpectedValue, *second.ExpectedValue, 1e-9)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCardFromIdentity(t *testing.T) {
	player, set, year := "Cooper Flagg", "Topps Chrome", 2025
	card, ok := CardFromIdentity(model.CardIdentity{Player: &player, SetName: &set, Year: &year}, "/99")
	require.True(t, ok)
	assert.Equal(t, model.CardRef{Player: player, Year: year, Set: set, Notes: "/99"}, card)

	_, ok = CardFromIdentity(model.CardIdentity{SetName: &set}, "")
	assert.False(t, ok)
}

func TestExpectedValue_RenormalizesOverAvailableBuckets(t *testing.T) {
	raw := model.NewCmvResult(100, model.CmvHigh, valuation.TierExactGrade, 3, testNow)
	psa9 := model.NewCmvResult(200, model.CmvHigh, valuation.TierExactGrade, 3, testNow)
	values := valuation.Combine(model.CardRef{Player: "Cooper Flagg"}, []string{"PSA 10", "PSA 9"},
		raw, []model.CmvResult{model.UnavailableCmv(testNow), psa9})

	ev := ExpectedValue(map[string]float64{"10": 0.5, "9": 0.25, "8": 0, "7_or_lower": 0.25}, values)

	require.NotNil(t, ev)
	assert.InDelta(t, 150.0, *ev, 1e-9)
}

func TestExpectedValue_NilWhenNothingValued(t *testing.T) {
	values := valuation.Combine(model.CardRef{}, StandardGrades, model.UnavailableCmv(testNow),
		[]model.CmvResult{model.UnavailableCmv(testNow), model.UnavailableCmv(testNow), model.UnavailableCmv(testNow)})

	assert.Nil(t, ExpectedValue(map[string]float64{"10": 0.4, "9": 0.3, "8": 0.2, "7_or_lower": 0.1}, values))
}

func TestExpectedValue_Deterministic(t *testing.T) {
	values := valuation.Combine(model.CardRef{Player: "Cooper Flagg"}, StandardGrades,
		model.NewCmvResult(33.33, model.CmvHigh, valuation.TierExactGrade, 3, testNow),
		[]model.CmvResult{
			model.NewCmvResult(1234.57, model.CmvHigh, valuation.TierExactGrade, 3, testNow),
			model.NewCmvResult(456.79, model.CmvHigh, valuation.TierExactGrade, 3, testNow),
			model.NewCmvResult(123.45, model.CmvHigh, valuation.TierExactGrade, 3, testNow),
		})
	psa := map[string]float64{"10": 0.1111, "9": 0.3333, "8": 0.3333, "7_or_lower": 0.2223}

	first := ExpectedValue(psa, values)
	require.NotNil(t, first)
	for range 50 {
		assert.Equal(t, *first, *ExpectedValue(psa, values))
	}
}

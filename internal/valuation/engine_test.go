package valuation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/card-cli/internal/lexicon"
	"github.com/sells-group/card-cli/internal/model"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type mockComps struct {
	mock.Mock
}

func (m *mockComps) FetchComps(ctx context.Context, q model.ListingQuery) ([]model.Comp, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Comp), args.Error(1)
}

type mockForSale struct {
	mock.Mock
}

func (m *mockForSale) FetchForSale(ctx context.Context, q model.ListingQuery) (*model.ForSaleSummary, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ForSaleSummary), args.Error(1)
}

func grade(g string) any {
	return mock.MatchedBy(func(q model.ListingQuery) bool { return q.Grade == g })
}

func comps(daysAgo int, ps ...float64) []model.Comp {
	out := make([]model.Comp, len(ps))
	for i, p := range ps {
		out[i] = model.Comp{Title: "comp", Price: p, Date: testNow.AddDate(0, 0, -daysAgo)}
	}
	return out
}

func newEngine(c CompSource, f ForSaleSource) *Engine {
	return NewEngine(c, f, lexicon.Default(), DefaultConfig()).WithNow(testNow)
}

var card = model.CardRef{Player: "Victor Wembanyama", Year: 2023, Set: "Prizm", Grade: "PSA 10"}

func TestEngine_TierOrder(t *testing.T) {
	e := newEngine(nil, nil)
	assert.Equal(t, []string{TierExactGrade, TierGradeAdjacent, TierProxy, TierStaleExact, TierActiveListings}, e.Tiers())
}

func TestValue_ExactGradeHigh(t *testing.T) {
	m := &mockComps{}
	m.On("FetchComps", mock.Anything, grade("PSA 10")).Return(append(comps(5, 100, 120), comps(80, 110)...), nil)

	r := newEngine(m, nil).Value(context.Background(), card)

	require.True(t, r.Available())
	assert.Equal(t, 110.0, *r.EstimatedCMV)
	assert.Equal(t, *r.EstimatedCMV, *r.EstCMV)
	assert.Equal(t, model.CmvHigh, r.CmvConfidence)
	assert.Equal(t, TierExactGrade, r.Tier)
	assert.Equal(t, testNow, *r.CmvLastUpdated)
	m.AssertNumberOfCalls(t, "FetchComps", 1)
}

func TestValue_ExactGradeEvenMedianRounded(t *testing.T) {
	m := &mockComps{}
	m.On("FetchComps", mock.Anything, grade("PSA 10")).Return(comps(1, 10.005, 10.01, 20.333, 30), nil)

	r := newEngine(m, nil).Value(context.Background(), card)

	require.True(t, r.Available())
	assert.Equal(t, 15.17, *r.EstimatedCMV)
}

func TestValue_GradeAdjacent(t *testing.T) {
	m := &mockComps{}
	m.On("FetchComps", mock.Anything, grade("PSA 9")).Return(comps(3, 100), nil)
	m.On("FetchComps", mock.Anything, grade("PSA 8")).Return(comps(3, 80), nil)
	m.On("FetchComps", mock.Anything, grade("PSA 8.5")).Return(comps(3, 90), nil)
	m.On("FetchComps", mock.Anything, grade("PSA 10")).Return(comps(3, 150), nil)

	r := newEngine(m, nil).Value(context.Background(), card.WithGrade("PSA 9"))

	require.True(t, r.Available())
	// Adjusted: 88 (w .5), 94.5 (w .67), 135 (w .5). The lone exact comp
	// does not count.
	assert.Equal(t, 94.5, *r.EstimatedCMV)
	assert.Equal(t, model.CmvMedium, r.CmvConfidence)
	assert.Equal(t, TierGradeAdjacent, r.Tier)
	assert.Equal(t, 3, r.CompCount)
	m.AssertNumberOfCalls(t, "FetchComps", 4)
}

func TestValue_GradeAdjacentFetchFailureIsZeroComps(t *testing.T) {
	m := &mockComps{}
	m.On("FetchComps", mock.Anything, grade("PSA 9")).Return(comps(3, 100), nil)
	m.On("FetchComps", mock.Anything, grade("PSA 8")).Return(comps(3, 80, 80), nil)
	m.On("FetchComps", mock.Anything, grade("PSA 8.5")).Return(comps(3, 90), nil)
	m.On("FetchComps", mock.Anything, grade("PSA 10")).Return(nil, errors.New("upstream 503"))

	r := newEngine(m, nil).Value(context.Background(), card.WithGrade("PSA 9"))

	require.True(t, r.Available())
	assert.Equal(t, 88.0, *r.EstimatedCMV)
	assert.Equal(t, TierGradeAdjacent, r.Tier)
	assert.Equal(t, 3, r.CompCount)
}

func TestValue_GradeAdjacentIgnoresExactComps(t *testing.T) {
	m := &mockComps{}
	m.On("FetchComps", mock.Anything, grade("PSA 10")).Return(comps(5, 100, 100), nil)
	m.On("FetchComps", mock.Anything, grade("PSA 9")).Return(comps(5, 50), nil)
	m.On("FetchComps", mock.Anything, mock.Anything).Return(nil, nil)

	r := newEngine(m, nil).Value(context.Background(), card)

	require.True(t, r.Available())
	assert.Equal(t, TierStaleExact, r.Tier)
	assert.Equal(t, model.CmvLow, r.CmvConfidence)
	assert.Equal(t, 100.0, *r.EstimatedCMV)
	assert.Equal(t, 2, r.CompCount)
}

func TestValue_ProxyWithRarity(t *testing.T) {
	m := &mockComps{}
	m.On("FetchComps", mock.Anything, grade("")).Return(comps(400, 10, 20, 30), nil)
	m.On("FetchComps", mock.Anything, mock.Anything).Return(nil, nil)

	raw := model.CardRef{Player: "Cooper Flagg", Set: "Bowman Chrome", Notes: "gold refractor numbered /25"}
	r := newEngine(m, nil).Value(context.Background(), raw)

	require.True(t, r.Available())
	assert.Equal(t, 26.0, *r.EstimatedCMV)
	assert.Equal(t, model.CmvLow, r.CmvConfidence)
	assert.Equal(t, TierProxy, r.Tier)
	m.AssertCalled(t, "FetchComps", mock.Anything, grade(RawGrade))
}

func TestValue_StaleExact(t *testing.T) {
	m := &mockComps{}
	m.On("FetchComps", mock.Anything, grade("PSA 10")).Return(append(comps(200, 50, 70), comps(10, 0)...), nil)
	m.On("FetchComps", mock.Anything, mock.Anything).Return(nil, nil)

	r := newEngine(m, nil).Value(context.Background(), card)

	require.True(t, r.Available())
	assert.Equal(t, 60.0, *r.EstimatedCMV)
	assert.Equal(t, model.CmvLow, r.CmvConfidence)
	assert.Equal(t, TierStaleExact, r.Tier)
	assert.Equal(t, 2, r.CompCount)
}

func TestValue_ActiveListings(t *testing.T) {
	lo, hi, ask := 40.0, 61.0, 45.0

	tests := []struct {
		name string
		sum  *model.ForSaleSummary
		want float64
	}{
		{"sale range midpoint", &model.ForSaleSummary{Count: 4, MedianAsk: &ask, EstimatedSaleLow: &lo, EstimatedSaleHigh: &hi}, 50.5},
		{"median ask", &model.ForSaleSummary{Count: 2, MedianAsk: &ask}, 45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockComps{}
			m.On("FetchComps", mock.Anything, mock.Anything).Return(nil, nil)
			f := &mockForSale{}
			f.On("FetchForSale", mock.Anything, grade("PSA 10")).Return(tt.sum, nil)

			r := newEngine(m, f).Value(context.Background(), card)

			require.True(t, r.Available())
			assert.Equal(t, tt.want, *r.EstimatedCMV)
			assert.Equal(t, model.CmvLow, r.CmvConfidence)
			assert.Equal(t, TierActiveListings, r.Tier)
		})
	}
}

func TestValue_Unavailable(t *testing.T) {
	m := &mockComps{}
	m.On("FetchComps", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))
	f := &mockForSale{}
	f.On("FetchForSale", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	r := newEngine(m, f).Value(context.Background(), card)

	assert.False(t, r.Available())
	assert.Nil(t, r.EstimatedCMV)
	assert.Nil(t, r.EstCMV)
	assert.Equal(t, model.CmvUnavailable, r.CmvConfidence)
	require.NotNil(t, r.CmvLastUpdated)
	assert.Equal(t, testNow, *r.CmvLastUpdated)
}

func TestValue_NoSources(t *testing.T) {
	r := newEngine(nil, nil).Value(context.Background(), card)
	assert.Equal(t, model.CmvUnavailable, r.CmvConfidence)
}

func TestIsStale(t *testing.T) {
	fresh := model.NewCmvResult(10, model.CmvHigh, TierExactGrade, 3, testNow.Add(-6*24*time.Hour))
	old := model.NewCmvResult(10, model.CmvHigh, TierExactGrade, 3, testNow.Add(-8*24*time.Hour))
	edge := model.NewCmvResult(10, model.CmvHigh, TierExactGrade, 3, testNow.Add(-DefaultStaleAfter))
	unavailable := model.UnavailableCmv(testNow)
	unstamped := fresh
	unstamped.CmvLastUpdated = nil

	assert.False(t, IsStale(fresh, testNow))
	assert.False(t, IsStale(edge, testNow))
	assert.True(t, IsStale(old, testNow))
	assert.True(t, IsStale(unavailable, testNow))
	assert.True(t, IsStale(unstamped, testNow))
	assert.True(t, IsStaleAfter(fresh, testNow, 24*time.Hour))
}

// fakeComps serves comps by grade label and is safe for concurrent use.
type fakeComps struct {
	mu      sync.Mutex
	byGrade map[string][]model.Comp
	calls   []string
}

func (f *fakeComps) FetchComps(_ context.Context, q model.ListingQuery) ([]model.Comp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, q.Grade)
	return f.byGrade[q.Grade], nil
}

func TestValueGrades_Premiums(t *testing.T) {
	src := &fakeComps{byGrade: map[string][]model.Comp{
		RawGrade: comps(2, 10, 10, 10),
		"PSA 10": comps(2, 50, 50, 50),
	}}

	gv := newEngine(src, nil).ValueGrades(context.Background(), card.WithGrade(""), []string{"PSA 10", "PSA 9", "PSA 7"})

	require.True(t, gv.Raw.Available())
	assert.Equal(t, 10.0, *gv.Raw.EstimatedCMV)
	require.Len(t, gv.Graded, 3)

	psa10, ok := gv.ByGrade("PSA 10")
	require.True(t, ok)
	assert.Equal(t, 50.0, *psa10.EstimatedCMV)
	require.NotNil(t, gv.Graded[0].Premium)
	assert.Equal(t, 5.0, *gv.Graded[0].Premium)

	// PSA 9 comes from PSA 10 comps adjusted down 10%.
	assert.Equal(t, 45.0, *gv.Graded[1].Result.EstimatedCMV)
	assert.Equal(t, model.CmvMedium, gv.Graded[1].Result.CmvConfidence)
	assert.Equal(t, 4.5, *gv.Graded[1].Premium)

	assert.False(t, gv.Graded[2].Result.Available())
	assert.Nil(t, gv.Graded[2].Premium)

	_, ok = gv.ByGrade("BGS 9.5")
	assert.False(t, ok)
}

func TestStats(t *testing.T) {
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 2.0, Median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))

	assert.Equal(t, 2.0, weightedMedian([]weighted{{3, 1}, {1, 1}, {2, 1}}))
	assert.Equal(t, 10.0, weightedMedian([]weighted{{1, 0.1}, {10, 5}}))
	assert.Equal(t, 12.35, Round2(12.345000001))
}

func TestRarityMultiplier(t *testing.T) {
	tests := []struct {
		notes string
		want  float64
	}{
		{"1/1 superfractor", 2.0},
		{"numbered /1", 2.0},
		{"gold /10", 1.5},
		{"#'d 12/25", 1.3},
		{"/50", 1.2},
		{"/99", 1.1},
		{"/150", 1.05},
		{"/199", 1.05},
		{"/299", 1.0},
		{"base", 1.0},
		{"", 1.0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RarityMultiplier(tt.notes), tt.notes)
	}
}

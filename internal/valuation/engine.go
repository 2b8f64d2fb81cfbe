// Package valuation estimates a card's current market value (CMV) through
// an ordered chain of fallback tiers. The first tier that produces a value
// wins; when none does the result is "unavailable".
package valuation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/card-cli/internal/lexicon"
	"github.com/sells-group/card-cli/internal/model"
)

// CompSource returns completed sales for a query.
type CompSource interface {
	FetchComps(ctx context.Context, q model.ListingQuery) ([]model.Comp, error)
}

// ForSaleSource summarizes active listings for a query.
type ForSaleSource interface {
	FetchForSale(ctx context.Context, q model.ListingQuery) (*model.ForSaleSummary, error)
}

// Tier names, in evaluation order.
const (
	TierExactGrade     = "exact_grade"
	TierGradeAdjacent  = "grade_adjacent"
	TierProxy          = "proxy"
	TierStaleExact     = "stale_exact"
	TierActiveListings = "active_listings"
)

// RawGrade is the listings grade label for ungraded cards.
const RawGrade = "raw"

// Config holds the valuation constants.
type Config struct {
	RecentWindow   time.Duration
	MinComps       int
	AdjacentStep   float64
	AdjustPerPoint float64
	StaleAfter     time.Duration
}

// DefaultConfig returns the standard valuation constants.
func DefaultConfig() Config {
	return Config{
		RecentWindow:   90 * 24 * time.Hour,
		MinComps:       3,
		AdjacentStep:   1,
		AdjustPerPoint: 0.1,
		StaleAfter:     DefaultStaleAfter,
	}
}

// Tier is one step of the fallback chain.
type Tier struct {
	Name string
	Eval func(ctx context.Context, ev *evaluation) (tierValue, bool)
}

type tierValue struct {
	value float64
	conf  model.CmvConfidence
	comps int
}

// evaluation is the per-call state shared by the tiers of one Value call.
type evaluation struct {
	card model.CardRef
	now  time.Time

	exactFetched bool
	exactComps   []model.Comp
}

// Engine runs the tier chain. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	comps   CompSource
	forSale ForSaleSource
	lex     *lexicon.Lexicon
	cfg     Config
	clock   func() time.Time
	tiers   []Tier
}

// NewEngine creates an engine. forSale may be nil, which disables the
// active-listings tier.
func NewEngine(comps CompSource, forSale ForSaleSource, lex *lexicon.Lexicon, cfg Config) *Engine {
	e := &Engine{
		comps:   comps,
		forSale: forSale,
		lex:     lex,
		cfg:     cfg,
		clock:   time.Now,
	}
	e.tiers = []Tier{
		{Name: TierExactGrade, Eval: e.exactGrade},
		{Name: TierGradeAdjacent, Eval: e.gradeAdjacent},
		{Name: TierProxy, Eval: e.proxy},
		{Name: TierStaleExact, Eval: e.staleExact},
		{Name: TierActiveListings, Eval: e.activeListings},
	}
	return e
}

// WithNow fixes the clock for testing.
func (e *Engine) WithNow(t time.Time) *Engine {
	e.clock = func() time.Time { return t }
	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Now returns the engine clock reading.
func (e *Engine) Now() time.Time { return e.clock() }

// Tiers returns the tier names in evaluation order.
func (e *Engine) Tiers() []string {
	names := make([]string, len(e.tiers))
	for i, t := range e.tiers {
		names[i] = t.Name
	}
	return names
}

// Value estimates the CMV of card. Collaborator failures never surface as
// errors: a failed fetch counts as zero comps and the chain moves on.
func (e *Engine) Value(ctx context.Context, card model.CardRef) model.CmvResult {
	ev := &evaluation{card: card, now: e.clock()}

	for _, t := range e.tiers {
		v, ok := t.Eval(ctx, ev)
		if !ok {
			zap.L().Debug("valuation: tier miss",
				zap.String("card", card.Key()),
				zap.String("tier", t.Name),
			)
			continue
		}
		res := model.NewCmvResult(Round2(v.value), v.conf, t.Name, v.comps, ev.now)
		zap.L().Info("valuation: cmv computed",
			zap.String("card", card.Key()),
			zap.String("tier", t.Name),
			zap.Float64("cmv", *res.EstimatedCMV),
			zap.String("confidence", string(v.conf)),
			zap.Int("comps", v.comps),
		)
		return res
	}

	zap.L().Info("valuation: cmv unavailable", zap.String("card", card.Key()))
	return model.UnavailableCmv(ev.now)
}

// IsStale reports whether a stored result must be recomputed under the
// default seven-day policy.
func IsStale(r model.CmvResult, now time.Time) bool {
	return IsStaleAfter(r, now, DefaultStaleAfter)
}

// DefaultStaleAfter is the age after which a CMV is recomputed.
const DefaultStaleAfter = 7 * 24 * time.Hour

// IsStaleAfter reports whether r has no timestamp, is unavailable, or is
// older than maxAge at now.
func IsStaleAfter(r model.CmvResult, now time.Time, maxAge time.Duration) bool {
	if r.CmvLastUpdated == nil || r.CmvConfidence == model.CmvUnavailable {
		return true
	}
	return now.Sub(*r.CmvLastUpdated) > maxAge
}

// fetch queries the comp source and logs failures as zero comps.
func (e *Engine) fetch(ctx context.Context, q model.ListingQuery) []model.Comp {
	if e.comps == nil {
		return nil
	}
	comps, err := e.comps.FetchComps(ctx, q)
	if err != nil {
		zap.L().Warn("valuation: comp fetch failed, treating as zero comps",
			zap.String("player", q.Player),
			zap.String("grade", q.Grade),
			zap.Error(err),
		)
		return nil
	}
	return comps
}

func (e *Engine) recent(comps []model.Comp, now time.Time) []model.Comp {
	cutoff := now.Add(-e.cfg.RecentWindow)
	var out []model.Comp
	for _, c := range comps {
		if c.Price <= 0 || c.Date.IsZero() {
			continue
		}
		if !c.Date.Before(cutoff) && !c.Date.After(now) {
			out = append(out, c)
		}
	}
	return out
}

func logForSaleFailure(card model.CardRef, err error) {
	zap.L().Warn("valuation: for-sale fetch failed",
		zap.String("card", card.Key()),
		zap.Error(err),
	)
}

func prices(comps []model.Comp) []float64 {
	out := make([]float64, 0, len(comps))
	for _, c := range comps {
		if c.Price > 0 {
			out = append(out, c.Price)
		}
	}
	return out
}

func exactGradeLabel(card model.CardRef) string {
	if card.Grade == "" {
		return RawGrade
	}
	return card.Grade
}

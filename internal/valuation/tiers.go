package valuation

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/sells-group/card-cli/internal/lexicon"
	"github.com/sells-group/card-cli/internal/model"
)

// exactComps fetches the card's exact-grade comps once per evaluation; the
// stale-exact tier reuses them.
func (e *Engine) exactComps(ctx context.Context, ev *evaluation) []model.Comp {
	if !ev.exactFetched {
		ev.exactComps = e.fetch(ctx, model.QueryFor(ev.card, exactGradeLabel(ev.card)))
		ev.exactFetched = true
	}
	return ev.exactComps
}

func (e *Engine) exactGrade(ctx context.Context, ev *evaluation) (tierValue, bool) {
	recent := prices(e.recent(e.exactComps(ctx, ev), ev.now))
	if len(recent) < e.cfg.MinComps {
		return tierValue{}, false
	}
	return tierValue{value: Median(recent), conf: model.CmvHigh, comps: len(recent)}, true
}

// gradeAdjacent prices the card from neighbouring grades on the grading
// scale. Each comp is adjusted by AdjustPerPoint per grade point toward the
// target and weighted by 1/(1+|Δ|). Only the adjacent grades' own comps
// count toward MinComps.
func (e *Engine) gradeAdjacent(ctx context.Context, ev *evaluation) (tierValue, bool) {
	target, ok := lexicon.ParseGrade(ev.card.Grade)
	if !ok || e.lex == nil {
		return tierValue{}, false
	}
	adjacent := e.lex.AdjacentGrades(target, e.cfg.AdjacentStep)
	if len(adjacent) == 0 {
		return tierValue{}, false
	}

	// One slot per adjacent grade; failures leave the slot empty.
	results := make([][]model.Comp, len(adjacent))
	g, gctx := errgroup.WithContext(ctx)
	for i, adj := range adjacent {
		g.Go(func() error {
			results[i] = e.recent(e.fetch(gctx, model.QueryFor(ev.card, adj.String())), ev.now)
			return nil
		})
	}
	_ = g.Wait()

	var ws []weighted
	for i, adj := range adjacent {
		delta := target.Value - adj.Value
		for _, c := range results[i] {
			if c.Price <= 0 {
				continue
			}
			ws = append(ws, weighted{
				price:  c.Price * (1 + e.cfg.AdjustPerPoint*delta),
				weight: 1 / (1 + math.Abs(delta)),
			})
		}
	}
	if len(ws) < e.cfg.MinComps {
		return tierValue{}, false
	}
	return tierValue{value: weightedMedian(ws), conf: model.CmvMedium, comps: len(ws)}, true
}

// proxy ignores grade and date, scaling the median by the card's rarity.
func (e *Engine) proxy(ctx context.Context, ev *evaluation) (tierValue, bool) {
	ps := prices(e.fetch(ctx, model.QueryFor(ev.card, "")))
	if len(ps) < e.cfg.MinComps {
		return tierValue{}, false
	}
	return tierValue{
		value: Median(ps) * RarityMultiplier(ev.card.Notes),
		conf:  model.CmvLow,
		comps: len(ps),
	}, true
}

// staleExact falls back to every exact-grade comp regardless of age.
func (e *Engine) staleExact(ctx context.Context, ev *evaluation) (tierValue, bool) {
	ps := prices(e.exactComps(ctx, ev))
	if len(ps) == 0 {
		return tierValue{}, false
	}
	return tierValue{value: Median(ps), conf: model.CmvLow, comps: len(ps)}, true
}

// activeListings uses the midpoint of the estimated sale range, else the
// median asking price, of current listings.
func (e *Engine) activeListings(ctx context.Context, ev *evaluation) (tierValue, bool) {
	if e.forSale == nil {
		return tierValue{}, false
	}
	sum, err := e.forSale.FetchForSale(ctx, model.QueryFor(ev.card, exactGradeLabel(ev.card)))
	if err != nil {
		logForSaleFailure(ev.card, err)
		return tierValue{}, false
	}
	if sum == nil {
		return tierValue{}, false
	}
	if sum.EstimatedSaleLow != nil && sum.EstimatedSaleHigh != nil {
		mid := (*sum.EstimatedSaleLow + *sum.EstimatedSaleHigh) / 2
		if mid > 0 {
			return tierValue{value: mid, conf: model.CmvLow, comps: sum.Count}, true
		}
	}
	if sum.MedianAsk != nil && *sum.MedianAsk > 0 {
		return tierValue{value: *sum.MedianAsk, conf: model.CmvLow, comps: sum.Count}, true
	}
	return tierValue{}, false
}

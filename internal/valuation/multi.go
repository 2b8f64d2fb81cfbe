package valuation

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sells-group/card-cli/internal/model"
)

// GradeValue is the valuation of one grade with its premium over raw.
type GradeValue struct {
	Grade   string          `json:"grade"`
	Result  model.CmvResult `json:"result"`
	Premium *float64        `json:"premium,omitempty"` // graded CMV / raw CMV
}

// GradeValues is a raw valuation plus one valuation per requested grade.
type GradeValues struct {
	Card   model.CardRef   `json:"card"`
	Raw    model.CmvResult `json:"raw"`
	Graded []GradeValue    `json:"graded"`
}

// ByGrade returns the result for a grade label.
func (gv GradeValues) ByGrade(grade string) (model.CmvResult, bool) {
	for _, g := range gv.Graded {
		if g.Grade == grade {
			return g.Result, true
		}
	}
	return model.CmvResult{}, false
}

// ValueGrades values card raw and at each grade concurrently, joins once,
// then derives premiums. Every job writes only its own slot.
func (e *Engine) ValueGrades(ctx context.Context, card model.CardRef, grades []string) GradeValues {
	raw := card.WithGrade("")
	results := make([]model.CmvResult, len(grades)+1)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		results[0] = e.Value(gctx, raw)
		return nil
	})
	for i, grade := range grades {
		g.Go(func() error {
			results[i+1] = e.Value(gctx, card.WithGrade(grade))
			return nil
		})
	}
	_ = g.Wait()

	return Combine(raw, grades, results[0], results[1:])
}

// Combine assembles GradeValues from a raw result and one result per grade,
// deriving premiums over raw. card is stored with its grade cleared.
func Combine(card model.CardRef, grades []string, raw model.CmvResult, graded []model.CmvResult) GradeValues {
	out := GradeValues{Card: card.WithGrade(""), Raw: raw, Graded: make([]GradeValue, len(grades))}
	for i, grade := range grades {
		gv := GradeValue{Grade: grade, Result: graded[i]}
		if gv.Result.Available() && raw.Available() && *raw.EstimatedCMV > 0 {
			p := Round2(*gv.Result.EstimatedCMV / *raw.EstimatedCMV)
			gv.Premium = &p
		}
		out.Graded[i] = gv
	}
	return out
}

// Package appraisal runs a card end to end: identity, market value at the
// standard grades, grade distribution and expected graded value.
package appraisal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/card-cli/internal/grade"
	"github.com/sells-group/card-cli/internal/identity"
	"github.com/sells-group/card-cli/internal/lexicon"
	"github.com/sells-group/card-cli/internal/model"
	"github.com/sells-group/card-cli/internal/signal"
	"github.com/sells-group/card-cli/internal/store"
	"github.com/sells-group/card-cli/internal/valuation"
)

// StandardGrades are valued alongside raw for every appraisal.
var StandardGrades = []string{"PSA 10", "PSA 9", "PSA 8"}

// psaBucketGrade maps PSA probability buckets to the valuation they weight.
// Slabs at 7 or lower trade near raw.
var psaBucketGrade = map[string]string{
	"10":         "PSA 10",
	"9":          "PSA 9",
	"8":          "PSA 8",
	"7_or_lower": "",
}

// Request is everything known about one card.
type Request struct {
	Lines    []model.OcrLine      `json:"lines"`
	Vision   model.VisionOutcome  `json:"-"`
	Evidence *model.GradeEvidence `json:"evidence,omitempty"`

	// GradeRange overrides the vision grade label when set.
	GradeRange      string           `json:"grade_range,omitempty"`
	GradeConfidence model.Confidence `json:"grade_confidence,omitempty"`
	Images          model.ImageStats `json:"images"`
	Notes           string           `json:"notes,omitempty"`
}

// Report is the appraisal output.
type Report struct {
	ID            string                `json:"id"`
	Identity      model.CardIdentity    `json:"identity"`
	Values        valuation.GradeValues `json:"values"`
	Grade         model.GradeEstimate   `json:"grade"`
	ExpectedValue *float64              `json:"expected_value"`
	Cached        bool                  `json:"cached"`
	GeneratedAt   time.Time             `json:"generated_at"`
}

// Appraiser wires the pipeline stages together.
type Appraiser struct {
	lex      *lexicon.Lexicon
	resolver *identity.Resolver
	engine   *valuation.Engine
	modeler  grade.Modeler
	cache    store.Store
}

// New creates an Appraiser. cache may be nil.
func New(lex *lexicon.Lexicon, resolver *identity.Resolver, engine *valuation.Engine, modeler grade.Modeler, cache store.Store) *Appraiser {
	return &Appraiser{lex: lex, resolver: resolver, engine: engine, modeler: modeler, cache: cache}
}

// Appraise runs one card. A card whose player cannot be resolved is not
// valued; its CMVs come back unavailable.
func (a *Appraiser) Appraise(ctx context.Context, req Request) Report {
	now := a.engine.Now()
	ocr := signal.BuildOCR(req.Lines, a.lex, now)
	ident := a.resolver.Resolve(ocr, req.Vision)

	rep := Report{ID: uuid.NewString(), Identity: ident, GeneratedAt: now}

	card, ok := CardFromIdentity(ident, req.Notes)
	if ok {
		rep.Values, rep.Cached = a.values(ctx, card)
	} else {
		zap.L().Info("appraisal: no player resolved, skipping valuation", zap.String("id", rep.ID))
		graded := make([]model.CmvResult, len(StandardGrades))
		for i := range graded {
			graded[i] = model.UnavailableCmv(now)
		}
		rep.Values = valuation.Combine(card, StandardGrades, model.UnavailableCmv(now), graded)
	}

	rep.Grade = a.modeler.Estimate(a.gradeInput(req, rep.Values))
	rep.ExpectedValue = ExpectedValue(rep.Grade.Probabilities.PSA, rep.Values)

	zap.L().Info("appraisal: complete",
		zap.String("id", rep.ID),
		zap.String("identity", ident.EvidenceSummary),
		zap.String("grade_range", rep.Grade.GradeRange),
		zap.Bool("cached", rep.Cached),
	)
	return rep
}

// CardFromIdentity builds the valuation key. ok is false without a player.
func CardFromIdentity(id model.CardIdentity, notes string) (model.CardRef, bool) {
	card := model.CardRef{Notes: notes}
	if id.Year != nil {
		card.Year = *id.Year
	}
	if id.SetName != nil {
		card.Set = *id.SetName
	}
	if id.Parallel != nil {
		card.ParallelType = *id.Parallel
	}
	if id.CardNumber != nil {
		card.CardNumber = *id.CardNumber
	}
	if id.Player == nil || *id.Player == "" {
		return card, false
	}
	card.Player = *id.Player
	return card, true
}

// values serves all grades from the cache when every entry is fresh,
// otherwise revalues and writes back.
func (a *Appraiser) values(ctx context.Context, card model.CardRef) (valuation.GradeValues, bool) {
	if cached, ok := a.cached(ctx, card); ok {
		return cached, true
	}
	gv := a.engine.ValueGrades(ctx, card, StandardGrades)
	if a.cache != nil {
		a.put(ctx, gv.Card, gv.Raw)
		for _, g := range gv.Graded {
			a.put(ctx, gv.Card.WithGrade(g.Grade), g.Result)
		}
	}
	return gv, false
}

func (a *Appraiser) cached(ctx context.Context, card model.CardRef) (valuation.GradeValues, bool) {
	if a.cache == nil {
		return valuation.GradeValues{}, false
	}
	now, maxAge := a.engine.Now(), a.engine.Config().StaleAfter
	lookup := func(c model.CardRef) (model.CmvResult, bool) {
		row, err := a.cache.GetCmv(ctx, c)
		if err != nil {
			zap.L().Warn("appraisal: cache read failed", zap.String("card", c.Key()), zap.Error(err))
			return model.CmvResult{}, false
		}
		if row == nil || valuation.IsStaleAfter(row.Result, now, maxAge) {
			return model.CmvResult{}, false
		}
		return row.Result, true
	}

	raw, ok := lookup(card.WithGrade(""))
	if !ok {
		return valuation.GradeValues{}, false
	}
	graded := make([]model.CmvResult, len(StandardGrades))
	for i, g := range StandardGrades {
		if graded[i], ok = lookup(card.WithGrade(g)); !ok {
			return valuation.GradeValues{}, false
		}
	}
	return valuation.Combine(card, StandardGrades, raw, graded), true
}

func (a *Appraiser) put(ctx context.Context, card model.CardRef, res model.CmvResult) {
	if _, err := a.cache.PutCmv(ctx, card, res); err != nil {
		zap.L().Warn("appraisal: cache write failed", zap.String("card", card.Key()), zap.Error(err))
	}
}

// gradeInput picks the grade label and confidence. Without an explicit
// confidence, the best CMV confidence among grades valued on the exact-grade
// tier stands in.
func (a *Appraiser) gradeInput(req Request, values valuation.GradeValues) grade.Input {
	in := grade.Input{
		GradeRange: req.GradeRange,
		Confidence: req.GradeConfidence,
		Evidence:   req.Evidence,
		Images:     req.Images,
	}
	if in.GradeRange == "" && req.Vision.Signals != nil && req.Vision.Signals.Grade != nil {
		in.GradeRange = *req.Vision.Signals.Grade
	}
	if in.Confidence == model.ConfidenceUnknown {
		for _, g := range values.Graded {
			if g.Result.Tier == valuation.TierExactGrade {
				in.Confidence = model.MaxConfidence(in.Confidence, g.Result.CmvConfidence.Tier())
			}
		}
	}
	return in
}

// ExpectedValue is Σ p·CMV over PSA buckets with an available CMV,
// renormalized over those buckets. Buckets are summed in PSAKeys order.
// Nil when no bucket is valued.
func ExpectedValue(psa map[string]float64, values valuation.GradeValues) *float64 {
	var sum, mass float64
	for _, bucket := range grade.PSAKeys {
		p := psa[bucket]
		g, ok := psaBucketGrade[bucket]
		if !ok || p <= 0 {
			continue
		}
		res := values.Raw
		if g != "" {
			if res, ok = values.ByGrade(g); !ok {
				continue
			}
		}
		if !res.Available() {
			continue
		}
		sum += p * *res.EstimatedCMV
		mass += p
	}
	if mass == 0 {
		return nil
	}
	ev := valuation.Round2(sum / mass)
	return &ev
}

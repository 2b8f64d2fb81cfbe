// Package identity fuses OCR and vision signals into a single card identity
// with per-field confidence, provenance and warnings.
package identity

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/card-cli/internal/lexicon"
	"github.com/sells-group/card-cli/internal/model"
)

// CatalogLookup returns the production-year entry for a set name.
type CatalogLookup interface {
	Lookup(setName string) (lexicon.CatalogEntry, bool)
}

// CatalogFunc adapts a function to CatalogLookup.
type CatalogFunc func(setName string) (lexicon.CatalogEntry, bool)

// Lookup calls f.
func (f CatalogFunc) Lookup(setName string) (lexicon.CatalogEntry, bool) {
	return f(setName)
}

// Resolver builds CardIdentity values. It holds no per-request state and is
// safe for concurrent use.
type Resolver struct {
	lex     *lexicon.Lexicon
	catalog CatalogLookup
	clock   func() time.Time
}

// NewResolver creates a resolver backed by lex. The lexicon's own catalog
// table is used for cross-checks unless WithCatalog overrides it.
func NewResolver(lex *lexicon.Lexicon) *Resolver {
	return &Resolver{
		lex:     lex,
		catalog: CatalogFunc(lex.LookupCatalog),
		clock:   time.Now,
	}
}

// WithCatalog replaces the catalog collaborator.
func (r *Resolver) WithCatalog(c CatalogLookup) *Resolver {
	r.catalog = c
	return r
}

// WithNow fixes the clock for testing.
func (r *Resolver) WithNow(t time.Time) *Resolver {
	r.clock = func() time.Time { return t }
	return r
}

func (r *Resolver) now() time.Time {
	return r.clock()
}

// builder accumulates a CardIdentity during one Resolve call.
type builder struct {
	ident    model.CardIdentity
	conf     map[string]model.Confidence
	sources  map[string]model.Source
	warnings model.Warnings
}

func (b *builder) warn(w model.Warning) {
	b.warnings.Add(w)
}

func (b *builder) set(field string, src model.Source, conf model.Confidence) {
	b.sources[field] = src
	b.conf[field] = conf
}

// Resolve produces the identity for one request. It never fails: problems
// with the inputs surface as warnings and lowered confidence.
func (r *Resolver) Resolve(ocr model.OcrSignals, outcome model.VisionOutcome) model.CardIdentity {
	if outcome.Failed() {
		zap.L().Debug("identity: vision parse failed, identity degraded",
			zap.String("reason", outcome.Failure.Reason),
		)
		return degraded()
	}

	b := &builder{
		conf:    make(map[string]model.Confidence),
		sources: make(map[string]model.Source),
	}
	vision := outcome.Signals

	r.resolveYear(b, ocr, vision)
	r.resolvePlayer(b, ocr, vision)
	r.resolveFields(b, ocr, vision)
	r.validateParallel(b)
	r.crossCheckCatalog(b)

	overall := model.MinConfidence(
		b.conf[model.FieldPlayer],
		b.conf[model.FieldYear],
		b.conf[model.FieldSetName],
		b.conf[model.FieldBrand],
	).OrDefault(model.ConfidenceLow)

	id := b.ident
	id.Confidence = overall
	id.FieldConfidence = b.conf
	id.Sources = b.sources
	id.Warnings = b.warnings.List()
	id.EvidenceSummary = summarize(&id)

	zap.L().Debug("identity: resolved",
		zap.String("confidence", overall.String()),
		zap.Int("warnings", len(id.Warnings)),
		zap.String("lexicon_version", r.lex.Version),
	)
	return id
}

// degraded is the identity reported when the vision reply could not be
// decoded: every field null, confidence low.
func degraded() model.CardIdentity {
	var ws model.Warnings
	ws.Add(model.WarnParseError)
	id := model.CardIdentity{
		CardStock:       model.StockUnknown,
		Confidence:      model.ConfidenceLow,
		FieldConfidence: map[string]model.Confidence{},
		Sources:         map[string]model.Source{},
		Warnings:        ws.List(),
	}
	id.EvidenceSummary = summarize(&id)
	return id
}

// resolvePlayer prefers OCR when it is high confidence, when vision has no
// player, or when OCR is at least as confident. A vision-sourced player
// whose last name appears in none of the OCR name candidates is distrusted
// and dropped.
func (r *Resolver) resolvePlayer(b *builder, ocr model.OcrSignals, vision *model.VisionSignals) {
	visPlayer := vision.PrimaryPlayer()
	visConf := vision.FieldTier(model.FieldPlayer)
	ocrConf := ocr.PlayerConfidence.OrDefault(model.ConfidenceLow)

	if ocr.Player != nil && (ocrConf == model.ConfidenceHigh || visPlayer == nil || ocrConf >= visConf) {
		p := *ocr.Player
		b.ident.Player = &p
		b.set(model.FieldPlayer, model.SourceOCR, ocrConf)
		return
	}
	if visPlayer == nil {
		return
	}

	last := LastName(*visPlayer)
	if len(ocr.NameCandidates) > 0 && last != "" && !anyContains(ocr.NameCandidates, last) {
		b.warn(model.WarnIdentityConflict)
		return
	}
	p := strings.TrimSpace(*visPlayer)
	b.ident.Player = &p
	b.set(model.FieldPlayer, model.SourceVision, visConf)
}

// resolveFields arbitrates the remaining descriptive fields. The higher
// confidence wins; ties go to OCR for brand, set and card number.
func (r *Resolver) resolveFields(b *builder, ocr model.OcrSignals, vision *model.VisionSignals) {
	var v model.VisionSignals
	if vision != nil {
		v = *vision
	}
	tier := func(field string) model.Confidence { return vision.FieldTier(field) }
	ocrConf := func(c model.Confidence, present bool) model.Confidence {
		if !present {
			return model.ConfidenceUnknown
		}
		return c.OrDefault(model.ConfidenceMedium)
	}

	b.ident.Brand = pickField(b, model.FieldBrand,
		ocr.Brand, ocrConf(ocr.BrandConfidence, ocr.Brand != nil), v.Brand, tier(model.FieldBrand), true)
	b.ident.SetName = pickField(b, model.FieldSetName,
		ocr.SetName, ocrConf(ocr.SetConfidence, ocr.SetName != nil), v.SetName, tier(model.FieldSetName), true)
	b.ident.CardNumber = pickField(b, model.FieldCardNumber,
		ocr.CardNumber, ocrConf(model.ConfidenceMedium, ocr.CardNumber != nil), v.CardNumber, tier(model.FieldCardNumber), true)
	b.ident.Parallel = pickField(b, model.FieldParallel,
		ocr.Parallel, ocrConf(model.ConfidenceMedium, ocr.Parallel != nil), v.Parallel, tier(model.FieldParallel), false)
	b.ident.Rookie = pickField(b, model.FieldRookie,
		ocr.Rookie, ocrConf(model.ConfidenceMedium, ocr.Rookie != nil), v.Rookie, tier(model.FieldRookie), false)
	b.ident.Subset = pickField[string](b, model.FieldSubset, nil, model.ConfidenceUnknown, v.Subset, tier(model.FieldSubset), false)
	b.ident.Sport = pickField[string](b, model.FieldSport, nil, model.ConfidenceUnknown, v.Sport, tier(model.FieldSport), false)
	b.ident.League = pickField[string](b, model.FieldLeague, nil, model.ConfidenceUnknown, v.League, tier(model.FieldLeague), false)

	// A known set implies its manufacturer.
	if b.ident.Brand == nil && b.ident.SetName != nil {
		if brand, ok := r.lex.SetBrand(*b.ident.SetName); ok {
			b.ident.Brand = &brand
			b.set(model.FieldBrand, model.SourceCatalog, model.ConfidenceLow)
		}
	}

	b.ident.CardStock = model.StockUnknown
	if b.ident.SetName != nil {
		b.ident.CardStock = model.CardStock(r.lex.StockForSet(*b.ident.SetName))
	}
}

func pickField[T any](b *builder, field string, ocrVal *T, ocrConf model.Confidence, visVal *T, visConf model.Confidence, ocrWinsTies bool) *T {
	switch {
	case ocrVal == nil && visVal == nil:
		return nil
	case visVal == nil:
		b.set(field, model.SourceOCR, ocrConf)
		return ocrVal
	case ocrVal == nil:
		b.set(field, model.SourceVision, visConf)
		return visVal
	}
	if ocrConf > visConf || (ocrConf == visConf && ocrWinsTies) {
		b.set(field, model.SourceOCR, ocrConf)
		return ocrVal
	}
	b.set(field, model.SourceVision, visConf)
	return visVal
}

// validateParallel drops chromium-only finishes reported on paper stock.
func (r *Resolver) validateParallel(b *builder) {
	if b.ident.Parallel == nil || b.ident.CardStock != model.StockPaper {
		return
	}
	if r.lex.IsChromiumOnlyFinish(*b.ident.Parallel) {
		b.ident.Parallel = nil
		delete(b.conf, model.FieldParallel)
		delete(b.sources, model.FieldParallel)
		b.warn(model.WarnParallelInvalid)
	}
}

// crossCheckCatalog flags a year outside the set's production range. The
// year itself is left untouched.
func (r *Resolver) crossCheckCatalog(b *builder) {
	if r.catalog == nil || b.ident.SetName == nil || b.ident.Year == nil {
		return
	}
	entry, ok := r.catalog.Lookup(*b.ident.SetName)
	if !ok {
		return
	}
	from, to, ok := entry.YearRange(r.now())
	if !ok {
		return
	}
	if y := *b.ident.Year; y < from || y > to {
		b.warn(model.WarnCatalogMismatch)
	}
}

var nameSuffixes = map[string]struct{}{"jr": {}, "sr": {}, "ii": {}, "iii": {}, "iv": {}}

// LastName returns the normalized surname, skipping generational suffixes.
func LastName(name string) string {
	toks := lexicon.Tokens(name)
	for i := len(toks) - 1; i >= 0; i-- {
		if _, suffix := nameSuffixes[toks[i]]; !suffix {
			return toks[i]
		}
	}
	return ""
}

func anyContains(haystacks []string, needle string) bool {
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

var summaryFields = []string{
	model.FieldPlayer, model.FieldYear, model.FieldBrand, model.FieldSetName, model.FieldSubset,
	model.FieldCardNumber, model.FieldParallel, model.FieldRookie, model.FieldSport, model.FieldLeague,
}

func summarize(id *model.CardIdentity) string {
	var parts []string
	for _, f := range summaryFields {
		val, ok := fieldValue(id, f)
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s (%s, %s)", f, val, id.Sources[f], id.FieldConfidence[f]))
	}
	if len(parts) == 0 {
		parts = append(parts, "no fields resolved")
	}
	parts = append(parts, "stock="+string(id.CardStock))
	if len(id.Warnings) > 0 {
		ws := make([]string, len(id.Warnings))
		for i, w := range id.Warnings {
			ws[i] = string(w)
		}
		parts = append(parts, "warnings="+strings.Join(ws, ","))
	}
	return strings.Join(parts, "; ")
}

func fieldValue(id *model.CardIdentity, field string) (string, bool) {
	str := func(p *string) (string, bool) {
		if p == nil {
			return "", false
		}
		return *p, true
	}
	switch field {
	case model.FieldPlayer:
		return str(id.Player)
	case model.FieldYear:
		if id.Year == nil {
			return "", false
		}
		return fmt.Sprint(*id.Year), true
	case model.FieldBrand:
		return str(id.Brand)
	case model.FieldSetName:
		return str(id.SetName)
	case model.FieldSubset:
		return str(id.Subset)
	case model.FieldCardNumber:
		return str(id.CardNumber)
	case model.FieldParallel:
		return str(id.Parallel)
	case model.FieldRookie:
		if id.Rookie == nil {
			return "", false
		}
		return fmt.Sprint(*id.Rookie), true
	case model.FieldSport:
		return str(id.Sport)
	case model.FieldLeague:
		return str(id.League)
	}
	return "", false
}

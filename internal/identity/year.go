package identity

import (
	"github.com/sells-group/card-cli/internal/model"
	"github.com/sells-group/card-cli/internal/signal"
)

// AmbiguityMargin is the score gap at or below which the top two OCR year
// candidates are considered tied.
const AmbiguityMargin = 2

// Year score thresholds for a single surviving OCR candidate.
const (
	highYearScore   = 4
	mediumYearScore = 2
)

type yearVote struct {
	year      *int
	conf      model.Confidence
	ambiguous bool
	tied      []int
}

// ocrYear evaluates OCR year candidates, which arrive sorted by score.
func ocrYear(cands []model.YearCandidate, currentYear int) yearVote {
	var valid []model.YearCandidate
	for _, c := range cands {
		if signal.InRange(c.Year, currentYear) {
			valid = append(valid, c)
		}
	}
	if len(valid) == 0 {
		return yearVote{}
	}

	top := valid[0]
	if len(valid) > 1 && top.Score-valid[1].Score <= AmbiguityMargin {
		v := yearVote{ambiguous: true}
		for _, c := range valid {
			if top.Score-c.Score <= AmbiguityMargin {
				v.tied = append(v.tied, c.Year)
			}
		}
		return v
	}

	y := top.Year
	switch {
	case top.Score >= highYearScore:
		return yearVote{year: &y, conf: model.ConfidenceHigh}
	case top.Score >= mediumYearScore:
		return yearVote{year: &y, conf: model.ConfidenceMedium}
	default:
		return yearVote{year: &y, conf: model.ConfidenceLow}
	}
}

// resolveYear arbitrates the OCR and vision years.
func (r *Resolver) resolveYear(b *builder, ocr model.OcrSignals, vision *model.VisionSignals) {
	current := r.now().Year()
	o := ocrYear(ocr.YearCandidates, current)

	var visYear *int
	visConf := vision.FieldTier(model.FieldYear)
	if vision != nil && vision.Year != nil {
		if signal.InRange(*vision.Year, current) {
			y := *vision.Year
			visYear = &y
		} else {
			b.warn(model.WarnYearOutOfRange)
		}
	}

	switch {
	case o.ambiguous:
		b.warn(model.WarnYearAmbiguous)
		b.conf[model.FieldYear] = model.ConfidenceLow
		// A vision year that matches one of the tied candidates breaks the
		// tie, but only at low confidence.
		if visYear != nil && containsInt(o.tied, *visYear) {
			b.ident.Year = visYear
			b.set(model.FieldYear, model.SourceVision, model.ConfidenceLow)
			b.warn(model.WarnYearNeedsConfirmation)
		}

	case o.year != nil && visYear != nil:
		if *o.year == *visYear {
			conf := model.MaxConfidence(o.conf, visConf)
			src := model.SourceOCR
			if visConf > o.conf {
				src = model.SourceVision
			}
			b.ident.Year = o.year
			b.set(model.FieldYear, src, conf)
			return
		}
		if o.conf > model.ConfidenceLow || visConf > model.ConfidenceLow {
			b.warn(model.WarnYearAmbiguous)
			b.conf[model.FieldYear] = model.ConfidenceLow
			return
		}
		b.ident.Year = o.year
		b.set(model.FieldYear, model.SourceOCR, model.ConfidenceLow)
		b.warn(model.WarnYearNeedsConfirmation)

	case o.year != nil:
		b.ident.Year = o.year
		b.set(model.FieldYear, model.SourceOCR, o.conf)
		if o.conf == model.ConfidenceLow {
			b.warn(model.WarnYearNeedsConfirmation)
		}

	case visYear != nil:
		b.ident.Year = visYear
		b.set(model.FieldYear, model.SourceVision, visConf)
		if visConf == model.ConfidenceLow {
			b.warn(model.WarnYearNeedsConfirmation)
		}
	}
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// Package signal turns raw perception output into typed signal bundles:
// OCR lines become OcrSignals and vision payloads are strictly decoded into
// VisionSignals or a ParseFailure.
package signal

import (
	"regexp"
	"strings"
	"time"

	"github.com/sells-group/card-cli/internal/lexicon"
	"github.com/sells-group/card-cli/internal/model"
)

var (
	cardNumberRe = regexp.MustCompile(`(?i)(?:#|\bno\.\s*|\bcard\s+no\.?\s*)\s*([a-z]{0,4}-?\d{1,4}[a-z]?)\b`)
	rookieRe     = regexp.MustCompile(`(?i)\brookie\b|\brc\b`)
	alphaRe      = regexp.MustCompile(`^[a-z]+$`)
)

// BuildOCR builds OCR signals from extracted lines. now supplies the
// current year for range checks.
func BuildOCR(lines []model.OcrLine, lex *lexicon.Lexicon, now time.Time) model.OcrSignals {
	texts := make([]string, 0, len(lines))
	for _, l := range lines {
		if t := strings.TrimSpace(l.Text); t != "" {
			texts = append(texts, t)
		}
	}
	raw := strings.Join(texts, "\n")

	sig := model.OcrSignals{
		Lines:          lines,
		RawText:        raw,
		YearCandidates: YearCandidates(lines, lex, now.Year()),
	}

	if brand, ok := lex.MatchBrand(raw); ok {
		sig.Brand = &brand
		sig.BrandConfidence = model.ConfidenceMedium
		for _, l := range lines {
			if _, hit := lex.MatchBrand(l.Text); hit && legalRe.MatchString(l.Text) {
				sig.BrandConfidence = model.ConfidenceHigh
				break
			}
		}
	}

	if set, ok := lex.MatchSet(raw); ok {
		sig.SetName = &set
		sig.SetConfidence = model.ConfidenceMedium
		if sig.Brand == nil {
			if brand, ok := lex.SetBrand(set); ok {
				sig.Brand = &brand
				sig.BrandConfidence = model.ConfidenceLow
			}
		}
	}

	if p, ok := lex.MatchParallel(raw); ok {
		title := lexicon.TitleCase(p)
		sig.Parallel = &title
	}

	if m := cardNumberRe.FindStringSubmatch(raw); m != nil {
		num := strings.ToUpper(m[1])
		sig.CardNumber = &num
	}

	if rookieRe.MatchString(raw) {
		rookie := true
		sig.Rookie = &rookie
	}

	sig.NameCandidates = NameCandidates(lines, lex)
	if name, conf, ok := lex.LookupPlayer(raw); ok {
		sig.Player = &name
		sig.PlayerConfidence, _ = model.ParseConfidence(conf)
		sig.PlayerConfidence = sig.PlayerConfidence.OrDefault(model.ConfidenceMedium)
	} else if name, conf, ok := firstNameGram(lines, lex); ok {
		sig.Player = &name
		sig.PlayerConfidence = conf
	}
	return sig
}

// nameTokens returns the normalized tokens of a line and whether each one
// may be part of a person's name.
func nameTokens(text string, lex *lexicon.Lexicon) ([]string, []bool) {
	toks := lexicon.Tokens(text)
	ok := make([]bool, len(toks))
	for i, t := range toks {
		ok[i] = len(t) > 1 && alphaRe.MatchString(t) && !lex.IsStopword(t)
	}
	return toks, ok
}

// firstNameGram finds the first player-like n-gram. A line consisting of
// exactly a 2- or 3-word name yields medium confidence; a 2-gram embedded in
// a longer line yields low.
func firstNameGram(lines []model.OcrLine, lex *lexicon.Lexicon) (string, model.Confidence, bool) {
	for _, l := range lines {
		toks, ok := nameTokens(l.Text, lex)
		if n := len(toks); (n == 2 || n == 3) && allTrue(ok) {
			return lexicon.TitleCase(strings.Join(toks, " ")), model.ConfidenceMedium, true
		}
		for i := 0; i+1 < len(toks); i++ {
			if ok[i] && ok[i+1] {
				return lexicon.TitleCase(toks[i] + " " + toks[i+1]), model.ConfidenceLow, true
			}
		}
	}
	return "", model.ConfidenceUnknown, false
}

// NameCandidates lists every distinct 2-gram and 3-gram of name-like tokens
// in lines, lowercased, in order of appearance.
func NameCandidates(lines []model.OcrLine, lex *lexicon.Lexicon) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(s string) {
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, l := range lines {
		toks, ok := nameTokens(l.Text, lex)
		for i := 0; i+1 < len(toks); i++ {
			if !ok[i] || !ok[i+1] {
				continue
			}
			add(toks[i] + " " + toks[i+1])
			if i+2 < len(toks) && ok[i+2] {
				add(toks[i] + " " + toks[i+1] + " " + toks[i+2])
			}
		}
	}
	return out
}

func allTrue(bs []bool) bool {
	for _, b := range bs {
		if !b {
			return false
		}
	}
	return true
}

// Package search parses free-text card queries and listing titles into
// locked constraints.
package search

import (
	"regexp"
	"strings"

	"github.com/sells-group/card-cli/internal/lexicon"
	"github.com/sells-group/card-cli/internal/model"
)

var (
	yearRe       = regexp.MustCompile(`\b(19\d{2}|20\d{2})(?:-\d{2})?\b`)
	rawGradeRe   = regexp.MustCompile(`(?i)\b(raw|ungraded)\b`)
	cardNumberRe = regexp.MustCompile(`(?i)(?:#\s*|\bno\.\s*)([a-z]{0,4}-?\d{1,4}[a-z]?)\b`)
	serialRe     = regexp.MustCompile(`(?:^|[^\w/])(\d{0,4})\s*/\s*(\d{1,4})\b`)
	variationRe  = regexp.MustCompile(`(?i)\b(ssp|sp|short print|image variation|variation|var)\b`)
	autoRe       = regexp.MustCompile(`(?i)\b(auto|autograph|autographs|autographed|signed|rpa)\b`)
	relicRe      = regexp.MustCompile(`(?i)\b(relic|patch|jersey|memorabilia|rpa)\b`)
)

// Parse extracts locked constraints from query and returns the remaining
// free-text tokens.
func Parse(query string, lex *lexicon.Lexicon) model.ParsedSearch {
	var c model.Constraints
	var consumed []string

	if m := yearRe.FindStringSubmatch(query); m != nil {
		c.Year = m[1]
		consumed = append(consumed, m[0])
	}

	if set, ok := lex.MatchSet(query); ok {
		c.Set = set
		consumed = append(consumed, set)
	}

	if g, ok := lexicon.ParseGrade(query); ok {
		c.Grade = g.String()
		consumed = append(consumed, gradeText(query))
	} else if m := rawGradeRe.FindStringSubmatch(query); m != nil {
		c.Grade = "raw"
		consumed = append(consumed, m[0])
	}

	if m := cardNumberRe.FindStringSubmatch(query); m != nil {
		c.CardNumber = strings.ToUpper(m[1])
		consumed = append(consumed, m[0])
	}

	if p, ok := lex.MatchParallel(query); ok {
		c.Parallel = p
		consumed = append(consumed, p)
	}

	if m := serialRe.FindStringSubmatch(query); m != nil {
		c.Serial = serialForm(m[1], m[2])
		consumed = append(consumed, m[1], m[2])
	}

	if m := variationRe.FindStringSubmatch(query); m != nil {
		c.Variation = variationForm(m[1])
		consumed = append(consumed, m[1])
	}

	for _, m := range autoRe.FindAllString(query, -1) {
		c.Autograph = true
		consumed = append(consumed, m)
	}
	for _, m := range relicRe.FindAllString(query, -1) {
		c.Relic = true
		consumed = append(consumed, m)
	}

	return model.ParsedSearch{
		Query:       query,
		Constraints: c,
		Leftover:    leftover(query, consumed),
	}
}

// Annotate runs the query extraction over a listing title.
func Annotate(l model.Listing, lex *lexicon.Lexicon) model.Candidate {
	p := Parse(l.Title, lex)
	cand := model.Candidate{
		Listing: l,
		Attrs:   p.Constraints,
		Words:   p.Leftover,
	}
	if brand, ok := lex.MatchBrand(l.Title); ok {
		cand.Brand = brand
	}
	return cand
}

// AnnotateAll annotates every listing.
func AnnotateAll(ls []model.Listing, lex *lexicon.Lexicon) []model.Candidate {
	out := make([]model.Candidate, len(ls))
	for i, l := range ls {
		out[i] = Annotate(l, lex)
	}
	return out
}

var gradeTextRe = regexp.MustCompile(`(?i)\b(psa|bgs|sgc|cgc|beckett)\s*-?\s*\d{1,2}(?:\.5)?\b`)

func gradeText(s string) string {
	return gradeTextRe.FindString(s)
}

func serialForm(num, run string) string {
	run = strings.TrimLeft(run, "0")
	if run == "" {
		return ""
	}
	if run == "1" && (num == "" || strings.TrimLeft(num, "0") == "1") {
		return "1/1"
	}
	return "/" + run
}

func variationForm(s string) string {
	switch strings.ToLower(s) {
	case "ssp":
		return "ssp"
	case "sp", "short print":
		return "sp"
	default:
		return "variation"
	}
}

// leftover returns the normalized query tokens not covered by any consumed
// phrase, preserving order.
func leftover(query string, consumed []string) []string {
	drop := make(map[string]struct{})
	for _, c := range consumed {
		for _, tok := range lexicon.Tokens(c) {
			drop[tok] = struct{}{}
		}
	}
	var out []string
	for _, tok := range lexicon.Tokens(query) {
		if _, ok := drop[tok]; !ok {
			out = append(out, tok)
		}
	}
	return out
}

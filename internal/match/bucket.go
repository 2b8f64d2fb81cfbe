// Package match buckets annotated listings against locked search
// constraints and scores them for relevance.
package match

import (
	"github.com/sells-group/card-cli/internal/lexicon"
	"github.com/sells-group/card-cli/internal/model"
)

// Drop reasons recorded in MatchResult.DropReasons.
const (
	ReasonInsufficient   = "insufficient_match"
	ReasonBelowThreshold = "below_threshold"
	reasonContradiction  = "contradiction:"
)

type check struct {
	field string
	want  string
	got   string
	flag  bool
}

// Compare evaluates every locked constraint against a candidate's
// attributes. It returns how many matched and the first contradicting field
// ("" when none contradict). A locked constraint the candidate says nothing
// about is neither.
func Compare(locked, attrs model.Constraints) (matched int, contradiction string) {
	checks := []check{
		{field: "year", want: locked.Year, got: attrs.Year},
		{field: "set", want: locked.Set, got: attrs.Set},
		{field: "grade", want: locked.Grade, got: attrs.Grade},
		{field: "cardNumber", want: locked.CardNumber, got: attrs.CardNumber},
		{field: "parallel", want: locked.Parallel, got: attrs.Parallel},
		{field: "serial", want: locked.Serial, got: attrs.Serial},
		{field: "variation", want: locked.Variation, got: attrs.Variation},
	}
	for _, c := range checks {
		if c.want == "" {
			continue
		}
		got := c.got
		// Ungraded listings rarely say "raw".
		if c.field == "grade" && got == "" && equalFold(c.want, "raw") {
			got = "raw"
		}
		switch {
		case got == "":
		case equalFold(c.want, got):
			matched++
		default:
			if contradiction == "" {
				contradiction = c.field
			}
		}
	}

	flags := []check{
		{field: "autograph", flag: locked.Autograph, got: boolText(attrs.Autograph)},
		{field: "relic", flag: locked.Relic, got: boolText(attrs.Relic)},
	}
	for _, f := range flags {
		if !f.flag {
			continue
		}
		if f.got != "" {
			matched++
		} else if contradiction == "" {
			contradiction = f.field
		}
	}
	return matched, contradiction
}

// Bucket splits candidates into exact (every locked constraint matches) and
// close (a strict majority matches and nothing contradicts). Everything else
// is dropped and counted by reason.
func Bucket(locked model.Constraints, cands []model.Candidate) (exact, near []model.Candidate, drops map[string]int) {
	drops = make(map[string]int)
	n := locked.LockedCount()
	for _, c := range cands {
		matched, contra := Compare(locked, c.Attrs)
		c.Matched = matched
		switch {
		case contra != "":
			drops[reasonContradiction+contra]++
		case matched == n:
			exact = append(exact, c)
		case matched*2 > n:
			near = append(near, c)
		default:
			drops[ReasonInsufficient]++
		}
	}
	return exact, near, drops
}

func equalFold(a, b string) bool {
	return lexicon.Normalize(a) == lexicon.Normalize(b)
}

func boolText(b bool) string {
	if b {
		return "true"
	}
	return ""
}

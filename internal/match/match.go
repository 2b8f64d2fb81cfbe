package match

import (
	"go.uber.org/zap"

	"github.com/sells-group/card-cli/internal/lexicon"
	"github.com/sells-group/card-cli/internal/model"
	"github.com/sells-group/card-cli/internal/search"
)

// Matcher annotates listings and runs bucketing plus scoring.
type Matcher struct {
	lex    *lexicon.Lexicon
	scorer Scorer
}

// NewMatcher creates a Matcher.
func NewMatcher(lex *lexicon.Lexicon, scorer Scorer) *Matcher {
	return &Matcher{lex: lex, scorer: scorer}
}

// Match buckets and scores listings against a parsed query. When the exact
// bucket comes back empty the run is repeated in broaden mode.
func (m *Matcher) Match(parsed model.ParsedSearch, listings []model.Listing) model.MatchResult {
	return m.MatchCandidates(parsed, search.AnnotateAll(listings, m.lex))
}

// MatchCandidates is Match over already annotated candidates.
func (m *Matcher) MatchCandidates(parsed model.ParsedSearch, cands []model.Candidate) model.MatchResult {
	exact, near, drops := Bucket(parsed.Constraints, cands)

	var res model.MatchResult
	res.DropReasons = copyDrops(drops)
	res.Exact, res.Close = m.scorer.Score(parsed, exact, near, false, res.DropReasons)
	if len(res.Exact) == 0 && len(exact)+len(near) > 0 {
		res.DropReasons = copyDrops(drops)
		res.Exact, res.Close = m.scorer.Score(parsed, exact, near, true, res.DropReasons)
		res.Broadened = true
	}

	zap.L().Debug("match: bucketed listings",
		zap.Int("candidates", len(cands)),
		zap.Int("exact", len(res.Exact)),
		zap.Int("close", len(res.Close)),
		zap.Bool("broadened", res.Broadened),
	)
	return res
}

func copyDrops(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

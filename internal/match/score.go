package match

import (
	"sort"

	"github.com/sells-group/card-cli/internal/model"
)

// Scorer assigns relevance scores and applies the exact/close thresholds.
// Thresholds apply to the candidate confidence in [0,1].
type Scorer struct {
	ExactThreshold float64
	CloseMin       float64
	OverlapWeight  float64
}

// DefaultScorer returns the standard thresholds.
func DefaultScorer() Scorer {
	return Scorer{ExactThreshold: 0.8, CloseMin: 0.4, OverlapWeight: 1}
}

// Jaccard returns |a∩b| / |a∪b| over the distinct words of a and b.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	sa := make(map[string]struct{}, len(a))
	for _, w := range a {
		sa[w] = struct{}{}
	}
	sb := make(map[string]struct{}, len(b))
	for _, w := range b {
		sb[w] = struct{}{}
	}
	inter := 0
	for w := range sa {
		if _, ok := sb[w]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	return float64(inter) / float64(union)
}

func (s Scorer) rate(parsed model.ParsedSearch, c *model.Candidate) {
	jac := Jaccard(parsed.Leftover, c.Words)
	c.Score = float64(c.Matched) + s.OverlapWeight*jac
	if n := parsed.Constraints.LockedCount(); n > 0 {
		c.Confidence = 0.7*float64(c.Matched)/float64(n) + 0.3*jac
	} else {
		c.Confidence = jac
	}
}

// Score rates the bucketed candidates and re-applies the thresholds. In
// broaden mode both buckets are pooled and split purely by threshold;
// otherwise a bucketed-close candidate can never be promoted to exact.
// Candidates under CloseMin are dropped and counted in drops when it is
// non-nil.
func (s Scorer) Score(parsed model.ParsedSearch, exact, near []model.Candidate, broaden bool, drops map[string]int) (outExact, outNear []model.Candidate) {
	place := func(c model.Candidate, canBeExact bool) {
		s.rate(parsed, &c)
		switch {
		case canBeExact && c.Confidence >= s.ExactThreshold:
			outExact = append(outExact, c)
		case c.Confidence >= s.CloseMin:
			outNear = append(outNear, c)
		default:
			if drops != nil {
				drops[ReasonBelowThreshold]++
			}
		}
	}
	for _, c := range exact {
		place(c, true)
	}
	for _, c := range near {
		place(c, broaden)
	}

	byScore := func(cs []model.Candidate) {
		sort.SliceStable(cs, func(i, j int) bool { return cs[i].Score > cs[j].Score })
	}
	byScore(outExact)
	byScore(outNear)
	return outExact, outNear
}

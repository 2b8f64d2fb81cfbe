// Package grade converts grade-range labels into normalized probability
// distributions over PSA and BGS buckets.
package grade

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/sells-group/card-cli/internal/model"
)

// Confidence adjustment applied to the low-bucket probability.
const confidenceShift = 0.1

var (
	numberRe  = regexp.MustCompile(`\d+(?:\.\d+)?`)
	companyRe = regexp.MustCompile(`(?i)\b(psa|bgs|sgc|cgc|beckett)\b`)
)

// ParseRange extracts the company (default PSA) and the numeric grades of a
// label such as "PSA 8-9" or "BGS 9.5".
func ParseRange(label string) (company string, grades []float64) {
	company = "PSA"
	if m := companyRe.FindStringSubmatch(label); m != nil {
		company = strings.ToUpper(m[1])
		if company == "BECKETT" {
			company = "BGS"
		}
	}
	for _, tok := range numberRe.FindAllString(label, -1) {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil || v <= 0 || v > 10 {
			continue
		}
		grades = append(grades, v)
	}
	return company, grades
}

// DistributionFromRange maps a grade-range label and qualitative confidence
// to a normalized distribution. It returns false when the label holds no
// usable grade.
func DistributionFromRange(label string, conf model.Confidence) ([]model.GradeBucketProb, bool) {
	company, grades := ParseRange(label)
	conf = conf.OrDefault(model.ConfidenceMedium)

	switch {
	case len(grades) == 0:
		return nil, false
	case len(grades) == 1 || grades[0] == grades[1]:
		return singleGrade(company, grades[0], conf), true
	default:
		lo, hi := math.Min(grades[0], grades[1]), math.Max(grades[0], grades[1])
		p := adjust(rangeBase(lo, hi), conf)
		return Normalize([]model.GradeBucketProb{
			{Company: company, Grade: lo, P: p},
			{Company: company, Grade: hi, P: 1 - p},
		}), true
	}
}

func singleGrade(company string, g float64, conf model.Confidence) []model.GradeBucketProb {
	if g >= 10 {
		// A bare top grade never dominates.
		return Normalize([]model.GradeBucketProb{
			{Company: company, Grade: 10, P: 0.6},
			{Company: company, Grade: 9, P: 0.4},
		})
	}
	if g-1 < 1 {
		return []model.GradeBucketProb{{Company: company, Grade: g, P: 1}}
	}
	p := adjust(0.3, conf)
	return Normalize([]model.GradeBucketProb{
		{Company: company, Grade: g - 1, P: p},
		{Company: company, Grade: g, P: 1 - p},
	})
}

// rangeBase is the low-grade probability for a two-grade range.
func rangeBase(lo, hi float64) float64 {
	switch {
	case lo == 8 && hi == 9:
		return 0.35
	case lo == 9 && hi == 10:
		return 0.7
	default:
		return 0.5
	}
}

// adjust moves p toward 0.5 for low confidence and away from it for high.
// Low confidence never crosses 0.5; results stay within [0,1].
func adjust(p float64, conf model.Confidence) float64 {
	switch conf {
	case model.ConfidenceLow:
		if p < 0.5 {
			return math.Min(p+confidenceShift, 0.5)
		}
		if p > 0.5 {
			return math.Max(p-confidenceShift, 0.5)
		}
	case model.ConfidenceHigh:
		if p < 0.5 {
			return math.Max(p-confidenceShift, 0)
		}
		if p > 0.5 {
			return math.Min(p+confidenceShift, 1)
		}
	}
	return p
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// Normalize scales the probabilities to sum to 1, rounds each to four
// decimals and adds the rounding residual to the largest bucket. The input
// slice is not modified.
func Normalize(buckets []model.GradeBucketProb) []model.GradeBucketProb {
	out := append([]model.GradeBucketProb(nil), buckets...)
	ps := make([]float64, len(out))
	for i, b := range out {
		ps[i] = b.P
	}
	normalizeInPlace(ps)
	for i := range out {
		out[i].P = ps[i]
	}
	return out
}

func normalizeInPlace(ps []float64) {
	sum := 0.0
	for _, p := range ps {
		if p > 0 {
			sum += p
		}
	}
	if sum <= 0 || len(ps) == 0 {
		return
	}
	largest := 0
	total := 0.0
	for i, p := range ps {
		if p < 0 {
			p = 0
		}
		ps[i] = round4(p / sum)
		total += ps[i]
		if ps[i] > ps[largest] {
			largest = i
		}
	}
	ps[largest] = round4(ps[largest] + (1 - total))
}

// normalizeMap normalizes m over keys, in key order for tie-breaking.
func normalizeMap(m map[string]float64, keys []string) {
	ps := make([]float64, len(keys))
	for i, k := range keys {
		ps[i] = m[k]
	}
	normalizeInPlace(ps)
	for i, k := range keys {
		m[k] = ps[i]
	}
}

// sortedGrades returns the buckets ordered by ascending grade.
func sortedGrades(buckets []model.GradeBucketProb) []model.GradeBucketProb {
	out := append([]model.GradeBucketProb(nil), buckets...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Grade < out[j].Grade })
	return out
}

package valuation

import (
	"math"
	"regexp"
	"sort"
	"strconv"
)

// Median returns the median of xs; the mean of the two middle values for an
// even count. xs is not modified.
func Median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 0 {
		return (s[mid-1] + s[mid]) / 2
	}
	return s[mid]
}

// weighted is an adjusted price and its weight.
type weighted struct {
	price  float64
	weight float64
}

// weightedMedian returns the first price, in ascending order, at which the
// cumulative weight reaches half the total weight.
func weightedMedian(ws []weighted) float64 {
	if len(ws) == 0 {
		return 0
	}
	s := append([]weighted(nil), ws...)
	sort.SliceStable(s, func(i, j int) bool { return s[i].price < s[j].price })
	total := 0.0
	for _, w := range s {
		total += w.weight
	}
	cum := 0.0
	for _, w := range s {
		cum += w.weight
		if cum >= total/2 {
			return w.price
		}
	}
	return s[len(s)-1].price
}

// Round2 rounds to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var (
	oneOfOneRe = regexp.MustCompile(`(?i)\b1\s*/\s*1\b|\bone of one\b`)
	printRunRe = regexp.MustCompile(`/\s*(\d{1,5})\b`)
)

// RarityMultiplier derives a price multiplier from a serial-numbering token
// in free-text notes ("/25", "#'d 12/99", "1/1").
func RarityMultiplier(notes string) float64 {
	if oneOfOneRe.MatchString(notes) {
		return 2.0
	}
	m := printRunRe.FindStringSubmatch(notes)
	if m == nil {
		return 1.0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 1.0
	}
	switch {
	case n == 1:
		return 2.0
	case n <= 10:
		return 1.5
	case n <= 25:
		return 1.3
	case n <= 50:
		return 1.2
	case n <= 99:
		return 1.1
	case n <= 199:
		return 1.05
	default:
		return 1.0
	}
}

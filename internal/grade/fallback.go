package grade

import (
	"fmt"
	"hash/fnv"
	"math"

	"github.com/sells-group/card-cli/internal/model"
)

// Image-quality saturation points.
const (
	countSaturation = 5
	sizeSaturation  = 1.2 * 1024 * 1024
	// DefaultJitterMax bounds the deterministic adjacent-bucket nudge.
	DefaultJitterMax = 0.05
)

// QualityScore combines image count and average size into [0,1]. A wide
// spread between the smallest and largest image costs 0.05.
func QualityScore(s model.ImageStats) float64 {
	count := math.Min(float64(s.Count), countSaturation) / countSaturation
	if count < 0 {
		count = 0
	}
	size := math.Min(float64(s.AvgBytes)/sizeSaturation, 1)
	if size < 0 {
		size = 0
	}
	q := 0.4*count + 0.6*size
	if s.MaxBytes > 0 && float64(s.MinBytes)/float64(s.MaxBytes) < 0.2 {
		q -= 0.05
	}
	return math.Max(0, math.Min(q, 1))
}

// QualityConfidence maps a quality score to a confidence tier.
func QualityConfidence(q float64) model.Confidence {
	switch {
	case q >= 0.7:
		return model.ConfidenceHigh
	case q >= 0.45:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

// QualityRange maps a quality score to a synthetic grade range.
func QualityRange(q float64) string {
	switch {
	case q >= 0.75:
		return "PSA 8-9"
	case q >= 0.55:
		return "PSA 7-8"
	case q >= 0.35:
		return "PSA 6-8"
	default:
		return "PSA 5-7"
	}
}

// Jitter derives a stable offset in [-bound, bound] from the image stats.
func Jitter(s model.ImageStats, bound float64) float64 {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%d|%d|%d|%d", s.Count, s.AvgBytes, s.MinBytes, s.MaxBytes)
	frac := float64(h.Sum64()%1001) / 1000
	return (frac*2 - 1) * bound
}

// FromImageStats synthesizes a range, confidence and distribution when no
// model estimate exists. The jitter shifts mass between the two range
// buckets before re-normalizing.
func FromImageStats(s model.ImageStats, jitterMax float64) (string, model.Confidence, []model.GradeBucketProb) {
	q := QualityScore(s)
	conf := QualityConfidence(q)
	label := QualityRange(q)

	dist, _ := DistributionFromRange(label, conf)
	dist = sortedGrades(dist)
	if len(dist) == 2 {
		j := Jitter(s, jitterMax)
		dist[0].P = clamp01(dist[0].P + j)
		dist[1].P = clamp01(dist[1].P - j)
		dist = Normalize(dist)
	}
	return label, conf, dist
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(v, 1))
}

package grade

import "github.com/sells-group/card-cli/internal/model"

// Canonical bucket keys, highest first.
var (
	PSAKeys = []string{"10", "9", "8", "7_or_lower"}
	BGSKeys = []string{"9.5", "9", "8.5", "8_or_lower"}
)

// DefaultPSA10Cap is the ceiling on PSA 10 probability without an override.
const DefaultPSA10Cap = 0.15

func psaKey(g float64) string {
	switch {
	case g >= 10:
		return "10"
	case g >= 9:
		return "9"
	case g >= 8:
		return "8"
	default:
		return "7_or_lower"
	}
}

// bgsKey maps a grade onto BGS buckets. BGS-labeled grades map directly;
// other companies use the PSA equivalence 10→9.5, 9→9, 8/8.5→8.5.
func bgsKey(company string, g float64) string {
	top := 10.0
	if company == "BGS" {
		top = 9.5
	}
	switch {
	case g >= top:
		return "9.5"
	case g >= 9:
		return "9"
	case g >= 8:
		return "8.5"
	default:
		return "8_or_lower"
	}
}

// ToPSA folds a distribution into the four PSA buckets and applies the
// PSA 10 cap unless override is set. Excess mass is redistributed to the
// other buckets in proportion to their share, or entirely to "9" when they
// are all empty.
func ToPSA(dist []model.GradeBucketProb, capP float64, override bool) map[string]float64 {
	out := make(map[string]float64, len(PSAKeys))
	for _, k := range PSAKeys {
		out[k] = 0
	}
	for _, b := range dist {
		out[psaKey(b.Grade)] += b.P
	}
	normalizeMap(out, PSAKeys)

	if !override && out["10"] > capP {
		excess := out["10"] - capP
		out["10"] = capP
		rest := 0.0
		for _, k := range PSAKeys[1:] {
			rest += out[k]
		}
		if rest > 0 {
			for _, k := range PSAKeys[1:] {
				out[k] += excess * out[k] / rest
			}
		} else {
			out["9"] += excess
		}
		normalizeMap(out, PSAKeys)
	}
	return out
}

// ToBGS folds a distribution into the four BGS buckets.
func ToBGS(dist []model.GradeBucketProb) map[string]float64 {
	out := make(map[string]float64, len(BGSKeys))
	for _, k := range BGSKeys {
		out[k] = 0
	}
	for _, b := range dist {
		out[bgsKey(b.Company, b.Grade)] += b.P
	}
	normalizeMap(out, BGSKeys)
	return out
}

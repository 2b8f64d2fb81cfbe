package grade

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/card-cli/internal/lexicon"
	"github.com/sells-group/card-cli/internal/model"
)

// Centering tolerance: the heavier side may be at most 52%.
const maxCenteringSide = 52

// negationWindow is how many preceding words can negate a defect term.
const negationWindow = 3

var (
	centeringRe = regexp.MustCompile(`(\d{1,3}(?:\.\d+)?)\s*/\s*(\d{1,3}(?:\.\d+)?)`)
	clauseRe    = regexp.MustCompile(`[,;.:!?]|\bbut\b|\bhowever\b|\bthough\b`)

	positiveWords = wordSet("sharp", "crisp", "clean", "pristine", "flawless", "perfect", "immaculate", "mint", "gem", "smooth")
	hedgeWords    = wordSet("slight", "slightly", "minor", "minimal", "possible", "possibly", "may", "might", "appears", "appear", "likely", "some", "faint")
	negationWords = wordSet("no", "without", "zero", "not", "never", "nor")

	// Defect stems match any word starting with them.
	defectStems = []string{
		"whiten", "wear", "worn", "creas", "scratch", "chip", "ding", "dent",
		"soft", "fray", "stain", "scuff", "rough", "nick", "bend", "bent", "fuzz",
		"indent", "damag", "dimple", "tear", "torn", "peel", "smudg", "blemish",
	}
	defectPhrases = [][]string{{"print", "line"}, {"print", "lines"}, {"surface", "line"}, {"surface", "lines"}, {"off", "center"}, {"off", "centered"}}
)

func wordSet(ws ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(ws))
	for _, w := range ws {
		m[w] = struct{}{}
	}
	return m
}

// CenteringTopTier reports whether every ratio in text (e.g. "50/50",
// "52/48 L/R, 51/49 T/B") is within 48/52. Text without a ratio fails.
func CenteringTopTier(text string) bool {
	found := false
	for _, m := range centeringRe.FindAllStringSubmatch(text, -1) {
		a, errA := strconv.ParseFloat(m[1], 64)
		b, errB := strconv.ParseFloat(m[2], 64)
		if errA != nil || errB != nil || a+b < 99 || a+b > 101 {
			continue
		}
		found = true
		if a > maxCenteringSide || b > maxCenteringSide {
			return false
		}
	}
	return found
}

// AreaTopTier reports whether a corners/surface/edges description is
// unambiguously positive: it has a positive term, no hedging, and no
// defect term unless negated within the preceding three words of the same
// clause ("no whitening", "free of scratches").
func AreaTopTier(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	positive := false
	for _, clause := range clauseRe.Split(strings.ToLower(text), -1) {
		words := lexicon.Tokens(clause)
		for i, w := range words {
			if _, ok := hedgeWords[w]; ok {
				return false
			}
			if _, ok := positiveWords[w]; ok {
				positive = true
			}
			if w == "no" && i+1 < len(words) && words[i+1] == "visible" {
				positive = true
			}
			if isDefectAt(words, i) && !negated(words, i) {
				return false
			}
		}
	}
	return positive
}

func isDefectAt(words []string, i int) bool {
	for _, ph := range defectPhrases {
		if i+len(ph) <= len(words) {
			match := true
			for j, p := range ph {
				if words[i+j] != p {
					match = false
					break
				}
			}
			if match {
				return true
			}
		}
	}
	w := words[i]
	for _, stem := range defectStems {
		if strings.HasPrefix(w, stem) {
			return true
		}
	}
	return false
}

func negated(words []string, i int) bool {
	start := i - negationWindow
	if start < 0 {
		start = 0
	}
	window := words[start:i]
	for j, w := range window {
		if _, ok := negationWords[w]; ok {
			return true
		}
		if j+1 < len(window) && window[j+1] == "of" && (w == "free" || w == "absence") {
			return true
		}
	}
	return false
}

// OverrideAllowed reports whether the PSA 10 cap may be lifted: confidence
// must be high and all four evidence areas must independently qualify.
func OverrideAllowed(conf model.Confidence, ev *model.GradeEvidence) bool {
	if conf != model.ConfidenceHigh || ev == nil {
		return false
	}
	return CenteringTopTier(ev.Centering) &&
		AreaTopTier(ev.Corners) &&
		AreaTopTier(ev.Surface) &&
		AreaTopTier(ev.Edges)
}

package model

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// Confidence is an ordered qualitative confidence tier.
// The zero value means no confidence was assigned (field absent).
type Confidence int

const (
	ConfidenceUnknown Confidence = iota
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceLow:
		return "low"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceHigh:
		return "high"
	default:
		return ""
	}
}

// ParseConfidence maps a tier name to a Confidence. Unrecognized input
// returns ConfidenceUnknown and false.
func ParseConfidence(s string) (Confidence, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return ConfidenceLow, true
	case "medium", "med", "moderate":
		return ConfidenceMedium, true
	case "high":
		return ConfidenceHigh, true
	default:
		return ConfidenceUnknown, false
	}
}

// ConfidenceFromScore buckets a numeric score in [0,1].
func ConfidenceFromScore(score float64) Confidence {
	switch {
	case score >= 0.8:
		return ConfidenceHigh
	case score >= 0.5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// MaxConfidence returns the higher of two tiers.
func MaxConfidence(a, b Confidence) Confidence {
	if a > b {
		return a
	}
	return b
}

// MinConfidence returns the lower of the given tiers, ignoring unknown ones.
// Returns ConfidenceUnknown when every input is unknown.
func MinConfidence(cs ...Confidence) Confidence {
	out := ConfidenceUnknown
	for _, c := range cs {
		if c == ConfidenceUnknown {
			continue
		}
		if out == ConfidenceUnknown || c < out {
			out = c
		}
	}
	return out
}

// OrDefault returns c, or def when c is unknown.
func (c Confidence) OrDefault(def Confidence) Confidence {
	if c == ConfidenceUnknown {
		return def
	}
	return c
}

func (c Confidence) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Confidence) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return eris.Wrap(err, "model: confidence must be a string")
	}
	if s == "" {
		*c = ConfidenceUnknown
		return nil
	}
	parsed, ok := ParseConfidence(s)
	if !ok {
		return eris.Errorf("model: unknown confidence %q", s)
	}
	*c = parsed
	return nil
}

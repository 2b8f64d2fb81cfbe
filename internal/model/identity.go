package model

// CardStock is the physical card substrate.
type CardStock string

const (
	StockPaper    CardStock = "paper"
	StockChromium CardStock = "chromium"
	StockUnknown  CardStock = "unknown"
)

// CardIdentity is the resolved card identity. Nil pointer fields were not
// resolved. Values are built once by the resolver and not mutated after.
type CardIdentity struct {
	Player          *string               `json:"player"`
	Year            *int                  `json:"year"`
	Brand           *string               `json:"brand"`
	SetName         *string               `json:"setName"`
	Subset          *string               `json:"subset"`
	Sport           *string               `json:"sport"`
	League          *string               `json:"league"`
	CardNumber      *string               `json:"cardNumber"`
	Rookie          *bool                 `json:"rookie"`
	Parallel        *string               `json:"parallel"`
	CardStock       CardStock             `json:"cardStock"`
	Confidence      Confidence            `json:"confidence"`
	FieldConfidence map[string]Confidence `json:"fieldConfidence"`
	Sources         map[string]Source     `json:"sources"`
	Warnings        []Warning             `json:"warnings"`
	EvidenceSummary string                `json:"evidenceSummary"`
}

// HasWarning reports whether w is attached to the identity.
func (c *CardIdentity) HasWarning(w Warning) bool {
	for _, x := range c.Warnings {
		if x == w {
			return true
		}
	}
	return false
}

package model

import (
	"strconv"
	"strings"
	"time"
)

// CmvConfidence grades a market-value estimate.
type CmvConfidence string

const (
	CmvHigh        CmvConfidence = "high"
	CmvMedium      CmvConfidence = "medium"
	CmvLow         CmvConfidence = "low"
	CmvUnavailable CmvConfidence = "unavailable"
)

// Tier returns the qualitative Confidence equivalent. Unavailable maps to
// ConfidenceUnknown.
func (c CmvConfidence) Tier() Confidence {
	conf, _ := ParseConfidence(string(c))
	return conf
}

// Comp is a single completed sale.
type Comp struct {
	Title string    `json:"title"`
	Price float64   `json:"price"`
	Date  time.Time `json:"date"`
	Grade string    `json:"grade,omitempty"`
}

// ForSaleSummary is the active-listing signal used as a last resort.
type ForSaleSummary struct {
	Count             int      `json:"count"`
	MedianAsk         *float64 `json:"median_ask,omitempty"`
	EstimatedSaleLow  *float64 `json:"estimated_sale_low,omitempty"`
	EstimatedSaleHigh *float64 `json:"estimated_sale_high,omitempty"`
}

// CardRef identifies a card for valuation.
type CardRef struct {
	Player       string `json:"player"`
	Year         int    `json:"year,omitempty"`
	Set          string `json:"set,omitempty"`
	Grade        string `json:"grade,omitempty"`
	ParallelType string `json:"parallelType,omitempty"`
	CardNumber   string `json:"cardNumber,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// WithGrade returns a copy of the card with a different grade.
func (c CardRef) WithGrade(grade string) CardRef {
	c.Grade = grade
	return c
}

// Key returns a stable cache key for the card.
func (c CardRef) Key() string {
	year := ""
	if c.Year > 0 {
		year = strconv.Itoa(c.Year)
	}
	parts := []string{c.Player, year, c.Set, c.CardNumber, c.ParallelType, c.Grade}
	for i, p := range parts {
		parts[i] = strings.Join(strings.Fields(strings.ToLower(p)), " ")
	}
	return strings.Join(parts, "|")
}

// ListingQuery is the request sent to the listings collaborator.
type ListingQuery struct {
	Player       string   `json:"player"`
	Year         int      `json:"year,omitempty"`
	Set          string   `json:"set,omitempty"`
	Grade        string   `json:"grade,omitempty"`
	ParallelType string   `json:"parallelType,omitempty"`
	CardNumber   string   `json:"cardNumber,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
}

// QueryFor builds the listings request for a card at the given grade.
// An empty grade means grade-agnostic.
func QueryFor(c CardRef, grade string) ListingQuery {
	return ListingQuery{
		Player:       c.Player,
		Year:         c.Year,
		Set:          c.Set,
		Grade:        grade,
		ParallelType: c.ParallelType,
		CardNumber:   c.CardNumber,
	}
}

// CmvResult is the output of one valuation. Use NewCmvResult or
// UnavailableCmv so the value/confidence invariant holds.
type CmvResult struct {
	EstimatedCMV   *float64      `json:"estimated_cmv"`
	EstCMV         *float64      `json:"est_cmv"`
	CmvConfidence  CmvConfidence `json:"cmv_confidence"`
	CmvLastUpdated *time.Time    `json:"cmv_last_updated"`
	Tier           string        `json:"cmv_tier,omitempty"`
	CompCount      int           `json:"comp_count"`
}

// NewCmvResult builds an available result.
func NewCmvResult(value float64, conf CmvConfidence, tier string, comps int, at time.Time) CmvResult {
	v := value
	ts := at
	return CmvResult{
		EstimatedCMV:   &v,
		EstCMV:         &v,
		CmvConfidence:  conf,
		CmvLastUpdated: &ts,
		Tier:           tier,
		CompCount:      comps,
	}
}

// UnavailableCmv builds the terminal no-value result.
func UnavailableCmv(at time.Time) CmvResult {
	ts := at
	return CmvResult{
		CmvConfidence:  CmvUnavailable,
		CmvLastUpdated: &ts,
	}
}

// Available reports whether a value was produced.
func (r CmvResult) Available() bool {
	return r.EstimatedCMV != nil && r.CmvConfidence != CmvUnavailable
}

// StoredCmv is a persisted valuation.
type StoredCmv struct {
	ID        string    `json:"id"`
	Card      CardRef   `json:"card"`
	Result    CmvResult `json:"result"`
	UpdatedAt time.Time `json:"updated_at"`
}

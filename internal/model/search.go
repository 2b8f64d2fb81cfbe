package model

import "time"

// Constraints holds the fields locked by a search query. Empty strings and
// false booleans mean "not locked".
type Constraints struct {
	Year       string `json:"year,omitempty"`
	Set        string `json:"set,omitempty"`
	Grade      string `json:"grade,omitempty"`
	CardNumber string `json:"cardNumber,omitempty"`
	Parallel   string `json:"parallel,omitempty"`
	Serial     string `json:"serial,omitempty"`
	Variation  string `json:"variation,omitempty"`
	Autograph  bool   `json:"autograph,omitempty"`
	Relic      bool   `json:"relic,omitempty"`
}

// LockedCount returns how many constraints are locked.
func (c Constraints) LockedCount() int {
	n := 0
	for _, v := range []string{c.Year, c.Set, c.Grade, c.CardNumber, c.Parallel, c.Serial, c.Variation} {
		if v != "" {
			n++
		}
	}
	if c.Autograph {
		n++
	}
	if c.Relic {
		n++
	}
	return n
}

// ParsedSearch is a free-text query split into locked constraints and
// leftover tokens.
type ParsedSearch struct {
	Query       string      `json:"query"`
	Constraints Constraints `json:"constraints"`
	Leftover    []string    `json:"leftover"`
}

// Listing is a raw marketplace listing.
type Listing struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Price  float64   `json:"price"`
	Date   time.Time `json:"date,omitempty"`
	URL    string    `json:"url,omitempty"`
	Status string    `json:"status,omitempty"` // "sold" or "active"
}

// Candidate is a listing annotated with extracted attributes and a
// relevance score.
type Candidate struct {
	Listing    Listing     `json:"listing"`
	Attrs      Constraints `json:"attrs"`
	Brand      string      `json:"brand,omitempty"`
	Words      []string    `json:"-"`
	Matched    int         `json:"matched"`
	Score      float64     `json:"score"`
	Confidence float64     `json:"confidence"`
}

// MatchResult is the bucketed output of a matching run.
type MatchResult struct {
	Exact       []Candidate    `json:"exact"`
	Close       []Candidate    `json:"close"`
	Broadened   bool           `json:"broadened"`
	DropReasons map[string]int `json:"dropReasons"`
}

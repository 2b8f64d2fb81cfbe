package listings

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/card-cli/internal/lexicon"
	"github.com/sells-group/card-cli/internal/match"
	"github.com/sells-group/card-cli/internal/model"
	"github.com/sells-group/card-cli/internal/search"
	"github.com/sells-group/card-cli/internal/valuation"
)

// Listing statuses in a fixture corpus.
const (
	StatusSold   = "sold"
	StatusActive = "active"
)

// FileSource serves comps and asks from a local JSON corpus of listings.
// Sold listings are comps, active listings feed the for-sale summary.
type FileSource struct {
	listings []model.Listing
	lex      *lexicon.Lexicon
	scorer   match.Scorer
}

type corpus struct {
	Listings []model.Listing `json:"listings"`
}

// fileScorer accepts a candidate matching every locked field even when the
// title has no extra overlap.
func fileScorer() match.Scorer {
	s := match.DefaultScorer()
	s.ExactThreshold = 0.69
	return s
}

// NewFileSource wraps an in-memory corpus.
func NewFileSource(listings []model.Listing, lex *lexicon.Lexicon) *FileSource {
	return &FileSource{
		listings: listings,
		lex:      lex,
		scorer:   fileScorer(),
	}
}

// LoadFile reads a corpus file shaped {"listings": [...]}.
func LoadFile(path string, lex *lexicon.Lexicon) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "listings: read %s", path)
	}
	var c corpus
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrapf(err, "listings: parse %s", path)
	}
	return NewFileSource(c.Listings, lex), nil
}

// FetchComps returns sold listings matching the query as comps.
func (f *FileSource) FetchComps(_ context.Context, q model.ListingQuery) ([]model.Comp, error) {
	cands := f.matching(q, StatusSold)
	out := make([]model.Comp, 0, len(cands))
	for _, c := range cands {
		out = append(out, model.Comp{
			Title: c.Listing.Title,
			Price: c.Listing.Price,
			Date:  c.Listing.Date,
			Grade: c.Attrs.Grade,
		})
	}
	return out, nil
}

// FetchForSale summarizes matching active listings. The corpus has no sale
// estimates so only the median ask is filled.
func (f *FileSource) FetchForSale(_ context.Context, q model.ListingQuery) (*model.ForSaleSummary, error) {
	cands := f.matching(q, StatusActive)
	sum := &model.ForSaleSummary{Count: len(cands)}
	if len(cands) == 0 {
		return sum, nil
	}
	asks := make([]float64, 0, len(cands))
	for _, c := range cands {
		if c.Listing.Price > 0 {
			asks = append(asks, c.Listing.Price)
		}
	}
	if len(asks) > 0 {
		m := valuation.Median(asks)
		sum.MedianAsk = &m
	}
	return sum, nil
}

// Search returns every listing whose title mentions all query words.
func (f *FileSource) Search(_ context.Context, query string) ([]model.Listing, error) {
	words := lexicon.Tokens(query)
	var out []model.Listing
	for _, l := range f.listings {
		title := lexicon.Normalize(l.Title)
		ok := true
		for _, w := range words {
			if !lexicon.ContainsPhrase(title, w) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, l)
		}
	}
	return out, nil
}

// matching returns candidates for the player that land in the exact bucket.
// A query with nothing locked keeps every listing for the player.
func (f *FileSource) matching(q model.ListingQuery, status string) []model.Candidate {
	player := lexicon.Normalize(q.Player)
	var pool []model.Listing
	for _, l := range f.listings {
		if !strings.EqualFold(l.Status, status) {
			continue
		}
		if player != "" && !lexicon.ContainsPhrase(lexicon.Normalize(l.Title), player) {
			continue
		}
		pool = append(pool, l)
	}
	if len(pool) == 0 {
		return nil
	}

	parsed := search.Parse(QueryText(q), f.lex)
	if parsed.Constraints.LockedCount() == 0 {
		return search.AnnotateAll(pool, f.lex)
	}
	// No broadening: a listing that leaves a locked field unstated must not
	// stand in for that grade or set.
	exact, near, drops := match.Bucket(parsed.Constraints, search.AnnotateAll(pool, f.lex))
	out, _ := f.scorer.Score(parsed, exact, near, false, drops)
	return out
}

var (
	_ valuation.CompSource    = (*FileSource)(nil)
	_ valuation.ForSaleSource = (*FileSource)(nil)
)

package signal

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/sells-group/card-cli/internal/lexicon"
	"github.com/sells-group/card-cli/internal/model"
)

// MinYear is the earliest plausible card year.
const MinYear = 1900

// Year evidence weights.
const (
	legalWeight = 3
	brandWeight = 2
	tradeWeight = 1
	backWeight  = 1
)

var (
	yearRe  = regexp.MustCompile(`\b(19\d{2}|20\d{2})(?:-\d{2})?\b`)
	legalRe = regexp.MustCompile(`(?i)©|\(c\)|®|™|\bcopyright\b|\ball rights reserved\b`)
	tradeRe = regexp.MustCompile(`(?i)\btrading cards?\b|\bprinted\b|\blicensed\b`)
)

// InRange reports whether year is within [MinYear, currentYear+1].
func InRange(year, currentYear int) bool {
	return year >= MinYear && year <= currentYear+1
}

// ScoreLine returns the evidence score a line lends to any year it contains.
func ScoreLine(line model.OcrLine, lex *lexicon.Lexicon) int {
	score := 0
	if legalRe.MatchString(line.Text) {
		score += legalWeight
	}
	if _, ok := lex.MatchBrand(line.Text); ok {
		score += brandWeight
	}
	if tradeRe.MatchString(line.Text) {
		score += tradeWeight
	}
	if line.IsBack() {
		score += backWeight
	}
	return score
}

// YearCandidates scores every year mentioned in lines, keeps the best score
// per year, drops out-of-range years and sorts by score descending with
// first appearance breaking ties.
func YearCandidates(lines []model.OcrLine, lex *lexicon.Lexicon, currentYear int) []model.YearCandidate {
	type entry struct {
		cand  model.YearCandidate
		order int
	}
	byYear := make(map[int]*entry)
	order := 0

	for _, line := range lines {
		matches := yearRe.FindAllStringSubmatch(line.Text, -1)
		if len(matches) == 0 {
			continue
		}
		score := ScoreLine(line, lex)
		for _, m := range matches {
			year, err := strconv.Atoi(m[1])
			if err != nil || !InRange(year, currentYear) {
				continue
			}
			e, ok := byYear[year]
			if !ok {
				byYear[year] = &entry{
					cand:  model.YearCandidate{Year: year, Score: score, SourceLine: strings.TrimSpace(line.Text)},
					order: order,
				}
				order++
				continue
			}
			if score > e.cand.Score {
				e.cand.Score = score
				e.cand.SourceLine = strings.TrimSpace(line.Text)
			}
		}
	}

	entries := make([]*entry, 0, len(byYear))
	for _, e := range byYear {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].cand.Score != entries[j].cand.Score {
			return entries[i].cand.Score > entries[j].cand.Score
		}
		return entries[i].order < entries[j].order
	})

	out := make([]model.YearCandidate, len(entries))
	for i, e := range entries {
		out[i] = e.cand
	}
	return out
}

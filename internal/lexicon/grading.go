package lexicon

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// GradeRef is a parsed slab grade such as "PSA 9".
type GradeRef struct {
	Company string
	Value   float64
}

func (g GradeRef) String() string {
	return g.Company + " " + strconv.FormatFloat(g.Value, 'f', -1, 64)
}

var gradeRe = regexp.MustCompile(`(?i)\b(psa|bgs|sgc|cgc|beckett)\s*-?\s*(\d{1,2}(?:\.5)?)\b`)

// ParseGrade parses labels like "PSA 9", "bgs 9.5" or "Beckett 10".
func ParseGrade(s string) (GradeRef, bool) {
	m := gradeRe.FindStringSubmatch(s)
	if m == nil {
		return GradeRef{}, false
	}
	v, err := strconv.ParseFloat(m[2], 64)
	if err != nil || v <= 0 || v > 10 {
		return GradeRef{}, false
	}
	company := strings.ToUpper(m[1])
	if company == "BECKETT" {
		company = "BGS"
	}
	return GradeRef{Company: company, Value: v}, true
}

// Scale returns the grading scale for a company.
func (l *Lexicon) Scale(company string) []float64 {
	for _, s := range l.GradingScales {
		if strings.EqualFold(s.Company, company) {
			return s.Grades
		}
	}
	return nil
}

// AdjacentGrades returns every grade on the company's scale within step
// grade-points of g, excluding g itself, in ascending order.
func (l *Lexicon) AdjacentGrades(g GradeRef, step float64) []GradeRef {
	var out []GradeRef
	for _, v := range l.Scale(g.Company) {
		d := math.Abs(v - g.Value)
		if d > 0 && d <= step+1e-9 {
			out = append(out, GradeRef{Company: g.Company, Value: v})
		}
	}
	return out
}

// YearRange parses catalog production years ("1996-2004", "2012-Present").
// "Present" resolves to the year of now.
func (c CatalogEntry) YearRange(now time.Time) (from, to int, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(c.Years), "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	from, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	end := strings.TrimSpace(parts[1])
	if strings.EqualFold(end, "present") {
		return from, now.Year(), true
	}
	to, err = strconv.Atoi(end)
	if err != nil || to < from {
		return 0, 0, false
	}
	return from, to, true
}

// StockForSet classifies a set name as chromium, paper or unknown.
// Chromium keywords take precedence ("Topps Chrome" is chromium).
func (l *Lexicon) StockForSet(setName string) string {
	norm := Normalize(setName)
	if norm == "" {
		return "unknown"
	}
	for _, kw := range l.ChromiumKeywords {
		if ContainsPhrase(norm, Normalize(kw)) {
			return "chromium"
		}
	}
	for _, kw := range l.PaperKeywords {
		if ContainsPhrase(norm, Normalize(kw)) {
			return "paper"
		}
	}
	return "unknown"
}

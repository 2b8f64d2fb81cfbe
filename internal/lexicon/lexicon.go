// Package lexicon holds the versioned keyword and dictionary tables used by
// signal normalization, identity resolution, query parsing and valuation.
// Tables are plain data passed by pointer; nothing in this package keeps
// mutable global state.
package lexicon

import (
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Brand is a manufacturer and the phrases that identify it in text.
type Brand struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Set is a product line.
type Set struct {
	Name     string   `yaml:"name"`
	Brand    string   `yaml:"brand"`
	Keywords []string `yaml:"keywords"`
}

// Player is a known-player dictionary entry.
type Player struct {
	Name       string   `yaml:"name"`
	Aliases    []string `yaml:"aliases"`
	Confidence string   `yaml:"confidence"`
}

// CatalogEntry records the production years of a set, e.g. "2012-Present".
type CatalogEntry struct {
	Name  string `yaml:"name"`
	Years string `yaml:"years"`
}

// GradingScale lists every grade a grading company issues.
type GradingScale struct {
	Company string    `yaml:"company"`
	Grades  []float64 `yaml:"grades"`
}

// Lexicon is the full lookup table.
type Lexicon struct {
	Version              string         `yaml:"version"`
	Stopwords            []string       `yaml:"stopwords"`
	Brands               []Brand        `yaml:"brands"`
	Sets                 []Set          `yaml:"sets"`
	Parallels            []string       `yaml:"parallels"`
	ChromiumKeywords     []string       `yaml:"chromium_keywords"`
	PaperKeywords        []string       `yaml:"paper_keywords"`
	ChromiumOnlyFinishes []string       `yaml:"chromium_only_finishes"`
	Players              []Player       `yaml:"players"`
	Catalog              []CatalogEntry `yaml:"catalog"`
	GradingScales        []GradingScale `yaml:"grading_scales"`

	stop      map[string]struct{}
	setPhrase []phrase
	parallels []string
}

type phrase struct {
	text string
	name string
}

// Load reads a YAML lexicon file and overlays it on Default. Any non-empty
// table in the file replaces the corresponding default table.
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "lexicon: read %s", path)
	}

	var file Lexicon
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrap(err, "lexicon: parse")
	}

	lex := defaults()
	if file.Version != "" {
		lex.Version = file.Version
	}
	if len(file.Stopwords) > 0 {
		lex.Stopwords = file.Stopwords
	}
	if len(file.Brands) > 0 {
		lex.Brands = file.Brands
	}
	if len(file.Sets) > 0 {
		lex.Sets = file.Sets
	}
	if len(file.Parallels) > 0 {
		lex.Parallels = file.Parallels
	}
	if len(file.ChromiumKeywords) > 0 {
		lex.ChromiumKeywords = file.ChromiumKeywords
	}
	if len(file.PaperKeywords) > 0 {
		lex.PaperKeywords = file.PaperKeywords
	}
	if len(file.ChromiumOnlyFinishes) > 0 {
		lex.ChromiumOnlyFinishes = file.ChromiumOnlyFinishes
	}
	if len(file.Players) > 0 {
		lex.Players = file.Players
	}
	if len(file.Catalog) > 0 {
		lex.Catalog = file.Catalog
	}
	if len(file.GradingScales) > 0 {
		lex.GradingScales = file.GradingScales
	}
	return lex.Build(), nil
}

// Default returns the built-in lexicon.
func Default() *Lexicon {
	return defaults().Build()
}

// Build indexes the tables. It must be called after constructing a Lexicon
// literal (tests do this with small fixtures) and returns the receiver.
func (l *Lexicon) Build() *Lexicon {
	l.stop = make(map[string]struct{}, len(l.Stopwords))
	for _, w := range l.Stopwords {
		for _, tok := range Tokens(w) {
			l.stop[tok] = struct{}{}
		}
	}

	l.setPhrase = l.setPhrase[:0]
	for _, s := range l.Sets {
		kws := s.Keywords
		if len(kws) == 0 {
			kws = []string{s.Name}
		}
		for _, kw := range kws {
			if n := Normalize(kw); n != "" {
				l.setPhrase = append(l.setPhrase, phrase{text: n, name: s.Name})
			}
		}
	}
	// Longest phrase wins: "topps chrome" before "topps".
	sort.SliceStable(l.setPhrase, func(i, j int) bool {
		return len(l.setPhrase[i].text) > len(l.setPhrase[j].text)
	})

	l.parallels = l.parallels[:0]
	for _, p := range l.Parallels {
		if n := Normalize(p); n != "" {
			l.parallels = append(l.parallels, n)
		}
	}
	sort.SliceStable(l.parallels, func(i, j int) bool {
		return len(l.parallels[i]) > len(l.parallels[j])
	})
	return l
}

// IsStopword reports whether a normalized token is excluded from name
// candidates.
func (l *Lexicon) IsStopword(tok string) bool {
	_, ok := l.stop[tok]
	return ok
}

// MatchBrand returns the first brand whose keyword occurs in text.
func (l *Lexicon) MatchBrand(text string) (string, bool) {
	norm := Normalize(text)
	for _, b := range l.Brands {
		kws := b.Keywords
		if len(kws) == 0 {
			kws = []string{b.Name}
		}
		for _, kw := range kws {
			if ContainsPhrase(norm, Normalize(kw)) {
				return b.Name, true
			}
		}
	}
	return "", false
}

// MatchSet returns the set with the longest keyword occurring in text.
func (l *Lexicon) MatchSet(text string) (string, bool) {
	norm := Normalize(text)
	for _, p := range l.setPhrase {
		if ContainsPhrase(norm, p.text) {
			return p.name, true
		}
	}
	return "", false
}

// SetBrand returns the manufacturer recorded for a set name.
func (l *Lexicon) SetBrand(setName string) (string, bool) {
	key := Normalize(setName)
	for _, s := range l.Sets {
		if Normalize(s.Name) == key && s.Brand != "" {
			return s.Brand, true
		}
	}
	return "", false
}

// MatchParallel returns the longest parallel name occurring in text, in
// normalized form.
func (l *Lexicon) MatchParallel(text string) (string, bool) {
	norm := Normalize(text)
	for _, p := range l.parallels {
		if ContainsPhrase(norm, p) {
			return p, true
		}
	}
	return "", false
}

// LookupPlayer scans text for a known player. Full-name hits carry the
// entry's confidence (default "high"); alias hits carry "medium".
func (l *Lexicon) LookupPlayer(text string) (name string, confidence string, ok bool) {
	norm := Normalize(text)
	for _, p := range l.Players {
		if ContainsPhrase(norm, Normalize(p.Name)) {
			conf := p.Confidence
			if conf == "" {
				conf = "high"
			}
			return p.Name, conf, true
		}
	}
	for _, p := range l.Players {
		for _, a := range p.Aliases {
			if ContainsPhrase(norm, Normalize(a)) {
				return p.Name, "medium", true
			}
		}
	}
	return "", "", false
}

// LookupCatalog returns the catalog entry for a set name.
func (l *Lexicon) LookupCatalog(setName string) (CatalogEntry, bool) {
	key := Normalize(setName)
	if key == "" {
		return CatalogEntry{}, false
	}
	for _, c := range l.Catalog {
		if Normalize(c.Name) == key {
			return c, true
		}
	}
	return CatalogEntry{}, false
}

// IsChromiumOnlyFinish reports whether a parallel name implies a chromium
// card (prizm, refractor, chrome).
func (l *Lexicon) IsChromiumOnlyFinish(parallel string) bool {
	norm := Normalize(parallel)
	for _, f := range l.ChromiumOnlyFinishes {
		if strings.Contains(norm, Normalize(f)) {
			return true
		}
	}
	return false
}

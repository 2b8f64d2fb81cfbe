package lexicon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "luka doncic", Normalize("  Luka Dončić!! "))
	assert.Equal(t, "2023 24 panini prizm 136", Normalize("2023-24 Panini Prizm #136"))
	assert.Equal(t, "", Normalize("©®™"))
	assert.Equal(t, []string{"cooper", "flagg"}, Tokens("COOPER FLAGG"))
}

func TestContainsPhrase(t *testing.T) {
	assert.True(t, ContainsPhrase("2024 topps chrome refractor", "topps chrome"))
	assert.False(t, ContainsPhrase("scoreboard legends", "score"))
	assert.False(t, ContainsPhrase("anything", ""))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Cooper Flagg", TitleCase("cooper flagg"))
	assert.Equal(t, "", TitleCase(""))
}

func TestDefault_Lookups(t *testing.T) {
	lex := Default()

	set, ok := lex.MatchSet("2024 Topps Chrome Refractor #1")
	require.True(t, ok)
	assert.Equal(t, "Topps Chrome", set)

	set, ok = lex.MatchSet("2023-24 Panini Prizm Silver")
	require.True(t, ok)
	assert.Equal(t, "Prizm", set)

	brand, ok := lex.MatchBrand("© 2024 The Topps Company, Inc.")
	require.True(t, ok)
	assert.Equal(t, "Topps", brand)

	b, ok := lex.SetBrand("prizm")
	require.True(t, ok)
	assert.Equal(t, "Panini", b)

	p, ok := lex.MatchParallel("Silver Prizm RC")
	require.True(t, ok)
	assert.Equal(t, "silver prizm", p)

	assert.True(t, lex.IsStopword("topps"))
	assert.True(t, lex.IsStopword("deck"))
	assert.False(t, lex.IsStopword("flagg"))
}

func TestLookupPlayer(t *testing.T) {
	lex := Default()

	name, conf, ok := lex.LookupPlayer("VICTOR WEMBANYAMA ROOKIE")
	require.True(t, ok)
	assert.Equal(t, "Victor Wembanyama", name)
	assert.Equal(t, "high", conf)

	name, conf, ok = lex.LookupPlayer("wemby prizm")
	require.True(t, ok)
	assert.Equal(t, "Victor Wembanyama", name)
	assert.Equal(t, "medium", conf)

	_, _, ok = lex.LookupPlayer("Jane Unknown")
	assert.False(t, ok)
}

func TestStockForSet(t *testing.T) {
	lex := Default()
	assert.Equal(t, "chromium", lex.StockForSet("Topps Chrome"))
	assert.Equal(t, "paper", lex.StockForSet("Topps"))
	assert.Equal(t, "paper", lex.StockForSet("Fleer"))
	assert.Equal(t, "unknown", lex.StockForSet("Mystery Box"))
	assert.Equal(t, "unknown", lex.StockForSet(""))
}

func TestIsChromiumOnlyFinish(t *testing.T) {
	lex := Default()
	assert.True(t, lex.IsChromiumOnlyFinish("Refractor"))
	assert.True(t, lex.IsChromiumOnlyFinish("Silver Prizm"))
	assert.False(t, lex.IsChromiumOnlyFinish("Holo"))
}

func TestParseGrade(t *testing.T) {
	tests := []struct {
		in   string
		want GradeRef
		ok   bool
	}{
		{"PSA 9", GradeRef{"PSA", 9}, true},
		{"bgs 9.5", GradeRef{"BGS", 9.5}, true},
		{"Beckett 10", GradeRef{"BGS", 10}, true},
		{"PSA-8", GradeRef{"PSA", 8}, true},
		{"raw", GradeRef{}, false},
		{"PSA 11", GradeRef{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseGrade(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	assert.Equal(t, "BGS 9.5", GradeRef{"BGS", 9.5}.String())
}

func TestAdjacentGrades(t *testing.T) {
	lex := Default()

	adj := lex.AdjacentGrades(GradeRef{"PSA", 9}, 1)
	assert.Equal(t, []GradeRef{{"PSA", 8}, {"PSA", 8.5}, {"PSA", 10}}, adj)

	adj = lex.AdjacentGrades(GradeRef{"PSA", 10}, 1)
	assert.Equal(t, []GradeRef{{"PSA", 9}}, adj)

	assert.Empty(t, lex.AdjacentGrades(GradeRef{"XYZ", 9}, 1))
}

func TestCatalogYearRange(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	lex := Default()

	entry, ok := lex.LookupCatalog("prizm")
	require.True(t, ok)
	from, to, ok := entry.YearRange(now)
	require.True(t, ok)
	assert.Equal(t, 2012, from)
	assert.Equal(t, 2026, to)

	from, to, ok = CatalogEntry{Years: "1991-2007"}.YearRange(now)
	require.True(t, ok)
	assert.Equal(t, 1991, from)
	assert.Equal(t, 2007, to)

	_, _, ok = CatalogEntry{Years: "sometime"}.YearRange(now)
	assert.False(t, ok)
}

func TestBuild_SmallFixture(t *testing.T) {
	lex := (&Lexicon{
		Stopwords: []string{"acme"},
		Sets:      []Set{{Name: "Acme Gold"}, {Name: "Acme"}},
	}).Build()

	set, ok := lex.MatchSet("acme gold foil")
	require.True(t, ok)
	assert.Equal(t, "Acme Gold", set)
	assert.True(t, lex.IsStopword("acme"))
	_, _, ok = lex.LookupPlayer("anyone")
	assert.False(t, ok)
}

func TestLoad_Overlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yaml")
	data := `
version: "test-1"
players:
  - name: Rookie Phenom
    aliases: [phenom]
    confidence: medium
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	lex, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test-1", lex.Version)

	name, conf, ok := lex.LookupPlayer("ROOKIE PHENOM")
	require.True(t, ok)
	assert.Equal(t, "Rookie Phenom", name)
	assert.Equal(t, "medium", conf)

	// Untouched tables keep defaults.
	_, ok = lex.MatchSet("Topps Chrome")
	assert.True(t, ok)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("players: [unterminated"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

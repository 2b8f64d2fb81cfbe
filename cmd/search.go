package main

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/card-cli/internal/match"
	"github.com/sells-group/card-cli/internal/model"
	"github.com/sells-group/card-cli/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Match marketplace listings against a free-text query",
	Long: `Parses the query into locked constraints (year, set, grade, card number,
parallel, serial, variation, autograph, relic), fetches listings for it and
buckets them into exact and close matches.

Examples:
  search "2023 prizm silver wembanyama psa 10"
  search --parse-only "flagg 2025 chrome #251 /99"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Bool("parse-only", false, "print the parsed query without fetching listings")
	rootCmd.AddCommand(searchCmd)
}

type searchOutput struct {
	Parsed model.ParsedSearch `json:"parsed"`
	Result *model.MatchResult `json:"result,omitempty"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	query := strings.Join(args, " ")

	parsed := search.Parse(query, lex)
	out := searchOutput{Parsed: parsed}

	if parseOnly, _ := cmd.Flags().GetBool("parse-only"); parseOnly {
		return writeJSON(cmd.OutOrStdout(), out)
	}

	src, err := newListingSource(cfg.Listings)
	if err != nil {
		return err
	}
	found, err := src.Search(ctx, query)
	if err != nil {
		return eris.Wrap(err, "search")
	}

	res := match.NewMatcher(lex, newScorer(cfg.Match)).Match(parsed, found)
	out.Result = &res
	return writeJSON(cmd.OutOrStdout(), out)
}

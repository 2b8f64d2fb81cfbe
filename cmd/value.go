package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/card-cli/internal/model"
	"github.com/sells-group/card-cli/internal/store"
	"github.com/sells-group/card-cli/internal/valuation"
)

var valueCmd = &cobra.Command{
	Use:   "value",
	Short: "Estimate a card's current market value",
	Long: `Runs the CMV tier chain (exact grade, grade adjacent, proxy, stale exact,
active listings) for one card. Fresh results are served from the store.

Examples:
  value --player "Victor Wembanyama" --year 2023 --set Prizm --grade "PSA 10"

  # Raw plus several grades with premiums over raw
  value --player "Cooper Flagg" --year 2025 --set "Topps Chrome" --grades "PSA 10,PSA 9"`,
	RunE: runValue,
}

func init() {
	f := valueCmd.Flags()
	addCardFlags(valueCmd)
	f.StringSlice("grades", nil, "value raw and each listed grade instead of --grade")
	f.Bool("no-cache", false, "skip the store and always revalue")
	_ = valueCmd.MarkFlagRequired("player")
	rootCmd.AddCommand(valueCmd)
}

// addCardFlags registers the CardRef flags.
func addCardFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("player", "", "player name")
	f.Int("year", 0, "release year")
	f.String("set", "", "set name")
	f.String("grade", "", `grade label such as "PSA 10" (empty for raw)`)
	f.String("parallel", "", "parallel type")
	f.String("number", "", "card number")
	f.String("notes", "", "free-text notes; print runs such as /99 raise the proxy multiplier")
}

func cardFromFlags(cmd *cobra.Command) model.CardRef {
	f := cmd.Flags()
	var c model.CardRef
	c.Player, _ = f.GetString("player")
	c.Year, _ = f.GetInt("year")
	c.Set, _ = f.GetString("set")
	c.Grade, _ = f.GetString("grade")
	c.ParallelType, _ = f.GetString("parallel")
	c.CardNumber, _ = f.GetString("number")
	c.Notes, _ = f.GetString("notes")
	return c
}

func runValue(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	card := cardFromFlags(cmd)
	grades, _ := cmd.Flags().GetStringSlice("grades")
	noCache, _ := cmd.Flags().GetBool("no-cache")

	src, err := newListingSource(cfg.Listings)
	if err != nil {
		return err
	}
	engine := newEngine(src)

	if len(grades) > 0 {
		return writeJSON(cmd.OutOrStdout(), engine.ValueGrades(ctx, card, grades))
	}

	var st store.Store
	if !noCache {
		st, err = openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "value: open store")
		}
		defer st.Close() //nolint:errcheck

		cached, err := st.GetCmv(ctx, card)
		if err != nil {
			return eris.Wrap(err, "value: read cache")
		}
		if cached != nil && !valuation.IsStaleAfter(cached.Result, engine.Now(), engine.Config().StaleAfter) {
			zap.L().Info("value: served from cache", zap.String("card", card.Key()), zap.String("id", cached.ID))
			return writeJSON(cmd.OutOrStdout(), cached)
		}
	}

	res := engine.Value(ctx, card)
	if st == nil {
		return writeJSON(cmd.OutOrStdout(), model.StoredCmv{Card: card, Result: res, UpdatedAt: engine.Now()})
	}
	stored, err := st.PutCmv(ctx, card, res)
	if err != nil {
		return eris.Wrap(err, "value: write cache")
	}
	return writeJSON(cmd.OutOrStdout(), stored)
}

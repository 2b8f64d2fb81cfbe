package main

import (
	"context"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/card-cli/internal/model"
	"github.com/sells-group/card-cli/internal/store"
	"github.com/sells-group/card-cli/internal/valuation"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Revalue stale CMV results in the store",
	Long: `Scans stored CMV results and revalues every entry that is unavailable or
older than valuation.stale_days, writing the new results back.

Examples:
  refresh
  refresh --limit 500 --concurrency 8`,
	RunE: runRefresh,
}

func init() {
	f := refreshCmd.Flags()
	f.Int("limit", 0, "maximum number of stored results to scan (0=all)")
	f.Int("concurrency", 0, "concurrent revaluations (0=use config)")
	f.Bool("dry-run", false, "report stale entries without revaluing")
	rootCmd.AddCommand(refreshCmd)
}

type refreshSummary struct {
	Scanned   int      `json:"scanned"`
	Stale     int      `json:"stale"`
	Refreshed int64    `json:"refreshed"`
	Failed    int64    `json:"failed"`
	Cards     []string `json:"cards,omitempty"`
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	f := cmd.Flags()
	limit, _ := f.GetInt("limit")
	concurrency, _ := f.GetInt("concurrency")
	dryRun, _ := f.GetBool("dry-run")
	if concurrency <= 0 {
		concurrency = cfg.Batch.Concurrency
	}

	st, err := openStore(ctx)
	if err != nil {
		return eris.Wrap(err, "refresh: open store")
	}
	defer st.Close() //nolint:errcheck

	src, err := newListingSource(cfg.Listings)
	if err != nil {
		return err
	}
	engine := newEngine(src)

	rows, err := st.ListCmv(ctx, store.CmvFilter{Limit: limit})
	if err != nil {
		return eris.Wrap(err, "refresh: list")
	}

	stale := staleEntries(rows, engine)
	sum := refreshSummary{Scanned: len(rows), Stale: len(stale)}
	for _, row := range stale {
		sum.Cards = append(sum.Cards, row.Card.Key())
	}
	if dryRun {
		return writeJSON(cmd.OutOrStdout(), sum)
	}

	refreshed, failed := revalue(ctx, st, engine, stale, concurrency)
	sum.Refreshed, sum.Failed = refreshed, failed

	zap.L().Info("refresh: complete",
		zap.Int("scanned", sum.Scanned),
		zap.Int("stale", sum.Stale),
		zap.Int64("refreshed", refreshed),
		zap.Int64("failed", failed),
	)
	return writeJSON(cmd.OutOrStdout(), sum)
}

func staleEntries(rows []model.StoredCmv, engine *valuation.Engine) []model.StoredCmv {
	now, maxAge := engine.Now(), engine.Config().StaleAfter
	var out []model.StoredCmv
	for _, row := range rows {
		if valuation.IsStaleAfter(row.Result, now, maxAge) {
			out = append(out, row)
		}
	}
	return out
}

// revalue runs one job per stale card. A failed write is counted and does
// not stop the other jobs.
func revalue(ctx context.Context, st store.Store, engine *valuation.Engine, stale []model.StoredCmv, concurrency int) (refreshed, failed int64) {
	var ok, bad atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for _, row := range stale {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			res := engine.Value(gctx, row.Card)
			if _, err := st.PutCmv(gctx, row.Card, res); err != nil {
				zap.L().Warn("refresh: write failed", zap.String("card", row.Card.Key()), zap.Error(err))
				bad.Add(1)
				return nil
			}
			ok.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return ok.Load(), bad.Load()
}

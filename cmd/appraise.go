package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/card-cli/internal/appraisal"
	"github.com/sells-group/card-cli/internal/identity"
	"github.com/sells-group/card-cli/internal/model"
	"github.com/sells-group/card-cli/internal/store"
)

var appraiseCmd = &cobra.Command{
	Use:   "appraise",
	Short: "Identify, value and grade a card end to end",
	Long: `Resolves the card identity, values it raw and at PSA 10, 9 and 8, models
the grade distribution and reports the expected graded value.

Examples:
  appraise --front front.jpg --back back.jpg
  appraise --lines lines.txt --vision reply.json --grade-range "PSA 9" --notes "/99"`,
	RunE: runAppraise,
}

func init() {
	addInputFlags(appraiseCmd)
	f := appraiseCmd.Flags()
	f.String("grade-range", "", "override the vision grade range")
	f.String("grade-confidence", "", "grade confidence: high, medium or low")
	f.String("notes", "", "free-text notes passed to valuation")
	f.Bool("no-cache", false, "skip the store and always revalue")
	rootCmd.AddCommand(appraiseCmd)
}

func runAppraise(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	f := cmd.Flags()

	in, err := gatherInputs(ctx, cmd)
	if err != nil {
		return err
	}

	req := appraisal.Request{
		Lines:    in.Lines,
		Vision:   in.Vision,
		Evidence: in.Evidence,
		Images:   model.StatsOf(in.Images),
	}
	req.GradeRange, _ = f.GetString("grade-range")
	req.Notes, _ = f.GetString("notes")
	if confText, _ := f.GetString("grade-confidence"); confText != "" {
		conf, ok := model.ParseConfidence(confText)
		if !ok {
			return eris.Errorf("appraise: --grade-confidence must be high, medium or low (got %q)", confText)
		}
		req.GradeConfidence = conf
	}

	src, err := newListingSource(cfg.Listings)
	if err != nil {
		return err
	}

	var cache store.Store
	if noCache, _ := f.GetBool("no-cache"); !noCache {
		cache, err = openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "appraise: open store")
		}
		defer cache.Close() //nolint:errcheck
	}

	a := appraisal.New(lex, identity.NewResolver(lex), newEngine(src), newModeler(cfg.Grade), cache)
	return writeJSON(cmd.OutOrStdout(), a.Appraise(ctx, req))
}

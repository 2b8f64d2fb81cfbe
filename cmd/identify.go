package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/card-cli/internal/identity"
	"github.com/sells-group/card-cli/internal/signal"
)

var identifyCmd = &cobra.Command{
	Use:   "identify",
	Short: "Resolve a card identity from photos or extracted signals",
	Long: `Fuses OCR lines and a vision-model guess into a confidence-scored card
identity with per-field sources and warnings.

Examples:
  # Photos through the configured OCR provider and vision model
  identify --front front.jpg --back back.jpg

  # Pre-extracted signals
  identify --lines lines.txt --vision reply.json`,
	RunE: runIdentify,
}

func init() {
	addInputFlags(identifyCmd)
	rootCmd.AddCommand(identifyCmd)
}

func runIdentify(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	in, err := gatherInputs(ctx, cmd)
	if err != nil {
		return err
	}

	now := time.Now()
	ocrSignals := signal.BuildOCR(in.Lines, lex, now)
	id := identity.NewResolver(lex).WithNow(now).Resolve(ocrSignals, in.Vision)

	return writeJSON(cmd.OutOrStdout(), id)
}

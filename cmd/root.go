package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/card-cli/internal/config"
	"github.com/sells-group/card-cli/internal/lexicon"
)

var (
	cfg *config.Config
	lex *lexicon.Lexicon
)

var rootCmd = &cobra.Command{
	Use:   "card-cli",
	Short: "Trading card identification and valuation",
	Long:  "Resolves card identity from OCR and vision signals, matches marketplace listings, estimates CMV through tiered comps, and models grade probabilities.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		l, err := loadLexicon(cfg.Lexicon)
		if err != nil {
			return fmt.Errorf("load lexicon: %w", err)
		}
		lex = l

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadLexicon(c config.LexiconConfig) (*lexicon.Lexicon, error) {
	if c.Path == "" {
		return lexicon.Default(), nil
	}
	l, err := lexicon.Load(c.Path)
	if err != nil {
		return nil, err
	}
	zap.L().Info("lexicon: overlay loaded", zap.String("path", c.Path), zap.String("version", l.Version))
	return l, nil
}

package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/card-cli/internal/model"
	"github.com/sells-group/card-cli/internal/ocr"
	"github.com/sells-group/card-cli/internal/signal"
	"github.com/sells-group/card-cli/internal/vision"
	"github.com/sells-group/card-cli/pkg/anthropic"
)

// cardInputs is everything the perception side produced for one card.
type cardInputs struct {
	Images   []model.CardImage
	Lines    []model.OcrLine
	Vision   model.VisionOutcome
	Evidence *model.GradeEvidence
}

// addInputFlags registers the flags shared by identify and appraise.
func addInputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("front", "", "front photo path")
	f.String("back", "", "back photo path")
	f.String("lines", "", "OCR lines file: JSON array of lines or plain text (skips the OCR provider)")
	f.String("vision", "", "raw vision reply file (skips the vision model)")
}

// gatherInputs loads photos and fills OCR lines and the vision guess from
// files when given, otherwise from the configured providers.
func gatherInputs(ctx context.Context, cmd *cobra.Command) (cardInputs, error) {
	var in cardInputs

	for _, side := range []string{"front", "back"} {
		path, _ := cmd.Flags().GetString(side)
		if path == "" {
			continue
		}
		img, err := ocr.ReadImage(path, side)
		if err != nil {
			return in, err
		}
		in.Images = append(in.Images, img)
	}

	linesPath, _ := cmd.Flags().GetString("lines")
	switch {
	case linesPath != "":
		lines, err := readLines(linesPath)
		if err != nil {
			return in, err
		}
		in.Lines = lines
	case len(in.Images) > 0:
		ext, err := ocr.NewExtractor(cfg.OCR)
		if err != nil {
			return in, err
		}
		lines, err := ext.ExtractLines(ctx, in.Images)
		if err != nil {
			// identity still resolves from the vision guess alone
			zap.L().Warn("ocr: extraction failed", zap.Error(err))
		}
		in.Lines = lines
	}

	visionPath, _ := cmd.Flags().GetString("vision")
	switch {
	case visionPath != "":
		raw, err := os.ReadFile(visionPath)
		if err != nil {
			return in, eris.Wrapf(err, "read vision reply %s", visionPath)
		}
		in.Vision = signal.DecodeVision(raw)
	case len(in.Images) > 0 && cfg.Anthropic.Key != "":
		g := vision.NewAnthropicGuesser(anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model, cfg.Anthropic.MaxTokens)
		a := g.Assess(ctx, in.Images)
		in.Vision = a.Outcome
		if a.Evidence != (model.GradeEvidence{}) {
			ev := a.Evidence
			in.Evidence = &ev
		}
	case len(in.Images) > 0:
		zap.L().Info("vision: anthropic.key not set, skipping vision guess")
	}

	return in, nil
}

// readLines accepts a JSON array of OCR lines or plain text, one line per
// row. Plain text lines are attributed to the front.
func readLines(path string) ([]model.OcrLine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read lines %s", path)
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		var lines []model.OcrLine
		if err := json.Unmarshal(trimmed, &lines); err != nil {
			return nil, eris.Wrap(err, "parse lines")
		}
		return lines, nil
	}

	var lines []model.OcrLine
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if text := strings.TrimSpace(sc.Text()); text != "" {
			lines = append(lines, model.OcrLine{Text: text, Side: "front"})
		}
	}
	return lines, eris.Wrap(sc.Err(), "scan lines")
}

package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/card-cli/internal/grade"
	"github.com/sells-group/card-cli/internal/model"
	"github.com/sells-group/card-cli/internal/ocr"
)

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Convert a grade range into PSA and BGS bucket probabilities",
	Long: `Maps a model grade-range label and confidence to a distribution over PSA
(10, 9, 8, 7 or lower) and BGS buckets. Without a usable range the estimate
falls back to photo statistics.

Examples:
  grade --range "PSA 8-9" --confidence medium
  grade --range "PSA 10" --confidence high --centering 50/50 --corners sharp --surface clean --edges clean
  grade --front front.jpg --back back.jpg`,
	RunE: runGrade,
}

func init() {
	f := gradeCmd.Flags()
	f.String("range", "", `grade range label such as "PSA 8-9"`)
	f.String("confidence", "", "model confidence: high, medium or low")
	f.String("centering", "", `centering evidence such as "55/45"`)
	f.String("corners", "", "corner evidence")
	f.String("surface", "", "surface evidence")
	f.String("edges", "", "edge evidence")
	f.String("front", "", "front photo path (image-stats fallback)")
	f.String("back", "", "back photo path (image-stats fallback)")
	rootCmd.AddCommand(gradeCmd)
}

func runGrade(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	label, _ := f.GetString("range")
	confText, _ := f.GetString("confidence")

	in := grade.Input{GradeRange: label}
	if confText != "" {
		conf, ok := model.ParseConfidence(confText)
		if !ok {
			return eris.Errorf("grade: --confidence must be high, medium or low (got %q)", confText)
		}
		in.Confidence = conf
	}

	var ev model.GradeEvidence
	ev.Centering, _ = f.GetString("centering")
	ev.Corners, _ = f.GetString("corners")
	ev.Surface, _ = f.GetString("surface")
	ev.Edges, _ = f.GetString("edges")
	if ev != (model.GradeEvidence{}) {
		in.Evidence = &ev
	}

	var images []model.CardImage
	for _, side := range []string{"front", "back"} {
		path, _ := f.GetString(side)
		if path == "" {
			continue
		}
		img, err := ocr.ReadImage(path, side)
		if err != nil {
			return err
		}
		images = append(images, img)
	}
	in.Images = model.StatsOf(images)

	return writeJSON(cmd.OutOrStdout(), newModeler(cfg.Grade).Estimate(in))
}

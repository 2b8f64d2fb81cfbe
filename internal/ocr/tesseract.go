package ocr

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/card-cli/internal/model"
)

// Tesseract extracts text with the local tesseract binary, piping each
// image through stdin.
type Tesseract struct {
	binPath string
}

// NewTesseract creates a Tesseract extractor. If binPath is empty, "tesseract" is used.
func NewTesseract(binPath string) *Tesseract {
	if binPath == "" {
		binPath = "tesseract"
	}
	return &Tesseract{binPath: binPath}
}

// ExtractLines runs tesseract once per image.
func (t *Tesseract) ExtractLines(ctx context.Context, images []model.CardImage) ([]model.OcrLine, error) {
	var lines []model.OcrLine
	for i, img := range images {
		cmd := exec.CommandContext(ctx, t.binPath, "stdin", "stdout", "--psm", "11")
		cmd.Stdin = bytes.NewReader(img.Data)

		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			return nil, eris.Wrapf(err, "ocr: tesseract failed for image %d: %s", i, stderr.String())
		}
		got := splitLines(stdout.String(), i, img.Side)
		zap.L().Debug("ocr: tesseract image", zap.Int("index", i), zap.Int("lines", len(got)))
		lines = append(lines, got...)
	}
	return lines, nil
}

// Package ocr adapts text-extraction engines to card photos.
package ocr

import (
	"context"
	"net/http"
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/card-cli/internal/config"
	"github.com/sells-group/card-cli/internal/model"
)

// Extractor reads text lines from card images. Each line carries the index
// and side of the image it came from.
type Extractor interface {
	ExtractLines(ctx context.Context, images []model.CardImage) ([]model.OcrLine, error)
}

// NewExtractor creates an Extractor based on config.
func NewExtractor(cfg config.OCRConfig) (Extractor, error) {
	switch cfg.Provider {
	case "local", "":
		return NewTesseract(cfg.TesseractPath), nil
	case "mistral":
		if cfg.MistralKey == "" {
			return nil, eris.New("ocr: mistral provider requires mistral_key")
		}
		return NewMistralOCR(cfg.MistralKey, cfg.MistralModel), nil
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}
}

// ReadImage loads a photo from disk and sniffs its media type.
func ReadImage(path, side string) (model.CardImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.CardImage{}, eris.Wrapf(err, "ocr: read image %s", path)
	}
	mediaType := http.DetectContentType(data)
	if !strings.HasPrefix(mediaType, "image/") {
		return model.CardImage{}, eris.Errorf("ocr: %s is %s, not an image", path, mediaType)
	}
	return model.CardImage{Path: path, Side: side, MediaType: mediaType, Data: data}, nil
}

var (
	mdPrefixRe = regexp.MustCompile(`^\s*(?:#{1,6}\s+|[-*>+]\s+)`)
	mdRuleRe   = regexp.MustCompile(`^[\s|:\-=*_]*$`)
)

// splitLines turns engine output into trimmed, non-empty lines, dropping
// markdown decoration.
func splitLines(text string, index int, side string) []model.OcrLine {
	var out []model.OcrLine
	for _, raw := range strings.Split(text, "\n") {
		if mdRuleRe.MatchString(raw) {
			continue
		}
		line := mdPrefixRe.ReplaceAllString(raw, "")
		line = strings.NewReplacer("**", "", "__", "", "`", "", "|", " ").Replace(line)
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		idx := index
		out = append(out, model.OcrLine{Text: line, ImageIndex: &idx, Side: side})
	}
	return out
}

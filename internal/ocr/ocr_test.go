package ocr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/card-cli/internal/config"
	"github.com/sells-group/card-cli/internal/model"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestNewExtractor_Local(t *testing.T) {
	ext, err := NewExtractor(config.OCRConfig{Provider: "local", TesseractPath: "/usr/bin/tesseract"})
	require.NoError(t, err)
	assert.IsType(t, &Tesseract{}, ext)
}

func TestNewExtractor_LocalDefault(t *testing.T) {
	ext, err := NewExtractor(config.OCRConfig{})
	require.NoError(t, err)
	require.IsType(t, &Tesseract{}, ext)
	assert.Equal(t, "tesseract", ext.(*Tesseract).binPath)
}

func TestNewExtractor_MistralMissingKey(t *testing.T) {
	_, err := NewExtractor(config.OCRConfig{Provider: "mistral"})
	assert.ErrorContains(t, err, "mistral provider requires mistral_key")
}

func TestNewExtractor_Mistral(t *testing.T) {
	ext, err := NewExtractor(config.OCRConfig{Provider: "mistral", MistralKey: "k"})
	require.NoError(t, err)
	require.IsType(t, &MistralOCR{}, ext)
	assert.Equal(t, defaultMistralModel, ext.(*MistralOCR).model)
}

func TestNewExtractor_UnknownProvider(t *testing.T) {
	_, err := NewExtractor(config.OCRConfig{Provider: "unknown"})
	assert.ErrorContains(t, err, `unknown provider "unknown"`)
}

func TestSplitLines(t *testing.T) {
	text := "# 2025 TOPPS CHROME\n\n| #251 | COOPER FLAGG |\n|---|---|\n- **ROOKIE**\n© 2025 The Topps Company"
	lines := splitLines(text, 1, "back")

	var got []string
	for _, l := range lines {
		got = append(got, l.Text)
		require.NotNil(t, l.ImageIndex)
		assert.Equal(t, 1, *l.ImageIndex)
		assert.True(t, l.IsBack())
	}
	assert.Equal(t, []string{"2025 TOPPS CHROME", "#251 COOPER FLAGG", "ROOKIE", "© 2025 The Topps Company"}, got)
}

func TestReadImage(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "front.png")
	require.NoError(t, os.WriteFile(img, pngHeader, 0o600))

	got, err := ReadImage(img, "front")
	require.NoError(t, err)
	assert.Equal(t, "image/png", got.MediaType)
	assert.Equal(t, "front", got.Side)
	assert.Equal(t, pngHeader, got.Data)

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0o600))
	_, err = ReadImage(txt, "")
	assert.ErrorContains(t, err, "not an image")

	_, err = ReadImage(filepath.Join(dir, "missing.png"), "")
	assert.ErrorContains(t, err, "ocr: read image")
}

func TestMistralOCR_ExtractLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var req mistralOCRRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "image_url", req.Document.Type)
		assert.True(t, strings.HasPrefix(req.Document.ImageURL, "data:image/png;base64,"))

		_ = json.NewEncoder(w).Encode(mistralOCRResponse{Pages: []mistralOCRPage{
			{Index: 0, Markdown: "COOPER FLAGG\n\n©2025 Topps"},
		}})
	}))
	defer srv.Close()

	m := NewMistralOCR("test-key", "")
	m.endpoint = srv.URL

	lines, err := m.ExtractLines(context.Background(), []model.CardImage{
		{Side: "front", MediaType: "image/png", Data: pngHeader},
		{Side: "back", MediaType: "image/png", Data: pngHeader},
	})
	require.NoError(t, err)
	require.Len(t, lines, 4)
	assert.Equal(t, "COOPER FLAGG", lines[0].Text)
	assert.Equal(t, "front", lines[0].Side)
	assert.Equal(t, "back", lines[3].Side)
	assert.Equal(t, 1, *lines[3].ImageIndex)
}

func TestMistralOCR_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"bad key"}`))
	}))
	defer srv.Close()

	m := NewMistralOCR("k", "")
	m.endpoint = srv.URL
	_, err := m.ExtractLines(context.Background(), []model.CardImage{{MediaType: "image/png", Data: pngHeader}})
	assert.ErrorContains(t, err, "mistral API returned 401")
}

func TestTesseract_ExtractLines(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stub")
	}
	bin := filepath.Join(t.TempDir(), "tesseract")
	script := "#!/bin/sh\ncat > /dev/null\nprintf 'COOPER FLAGG\\n\\n2025 Topps Chrome\\n'\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))

	lines, err := NewTesseract(bin).ExtractLines(context.Background(), []model.CardImage{{Side: "front", Data: pngHeader}})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "2025 Topps Chrome", lines[1].Text)
	assert.Equal(t, "front", lines[1].Side)
}

func TestTesseract_Failure(t *testing.T) {
	_, err := NewTesseract(filepath.Join(t.TempDir(), "nope")).
		ExtractLines(context.Background(), []model.CardImage{{Data: pngHeader}})
	assert.ErrorContains(t, err, "tesseract failed")
}

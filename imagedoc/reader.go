// Package imagedoc converts image files to Markdown using OCR.
//
// The image is decoded, run through the preprocessing pipeline and
// handed to the OCR engine. The output records the image metadata
// followed by the recognized text. Binaries built without the "ocr"
// tag still produce the metadata, with a note in place of the text.
package imagedoc

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/babissal/filetomd/ocr"
	"github.com/babissal/filetomd/preprocess"
)

const ocrDisabledNote = "*OCR is not enabled in this build. Rebuild with -tags ocr to extract text.*"

// Config holds the options for an image converter.
type Config struct {
	// Logger receives debug output. Defaults to slog.Default().
	Logger *slog.Logger

	// Languages are Tesseract language codes passed to the OCR engine.
	// Empty means Tesseract's default (English).
	Languages []string
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Converter converts image files to Markdown.
type Converter struct {
	logger    *slog.Logger
	languages []string
	pipeline  preprocess.Pipeline
}

// New creates an image converter.
func New(cfg Config) *Converter {
	cfg.defaults()
	return &Converter{
		logger:    cfg.Logger,
		languages: cfg.Languages,
		pipeline:  preprocess.New(preprocess.Full),
	}
}

// Convert reads the image at path and returns a Markdown document with
// the image metadata and any text recognized in it.
func (c *Converter) Convert(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}
	bounds := img.Bounds()

	text, note, err := c.recognize(img)
	if err != nil {
		return "", err
	}

	markdown := render(filepath.Base(path), format, bounds.Dx(), bounds.Dy(), text, note)
	c.logger.Debug("converted image", "path", path, "format", format, "chars", len(text))
	return markdown, nil
}

// recognize runs the preprocessing pipeline and the OCR engine on img.
// When the binary was built without OCR support it returns a note for
// the output instead of failing the conversion.
func (c *Converter) recognize(img image.Image) (text, note string, err error) {
	engine, err := ocr.New(c.languages...)
	if err != nil {
		if !ocr.Available() {
			return "", ocrDisabledNote, nil
		}
		return "", "", fmt.Errorf("failed to initialize ocr: %w", err)
	}
	defer engine.Close()

	var buf bytes.Buffer
	if err := png.Encode(&buf, c.pipeline.Process(img)); err != nil {
		return "", "", fmt.Errorf("failed to encode image for ocr: %w", err)
	}

	text, err = engine.Recognize(buf.Bytes())
	if err != nil {
		return "", "", fmt.Errorf("failed to recognize text: %w", err)
	}
	return text, "", nil
}

// render builds the Markdown document. A non-empty note replaces the
// extracted text section.
func render(name, format string, width, height int, text, note string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Image: %s\n\n", name)
	fmt.Fprintf(&b, "**Format:** %s | **Size:** %dx%d\n\n", strings.ToUpper(format), width, height)

	switch {
	case note != "":
		b.WriteString(note)
	case text != "":
		b.WriteString("## Extracted Text\n\n")
		b.WriteString(text)
	default:
		b.WriteString("*No text detected in image.*")
	}
	return b.String()
}

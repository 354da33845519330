//go:build ocr

// Package ocr extracts text from images using the Tesseract engine via
// gosseract. It compiles only when the "ocr" build tag is set; without
// the tag the stub in ocr_stub.go takes its place and every operation
// returns ErrNotEnabled.
//
// Tesseract must be installed on the system. On macOS, install via:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Available reports whether OCR support was compiled in.
func Available() bool { return true }

// Engine performs text recognition on encoded image bytes.
type Engine struct {
	client *gosseract.Client
}

// New creates an OCR engine recognizing the given languages, identified
// by Tesseract language codes ("eng", "fra", "deu"). With no languages
// Tesseract's default (English) applies. The engine should be closed
// when no longer needed to release resources.
func New(languages ...string) (*Engine, error) {
	client := gosseract.NewClient()
	if len(languages) > 0 {
		if err := client.SetLanguage(languages...); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set languages: %w", err)
		}
	}
	return &Engine{client: client}, nil
}

// Close releases Tesseract resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// Recognize performs OCR on image data (PNG, TIFF, JPEG, etc.).
// Returns the recognized text with leading/trailing whitespace trimmed.
func (e *Engine) Recognize(imageData []byte) (string, error) {
	if err := e.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	return strings.TrimSpace(text), nil
}

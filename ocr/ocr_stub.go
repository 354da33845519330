//go:build !ocr

// Package ocr extracts text from images using the Tesseract engine via
// gosseract.
//
// This is the stub implementation used when the "ocr" build tag is not
// set. All operations return ErrNotEnabled. To enable OCR, rebuild with
// the "ocr" build tag:
//
//	go build -tags ocr
//
// This requires Tesseract to be installed. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

// Available reports whether OCR support was compiled in.
func Available() bool { return false }

// Engine is a stub that fails every operation with ErrNotEnabled.
type Engine struct{}

// New returns ErrNotEnabled. Rebuild with -tags ocr to enable
// text recognition.
func New(languages ...string) (*Engine, error) {
	return nil, ErrNotEnabled
}

// Close is a no-op for the stub engine.
// It is safe to call on a nil engine.
func (e *Engine) Close() error { return nil }

// Recognize returns ErrNotEnabled.
func (e *Engine) Recognize(imageData []byte) (string, error) {
	return "", ErrNotEnabled
}

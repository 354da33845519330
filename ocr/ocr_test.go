//go:build ocr

package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// createTestPNG creates a simple PNG image with a block pattern.
// OCR may or may not recognize anything in it; tests only verify the
// call path does not fail.
func createTestPNG(width, height int) []byte {
	img := image.NewGray(image.Rect(0, 0, width, height))

	// Fill with white
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}

	// Draw some black pixels (simple pattern)
	for x := 10; x < 50; x++ {
		for y := 10; y < 30; y++ {
			img.Set(x, y, color.Black)
		}
	}

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func TestNew(t *testing.T) {
	engine, err := New()
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	defer engine.Close()

	if engine == nil {
		t.Error("Expected non-nil engine")
	}
	if !Available() {
		t.Error("Expected Available() to be true with the ocr build tag")
	}
}

func TestRecognize(t *testing.T) {
	engine, err := New("eng")
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	defer engine.Close()

	pngData := createTestPNG(100, 50)

	// We don't check the actual text since our test image is just a
	// rectangle; we just verify the method doesn't fail.
	_, err = engine.Recognize(pngData)
	if err != nil {
		t.Errorf("Recognize failed: %v", err)
	}
}

func TestClose(t *testing.T) {
	engine, err := New()
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}

	// First close should succeed
	err = engine.Close()
	if err != nil {
		t.Errorf("Close failed: %v", err)
	}

	// Second close should also be safe (nil client)
	engine.client = nil
	err = engine.Close()
	if err != nil {
		t.Errorf("Close on nil client failed: %v", err)
	}
}

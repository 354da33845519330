package preprocess

import (
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/draw"
)

// Helper to build a grayscale image from explicit pixel values.
func grayImage(t *testing.T, width, height int, pixels []uint8) *image.Gray {
	t.Helper()
	if len(pixels) != width*height {
		t.Fatalf("grayImage: %d pixels for %dx%d", len(pixels), width, height)
	}
	img := image.NewGray(image.Rect(0, 0, width, height))
	copy(img.Pix, pixels)
	return img
}

func TestNew_SelectsPipeline(t *testing.T) {
	if _, ok := New(Full).(fullPipeline); !ok {
		t.Errorf("New(Full) = %T, want fullPipeline", New(Full))
	}
	if _, ok := New(Basic).(basicPipeline); !ok {
		t.Errorf("New(Basic) = %T, want basicPipeline", New(Basic))
	}
}

func TestGrayscale_ConvertsColor(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.White)
	src.Set(1, 0, color.Black)

	got := grayscale(src)
	if got.Pix[0] != 255 {
		t.Errorf("white pixel converted to %d, want 255", got.Pix[0])
	}
	if got.Pix[1] != 0 {
		t.Errorf("black pixel converted to %d, want 0", got.Pix[1])
	}
}

func TestGrayscale_NormalizesBounds(t *testing.T) {
	src := image.NewGray(image.Rect(5, 5, 8, 7))
	got := grayscale(src)
	want := image.Rect(0, 0, 3, 2)
	if got.Bounds() != want {
		t.Errorf("Bounds = %v, want %v", got.Bounds(), want)
	}
}

func TestUpscaleIfSmall(t *testing.T) {
	small := image.NewGray(image.Rect(0, 0, 100, 50))
	got := upscaleIfSmall(small, draw.NearestNeighbor)
	if got.Bounds().Dx() != 200 || got.Bounds().Dy() != 100 {
		t.Errorf("upscaled to %v, want 200x100", got.Bounds())
	}

	large := image.NewGray(image.Rect(0, 0, 1200, 50))
	if got := upscaleIfSmall(large, draw.NearestNeighbor); got != large {
		t.Error("Expected wide image to be returned unchanged")
	}
}

func TestStretchContrast(t *testing.T) {
	img := grayImage(t, 3, 1, []uint8{100, 150, 200})
	got := stretchContrast(img)
	want := []uint8{0, 128, 255}
	for i, p := range got.Pix {
		if p != want[i] {
			t.Errorf("pixel %d = %d, want %d", i, p, want[i])
		}
	}
}

func TestStretchContrast_FlatImage(t *testing.T) {
	img := grayImage(t, 2, 2, []uint8{128, 128, 128, 128})
	got := stretchContrast(img)
	for i, p := range got.Pix {
		if p != 128 {
			t.Errorf("pixel %d = %d, want 128 (flat image unchanged)", i, p)
		}
	}
}

func TestOtsuThreshold_SeparatesBimodal(t *testing.T) {
	pixels := make([]uint8, 100)
	for i := range pixels {
		if i < 50 {
			pixels[i] = 10
		} else {
			pixels[i] = 240
		}
	}
	img := grayImage(t, 10, 10, pixels)

	th := otsuThreshold(img)
	if th < 10 || th >= 240 {
		t.Errorf("threshold = %d, want a value separating 10 from 240", th)
	}
}

func TestBinarize(t *testing.T) {
	img := grayImage(t, 4, 1, []uint8{10, 120, 130, 250})
	got := binarize(img, 128)
	want := []uint8{0, 0, 255, 255}
	for i, p := range got.Pix {
		if p != want[i] {
			t.Errorf("pixel %d = %d, want %d", i, p, want[i])
		}
	}
}

func TestSharpen_SmallImageUntouched(t *testing.T) {
	img := grayImage(t, 2, 2, []uint8{0, 255, 255, 0})
	if got := sharpen(img); got != img {
		t.Error("Expected image below 3x3 to be returned unchanged")
	}
}

func TestFullPipeline_OutputIsBinary(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			src.SetGray(x, y, color.Gray{Y: uint8(x * 12)})
		}
	}

	got := New(Full).Process(src)
	for i, p := range got.Pix {
		if p != 0 && p != 255 {
			t.Fatalf("pixel %d = %d, want 0 or 255 after binarization", i, p)
		}
	}
}

func TestBasicPipeline_GrayscaleAndUpscale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 40))
	got := New(Basic).Process(src)
	if got.Bounds().Dx() != 200 || got.Bounds().Dy() != 80 {
		t.Errorf("Process bounds = %v, want 200x80", got.Bounds())
	}
}

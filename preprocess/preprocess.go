// Package preprocess prepares decoded images for text recognition.
//
// Two pipelines are provided. Full applies the complete enhancement
// chain: grayscale conversion, upscaling of small images, contrast
// stretching, Otsu binarization and an unsharp mask. Basic only
// converts to grayscale and upscales, for callers that process many
// images and favor throughput over accuracy. The pipeline is selected
// once by New; the steps themselves never branch on mode.
package preprocess

import (
	"image"

	"golang.org/x/image/draw"
)

const (
	// Images narrower than this are upscaled before recognition.
	minWidthForUpscale = 1000
	upscaleFactor      = 2

	// Unsharp mask parameters.
	sharpenAmount    = 1.5
	sharpenThreshold = 3
)

// Pipeline prepares a decoded image for text recognition.
type Pipeline interface {
	Process(src image.Image) *image.Gray
}

// Mode selects the preprocessing pipeline.
type Mode int

const (
	// Full runs the complete enhancement chain.
	Full Mode = iota
	// Basic converts to grayscale and upscales small images only.
	Basic
)

// New returns the pipeline implementing the given mode.
func New(mode Mode) Pipeline {
	if mode == Basic {
		return basicPipeline{}
	}
	return fullPipeline{}
}

type fullPipeline struct{}

func (fullPipeline) Process(src image.Image) *image.Gray {
	img := grayscale(src)
	img = upscaleIfSmall(img, draw.CatmullRom)
	img = stretchContrast(img)
	img = binarize(img, otsuThreshold(img))
	return sharpen(img)
}

type basicPipeline struct{}

func (basicPipeline) Process(src image.Image) *image.Gray {
	return upscaleIfSmall(grayscale(src), draw.NearestNeighbor)
}

// grayscale copies src into a fresh 8-bit grayscale image anchored at
// the origin. Later steps rely on Pix covering exactly the pixel rect.
func grayscale(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// upscaleIfSmall scales img by upscaleFactor when its width is below
// minWidthForUpscale. Larger images are returned unchanged.
func upscaleIfSmall(img *image.Gray, scaler draw.Scaler) *image.Gray {
	b := img.Bounds()
	if b.Dx() >= minWidthForUpscale {
		return img
	}
	dst := image.NewGray(image.Rect(0, 0, b.Dx()*upscaleFactor, b.Dy()*upscaleFactor))
	scaler.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// stretchContrast linearly rescales intensities so the darkest pixel
// maps to 0 and the brightest to 255. Flat images are left unchanged.
func stretchContrast(img *image.Gray) *image.Gray {
	lo, hi := uint8(255), uint8(0)
	for _, p := range img.Pix {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	if hi <= lo {
		return img
	}

	scale := 255.0 / float64(hi-lo)
	for i, p := range img.Pix {
		img.Pix[i] = uint8(float64(p-lo)*scale + 0.5)
	}
	return img
}

// otsuThreshold computes the global binarization threshold maximizing
// the between-class variance of the intensity histogram.
func otsuThreshold(img *image.Gray) uint8 {
	var hist [256]int
	for _, p := range img.Pix {
		hist[p]++
	}
	total := float64(len(img.Pix))
	if total == 0 {
		return 128
	}

	var sum float64
	for i, n := range hist {
		sum += float64(i) * float64(n)
	}

	var sumB, wB, best float64
	var threshold uint8
	for i := 0; i < 256; i++ {
		wB += float64(hist[i])
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(i) * float64(hist[i])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = uint8(i)
		}
	}
	return threshold
}

// binarize maps pixels above the threshold to white, the rest to black.
func binarize(img *image.Gray, threshold uint8) *image.Gray {
	for i, p := range img.Pix {
		if p > threshold {
			img.Pix[i] = 255
		} else {
			img.Pix[i] = 0
		}
	}
	return img
}

// sharpen applies an unsharp mask: the difference between each pixel
// and its 3x3 box blur is amplified by sharpenAmount. Differences
// below sharpenThreshold are left alone so noise is not amplified.
// Border pixels are copied unchanged.
func sharpen(img *image.Gray) *image.Gray {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w < 3 || h < 3 {
		return img
	}

	out := image.NewGray(img.Bounds())
	copy(out.Pix, img.Pix)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			var sum int
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					sum += int(img.Pix[(y+dy)*img.Stride+(x+dx)])
				}
			}
			orig := int(img.Pix[y*img.Stride+x])
			diff := orig - sum/9
			if diff < sharpenThreshold && diff > -sharpenThreshold {
				continue
			}
			v := orig + int(float64(diff)*sharpenAmount)
			if v < 0 {
				v = 0
			} else if v > 255 {
				v = 255
			}
			out.Pix[y*out.Stride+x] = uint8(v)
		}
	}
	return out
}

package ocr

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// MinWidth is the width small photos are upscaled to before recognition
const MinWidth = 1400

// Preprocess converts a photo into a black and white image sized for
// Tesseract: grayscale, upscaled when narrow, lightly sharpened and
// binarized with Otsu's threshold.
func Preprocess(src image.Image) *image.NRGBA {
	img := imaging.Grayscale(src)
	if img.Bounds().Dx() < MinWidth {
		img = imaging.Resize(img, MinWidth, 0, imaging.Lanczos)
	}
	img = imaging.Sharpen(img, 0.8)

	t := OtsuThreshold(img)
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		v := uint8(0)
		if c.R > t {
			v = 255
		}
		return color.NRGBA{R: v, G: v, B: v, A: 255}
	})
}

// OtsuThreshold returns the gray level that best separates ink from paper
// in a grayscale image. Pixels above the threshold are background.
func OtsuThreshold(img *image.NRGBA) uint8 {
	var hist [256]int
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		for x := 0; x < b.Dx(); x++ {
			hist[row[x*4]]++
		}
	}

	total := b.Dx() * b.Dy()
	if total == 0 {
		return 127
	}

	sum := 0.0
	for i, n := range hist {
		sum += float64(i * n)
	}

	var (
		sumBack  float64
		weightBk int
		best     float64
		level    uint8
	)
	for i, n := range hist {
		weightBk += n
		if weightBk == 0 {
			continue
		}
		weightFg := total - weightBk
		if weightFg == 0 {
			break
		}
		sumBack += float64(i * n)
		meanBk := sumBack / float64(weightBk)
		meanFg := (sum - sumBack) / float64(weightFg)
		between := float64(weightBk) * float64(weightFg) * (meanBk - meanFg) * (meanBk - meanFg)
		if between > best {
			best = between
			level = uint8(i)
		}
	}
	return level
}

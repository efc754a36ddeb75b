package ocr

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func twoTone(w, h int, dark, light uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := light
			if x < w/2 {
				v = dark
			}
			img.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func TestOtsuThreshold(t *testing.T) {
	level := OtsuThreshold(twoTone(40, 10, 30, 220))
	assert.GreaterOrEqual(t, int(level), 30)
	assert.Less(t, int(level), 220)

	assert.Equal(t, uint8(127), OtsuThreshold(image.NewNRGBA(image.Rect(0, 0, 0, 0))))
}

func TestPreprocess(t *testing.T) {
	out := Preprocess(twoTone(100, 50, 20, 230))

	assert.Equal(t, MinWidth, out.Bounds().Dx())
	assert.Equal(t, MinWidth/2, out.Bounds().Dy())

	ink := out.NRGBAAt(100, 350)
	paper := out.NRGBAAt(MinWidth-100, 350)
	assert.Equal(t, uint8(0), ink.R)
	assert.Equal(t, uint8(255), paper.R)
	assert.Equal(t, paper.R, paper.G)
}

func TestPreprocess_KeepsWideImages(t *testing.T) {
	out := Preprocess(twoTone(MinWidth+200, 100, 20, 230))
	assert.Equal(t, MinWidth+200, out.Bounds().Dx())
}

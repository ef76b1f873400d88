// Package sdfaux provides auxiliary visualization helpers for inspecting
// distance fields and glyph atlases during development.
package sdfaux

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/chewxy/math32"

	"github.com/ElArtista/sdftext/atlas"
)

// FieldImage converts a normalized distance field to a grayscale image using
// the texture byte convention: white deepest inside, black furthest outside.
// If a nil color conversion function is passed then the grayscale ramp is
// used.
func FieldImage(field []float32, w, h int, colorConversion func(float32) color.Color) (*image.RGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, errors.New("field dimensions must be positive")
	} else if len(field) != w*h {
		return nil, errors.New("field length does not match dimensions")
	}
	if colorConversion == nil {
		colorConversion = func(v float32) color.Color {
			b := uint8(math32.Round(255 * (1 - v)))
			return color.Gray{Y: b}
		}
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, colorConversion(field[y*w+x]))
		}
	}
	return img, nil
}

// AtlasImage wraps an atlas's backing store as a grayscale image sharing the
// same pixel memory.
func AtlasImage(a *atlas.Atlas) *image.Gray {
	w, h := a.Size()
	return &image.Gray{
		Pix:    a.Pix(),
		Stride: w,
		Rect:   image.Rect(0, 0, w, h),
	}
}

// RenderPNGFile saves an image to a PNG file with said filename.
func RenderPNGFile(filename string, img image.Image) error {
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer fp.Close()
	err = png.Encode(fp, img)
	if err != nil {
		return err
	}
	return fp.Sync()
}

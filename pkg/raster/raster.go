// Package raster holds decoded page pixels and the geometric/tonal transforms
// applied to them before encoding.
package raster

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Buffer is a rendered page or image. It is never modified after creation;
// every transform returns a new Buffer.
type Buffer struct {
	img *image.NRGBA
}

// New wraps img in a Buffer, copying it into NRGBA form when needed.
func New(img image.Image) (*Buffer, error) {
	if img == nil {
		return nil, fmt.Errorf("raster: nil image")
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("raster: invalid dimensions %dx%d", b.Dx(), b.Dy())
	}

	nrgba, ok := img.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) {
		nrgba = imaging.Clone(img)
	}
	return &Buffer{img: nrgba}, nil
}

// Width returns the width in pixels.
func (b *Buffer) Width() int { return b.img.Bounds().Dx() }

// Height returns the height in pixels.
func (b *Buffer) Height() int { return b.img.Bounds().Dy() }

// Image returns the underlying pixels. Callers must not modify them.
func (b *Buffer) Image() *image.NRGBA { return b.img }

// Scaled returns a copy of b resized by scale, rounding each dimension to the
// nearest pixel (never below one).
func (b *Buffer) Scaled(scale float64) (*Buffer, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("raster: invalid scale %v", scale)
	}
	if scale == 1 {
		return b, nil
	}
	w, h := ScaledSize(b.Width(), b.Height(), scale)
	return &Buffer{img: imaging.Resize(b.img, w, h, imaging.Lanczos)}, nil
}

// ScaledSize returns w and h multiplied by scale and rounded to the nearest
// integer, clamped to at least one pixel.
func ScaledSize(w, h int, scale float64) (int, int) {
	return roundPositive(float64(w) * scale), roundPositive(float64(h) * scale)
}

// PointsToPixels converts a page size in points to the pixel size it
// rasterizes to at scale.
func PointsToPixels(widthPt, heightPt, scale float64) (int, int) {
	return roundPositive(widthPt * scale), roundPositive(heightPt * scale)
}

func roundPositive(v float64) int {
	n := int(v + 0.5)
	if n < 1 {
		return 1
	}
	return n
}

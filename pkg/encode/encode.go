// Package encode compresses rasters with a lossy codec for embedding in
// output pages.
package encode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"

	"github.com/disintegration/imaging"

	"github.com/alde/flatpdf/pkg/raster"
)

// ErrEncode is returned when the codec rejects a raster.
var ErrEncode = errors.New("encode failure")

// Encoder turns a raster into bytes at quality q in (0, 1]. Implementations
// must be free of side effects so the size search can call them repeatedly.
type Encoder interface {
	Encode(b *raster.Buffer, q float64) ([]byte, error)
}

// JPEG encodes rasters as baseline JPEG, which output documents embed
// without recompression.
type JPEG struct{}

// Encode implements Encoder.
func (JPEG) Encode(b *raster.Buffer, q float64) ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil raster", ErrEncode)
	}
	if err := ValidateQuality(q); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	var img image.Image = b.Image()
	if !b.Image().Opaque() {
		// JPEG has no alpha; flatten onto white paper.
		bg := imaging.New(b.Width(), b.Height(), color.White)
		img = imaging.Overlay(bg, b.Image(), image.Point{}, 1.0)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality(q)}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

// ValidateQuality checks q is in (0, 1].
func ValidateQuality(q float64) error {
	if math.IsNaN(q) || q <= 0 || q > 1 {
		return fmt.Errorf("quality %v out of range (0, 1]", q)
	}
	return nil
}

// JPEGQuality maps q in (0, 1] to the 1-100 scale used by image/jpeg.
func JPEGQuality(q float64) int {
	n := int(math.Round(q * 100))
	if n < 1 {
		return 1
	}
	if n > 100 {
		return 100
	}
	return n
}

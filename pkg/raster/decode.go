package raster

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Config describes an encoded image without decoding its pixels.
type Config struct {
	Width  int
	Height int
	Format string
}

func isWebP(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP"
}

// DecodeConfig sniffs the format and natural size of an encoded image.
func DecodeConfig(data []byte) (Config, error) {
	if isWebP(data) {
		cfg, err := webp.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return Config{}, fmt.Errorf("failed to read webp header: %w", err)
		}
		return Config{Width: cfg.Width, Height: cfg.Height, Format: "webp"}, nil
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Config{}, fmt.Errorf("image has invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	if format == "jpeg" && exifOrientation(data) >= 5 {
		cfg.Width, cfg.Height = cfg.Height, cfg.Width
	}
	return Config{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// exifOrientation returns the EXIF orientation tag (1-8), or 1 when the image
// carries none. Orientations 5-8 are stored a quarter turn from upright.
func exifOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if x == nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil || o < 1 || o > 8 {
		return 1
	}
	return o
}

// Decode decodes an encoded image (PNG, JPEG, GIF, BMP, TIFF or WebP) into a
// Buffer at its natural size, honouring EXIF orientation.
func Decode(data []byte) (*Buffer, error) {
	var (
		img image.Image
		err error
	)
	if isWebP(data) {
		img, err = webp.Decode(bytes.NewReader(data))
	} else {
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return New(img)
}

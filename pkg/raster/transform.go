package raster

import (
	"fmt"
	"image/color"

	"github.com/disintegration/imaging"
)

// Tonal adjustment limits, in percent.
const (
	MinTonePct = 20
	MaxTonePct = 200
)

// TransformSpec describes the geometric and tonal edits for one raster.
// Rotation is clockwise in degrees.
type TransformSpec struct {
	Rotation      int
	FlipH         bool
	FlipV         bool
	BrightnessPct int
	ContrastPct   int
}

// Identity returns a spec that leaves the raster unchanged.
func Identity() TransformSpec {
	return TransformSpec{BrightnessPct: 100, ContrastPct: 100}
}

// Validate checks the spec against the supported ranges.
func (s TransformSpec) Validate() error {
	switch s.Rotation {
	case 0, 90, 180, 270:
	default:
		return fmt.Errorf("invalid rotation %d (must be 0, 90, 180 or 270)", s.Rotation)
	}
	if s.BrightnessPct < MinTonePct || s.BrightnessPct > MaxTonePct {
		return fmt.Errorf("brightness %d%% out of range (%d-%d)", s.BrightnessPct, MinTonePct, MaxTonePct)
	}
	if s.ContrastPct < MinTonePct || s.ContrastPct > MaxTonePct {
		return fmt.Errorf("contrast %d%% out of range (%d-%d)", s.ContrastPct, MinTonePct, MaxTonePct)
	}
	return nil
}

// IsIdentity reports whether applying s would be a no-op.
func (s TransformSpec) IsIdentity() bool {
	return s.Rotation == 0 && !s.FlipH && !s.FlipV && s.BrightnessPct == 100 && s.ContrastPct == 100
}

// Apply returns a new Buffer with s applied to b. Rotation happens first,
// then flips, then the tonal pass. b is left untouched.
func Apply(b *Buffer, s TransformSpec) (*Buffer, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.IsIdentity() {
		return b, nil
	}

	img := b.img
	switch s.Rotation {
	case 90:
		// imaging rotates counter-clockwise
		img = imaging.Rotate270(img)
	case 180:
		img = imaging.Rotate180(img)
	case 270:
		img = imaging.Rotate90(img)
	}
	if s.FlipH {
		img = imaging.FlipH(img)
	}
	if s.FlipV {
		img = imaging.FlipV(img)
	}
	if s.BrightnessPct != 100 || s.ContrastPct != 100 {
		contrast := float64(s.ContrastPct) / 100
		brightness := float64(s.BrightnessPct) / 100
		img = imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
			return color.NRGBA{
				R: tone(c.R, contrast, brightness),
				G: tone(c.G, contrast, brightness),
				B: tone(c.B, contrast, brightness),
				A: c.A,
			}
		})
	}
	return &Buffer{img: img}, nil
}

// tone applies contrast around mid-gray, then brightness as a multiplier,
// then clamps.
func tone(v uint8, contrast, brightness float64) uint8 {
	x := (float64(v)-128)*contrast + 128
	x *= brightness
	switch {
	case x < 0:
		return 0
	case x > 255:
		return 255
	}
	return uint8(x + 0.5)
}

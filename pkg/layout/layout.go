// Package layout computes output page geometry and content placement in
// points (1/72 inch).
package layout

import (
	"fmt"
	"math"
	"strings"
)

// PxToPt converts rendered pixels to page points.
const PxToPt = 0.75

// MaxMargin is the largest margin accepted for fixed page sizes.
const MaxMargin = 72.0

// PageSize selects how the output page is sized.
type PageSize int

const (
	// PageSizeUnset defers to a caller-provided default.
	PageSizeUnset PageSize = iota
	A4
	Letter
	FitToContent
)

func (p PageSize) String() string {
	switch p {
	case A4:
		return "a4"
	case Letter:
		return "letter"
	case FitToContent:
		return "fit"
	default:
		return "unset"
	}
}

// ParsePageSize parses "a4", "letter" or "fit".
func ParsePageSize(s string) (PageSize, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a4":
		return A4, nil
	case "letter":
		return Letter, nil
	case "fit", "fit-to-content":
		return FitToContent, nil
	}
	return PageSizeUnset, fmt.Errorf("invalid page size: %s (valid options: a4, letter, fit)", s)
}

// FitMode controls how content scales into the available area.
type FitMode int

const (
	Contain FitMode = iota
	Cover
	Stretch
)

func (f FitMode) String() string {
	switch f {
	case Cover:
		return "cover"
	case Stretch:
		return "stretch"
	default:
		return "contain"
	}
}

// ParseFitMode parses "contain", "cover" or "stretch".
func ParseFitMode(s string) (FitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "contain":
		return Contain, nil
	case "cover":
		return Cover, nil
	case "stretch":
		return Stretch, nil
	}
	return Contain, fmt.Errorf("invalid fit mode: %s (valid options: contain, cover, stretch)", s)
}

// Orientation of a fixed-size page.
type Orientation int

const (
	Auto Orientation = iota
	Portrait
	Landscape
)

func (o Orientation) String() string {
	switch o {
	case Portrait:
		return "portrait"
	case Landscape:
		return "landscape"
	default:
		return "auto"
	}
}

// ParseOrientation parses "auto", "portrait" or "landscape".
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto":
		return Auto, nil
	case "portrait":
		return Portrait, nil
	case "landscape":
		return Landscape, nil
	}
	return Auto, fmt.Errorf("invalid orientation: %s (valid options: auto, portrait, landscape)", s)
}

// Size is a width and height in points.
type Size struct {
	W float64
	H float64
}

// Landscape reports whether the size is wider than tall.
func (s Size) Landscape() bool { return s.W > s.H }

// Rect is a placement on a page, measured from the top-left corner.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Standard page dimensions in portrait orientation.
var (
	SizeA4     = Size{W: 595, H: 842}
	SizeLetter = Size{W: 612, H: 792}
)

// PixelsToPoints returns the point size of a w×h pixel raster.
func PixelsToPoints(w, h int) Size {
	return Size{W: float64(w) * PxToPt, H: float64(h) * PxToPt}
}

// Spec is the page policy for one output page.
type Spec struct {
	PageSize     PageSize
	Margin       float64
	Fit          FitMode
	Orientation  Orientation
	ScalePercent float64
}

// Placement is the computed page size and where content goes on it.
type Placement struct {
	Page    Size
	Content Rect
}

// Validate checks the spec's numeric ranges.
func (s Spec) Validate() error {
	if s.PageSize == PageSizeUnset {
		return fmt.Errorf("page size not set")
	}
	if s.Margin < 0 || s.Margin > MaxMargin || math.IsNaN(s.Margin) {
		return fmt.Errorf("margin %v out of range (0-%v)", s.Margin, MaxMargin)
	}
	if s.ScalePercent <= 0 || math.IsNaN(s.ScalePercent) {
		return fmt.Errorf("scale %v%% must be positive", s.ScalePercent)
	}
	return nil
}

// Compute lays out content of the given point size according to spec.
func Compute(spec Spec, content Size) (Placement, error) {
	if err := spec.Validate(); err != nil {
		return Placement{}, err
	}
	if content.W <= 0 || content.H <= 0 {
		return Placement{}, fmt.Errorf("content size %vx%v must be positive", content.W, content.H)
	}
	k := spec.ScalePercent / 100

	if spec.PageSize == FitToContent {
		page := Size{W: content.W * k, H: content.H * k}
		return Placement{Page: page, Content: Rect{W: page.W, H: page.H}}, nil
	}

	page := orient(standard(spec.PageSize), spec.Orientation, content)
	availW := page.W - 2*spec.Margin
	availH := page.H - 2*spec.Margin

	var w, h float64
	switch spec.Fit {
	case Stretch:
		w, h = availW*k, availH*k
	case Cover:
		r := math.Max(availW/content.W, availH/content.H)
		w, h = content.W*r*k, content.H*r*k
	default:
		r := math.Min(availW/content.W, availH/content.H)
		// Small content is kept at natural size; scaling up may grow it
		// until it touches the available area, never past it.
		f := math.Min(math.Min(r, 1)*k, r)
		w, h = content.W*f, content.H*f
	}

	return Placement{
		Page: page,
		Content: Rect{
			X: (page.W - w) / 2,
			Y: (page.H - h) / 2,
			W: w,
			H: h,
		},
	}, nil
}

func standard(p PageSize) Size {
	if p == Letter {
		return SizeLetter
	}
	return SizeA4
}

func orient(page Size, o Orientation, content Size) Size {
	if o == Auto {
		o = Portrait
		if content.Landscape() {
			o = Landscape
		}
	}
	long := math.Max(page.W, page.H)
	short := math.Min(page.W, page.H)
	if o == Landscape {
		return Size{W: long, H: short}
	}
	return Size{W: short, H: long}
}

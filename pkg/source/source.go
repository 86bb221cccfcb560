// Package source opens paginated documents and standalone images and
// rasterizes their pages on demand.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/alde/flatpdf/pkg/raster"
)

var (
	// ErrSourceLoad marks input that cannot be opened: corrupted, encrypted
	// or in an unsupported format.
	ErrSourceLoad = errors.New("source load failure")
	// ErrRender marks a page that failed to rasterize.
	ErrRender = errors.New("render failure")
)

// Document is an opened source with at least one page.
type Document interface {
	// ID identifies the document within one operation.
	ID() string
	// Name is the original file name, used for output naming.
	Name() string
	// PageCount is at least 1. Images always have exactly one page.
	PageCount() int
	// Size is the byte size of the original input.
	Size() int64
	// Page returns a handle bound to the zero-based page index.
	Page(index int) (Page, error)
}

// Page renders one page of a Document.
type Page interface {
	Index() int
	// Render rasterizes the page at scale. Pixel dimensions are the page's
	// intrinsic size multiplied by scale and rounded to whole pixels.
	Render(ctx context.Context, scale float64) (*raster.Buffer, error)
}

// PageError is returned when a single page fails to render.
type PageError struct {
	Source string
	Page   int // 1-based
	Err    error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("failed to render page %d of %s: %v", e.Page, e.Source, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrRender) match any PageError.
func (e *PageError) Is(target error) bool { return target == ErrRender }

func checkIndex(index, count int) error {
	if index < 0 || index >= count {
		return fmt.Errorf("page index %d out of range (0-%d)", index, count-1)
	}
	return nil
}

func checkScale(scale float64) error {
	if !(scale > 0) {
		return fmt.Errorf("invalid render scale %v", scale)
	}
	return nil
}

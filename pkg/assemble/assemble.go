// Package assemble collects encoded pages into a single PDF document.
package assemble

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/signintech/gopdf"

	"github.com/alde/flatpdf/pkg/layout"
)

// Producer is written into the document information dictionary.
const Producer = "flatpdf"

var (
	// ErrFinalized is returned when a finalized document is modified.
	ErrFinalized = errors.New("document already finalized")
	// ErrNotStarted is returned when appending before the first page.
	ErrNotStarted = errors.New("document has no first page")
	// ErrStarted is returned when the first page is created twice.
	ErrStarted = errors.New("document already has a first page")
	// ErrBroken is returned after a page failed part way through placement.
	ErrBroken = errors.New("document is incomplete after a failed page")
)

// Page is an encoded raster ready for placement. Width and Height are the
// page size in points; Content is where the image is drawn on it.
type Page struct {
	Data    []byte
	Width   float64
	Height  float64
	Content layout.Rect
}

// FullBleed returns a page whose image covers the whole page.
func FullBleed(data []byte, size layout.Size) Page {
	return Page{
		Data:    data,
		Width:   size.W,
		Height:  size.H,
		Content: layout.Rect{W: size.W, H: size.H},
	}
}

// Placed returns a page sized and positioned by a layout placement.
func Placed(data []byte, pl layout.Placement) Page {
	return Page{
		Data:    data,
		Width:   pl.Page.W,
		Height:  pl.Page.H,
		Content: pl.Content,
	}
}

func (p Page) validate() error {
	if len(p.Data) == 0 {
		return fmt.Errorf("page has no image data")
	}
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("page size %vx%v must be positive", p.Width, p.Height)
	}
	if p.Content.W <= 0 || p.Content.H <= 0 {
		return fmt.Errorf("content size %vx%v must be positive", p.Content.W, p.Content.H)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(p.Data)); err != nil {
		return fmt.Errorf("unreadable page image: %w", err)
	}
	return nil
}

// Document is an append-only sequence of pages. Each page keeps its own size,
// so orientations may be mixed.
type Document struct {
	title     string
	pdf       *gopdf.GoPdf
	pages     int
	finalized bool
	broken    bool
}

// New returns an empty document.
func New(title string) *Document {
	return &Document{title: title}
}

// CreateFirstPage starts the document using p's geometry.
func (d *Document) CreateFirstPage(p Page) error {
	if d.finalized {
		return ErrFinalized
	}
	if d.broken {
		return ErrBroken
	}
	if d.pdf != nil {
		return ErrStarted
	}
	if err := p.validate(); err != nil {
		return fmt.Errorf("invalid first page: %w", err)
	}

	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{
		Unit:     gopdf.UnitPT,
		PageSize: gopdf.Rect{W: p.Width, H: p.Height},
	})
	pdf.SetInfo(gopdf.PdfInfo{
		Title:    d.title,
		Producer: Producer,
	})
	d.pdf = pdf
	return d.place(p)
}

// AppendPage adds p after the existing pages.
func (d *Document) AppendPage(p Page) error {
	if d.finalized {
		return ErrFinalized
	}
	if d.broken {
		return ErrBroken
	}
	if d.pdf == nil {
		return ErrNotStarted
	}
	if err := p.validate(); err != nil {
		return fmt.Errorf("invalid page %d: %w", d.pages+1, err)
	}
	return d.place(p)
}

// Add creates the first page or appends, whichever applies.
func (d *Document) Add(p Page) error {
	if d.pdf == nil && !d.finalized && !d.broken {
		return d.CreateFirstPage(p)
	}
	return d.AppendPage(p)
}

// place draws p on a new page. Once the page exists a failure leaves gopdf
// holding a blank page, so the document is marked broken.
func (d *Document) place(p Page) error {
	holder, err := gopdf.ImageHolderByBytes(p.Data)
	if err != nil {
		return fmt.Errorf("failed to load page image: %w", err)
	}

	d.pdf.AddPageWithOption(gopdf.PageOption{
		PageSize: &gopdf.Rect{W: p.Width, H: p.Height},
	})
	rect := &gopdf.Rect{W: p.Content.W, H: p.Content.H}
	if err := d.pdf.ImageByHolder(holder, p.Content.X, p.Content.Y, rect); err != nil {
		d.broken = true
		return fmt.Errorf("failed to place page image: %w", err)
	}
	d.pages++
	return nil
}

// PageCount returns the number of pages added so far.
func (d *Document) PageCount() int {
	return d.pages
}

// Finalize renders the document. No pages can be added afterwards.
func (d *Document) Finalize() ([]byte, error) {
	if d.finalized {
		return nil, ErrFinalized
	}
	if d.broken {
		return nil, ErrBroken
	}
	if d.pdf == nil {
		return nil, ErrNotStarted
	}
	d.finalized = true

	data, err := d.pdf.GetBytesPdfReturnErr()
	if err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return data, nil
}

// Build assembles pages in order and finalizes the result.
func Build(title string, pages []Page) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages to assemble")
	}
	doc := New(title)
	for i, p := range pages {
		if err := doc.Add(p); err != nil {
			return nil, fmt.Errorf("failed to add page %d: %w", i+1, err)
		}
	}
	return doc.Finalize()
}

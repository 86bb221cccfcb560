package source

import (
	"context"
	"fmt"

	"github.com/alde/flatpdf/pkg/raster"
)

// ImageDocument is a single-page document backed by an encoded image.
type ImageDocument struct {
	id     string
	name   string
	data   []byte
	config raster.Config
}

// OpenImage sniffs data and returns a one-page document. Pixels are decoded
// lazily on Render.
func OpenImage(id, name string, data []byte) (*ImageDocument, error) {
	cfg, err := raster.DecodeConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceLoad, name, err)
	}
	return &ImageDocument{id: id, name: name, data: data, config: cfg}, nil
}

func (d *ImageDocument) ID() string     { return d.id }
func (d *ImageDocument) Name() string   { return d.name }
func (d *ImageDocument) PageCount() int { return 1 }
func (d *ImageDocument) Size() int64    { return int64(len(d.data)) }

// Config returns the sniffed format and natural size.
func (d *ImageDocument) Config() raster.Config { return d.config }

func (d *ImageDocument) Page(index int) (Page, error) {
	if err := checkIndex(index, 1); err != nil {
		return nil, err
	}
	return imagePage{doc: d}, nil
}

type imagePage struct {
	doc *ImageDocument
}

func (p imagePage) Index() int { return 0 }

func (p imagePage) Render(ctx context.Context, scale float64) (*raster.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkScale(scale); err != nil {
		return nil, &PageError{Source: p.doc.name, Page: 1, Err: err}
	}
	b, err := raster.Decode(p.doc.data)
	if err != nil {
		return nil, &PageError{Source: p.doc.name, Page: 1, Err: err}
	}
	scaled, err := b.Scaled(scale)
	if err != nil {
		return nil, &PageError{Source: p.doc.name, Page: 1, Err: err}
	}
	return scaled, nil
}

package source

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"

	"github.com/alde/flatpdf/pkg/raster"
)

const instanceTimeout = 30 * time.Second

// DefaultMaxOpen is the number of documents NewEngine can hold open at once.
const DefaultMaxOpen = 4

// Engine owns the PDFium runtime used to open and render PDF documents.
type Engine struct {
	pool pdfium.Pool
}

// NewEngine starts a PDFium pool.
func NewEngine() (*Engine, error) {
	return NewEngineSize(DefaultMaxOpen)
}

// NewEngineSize starts a PDFium pool that can hold maxOpen documents open at
// the same time. Each open document keeps one instance.
func NewEngineSize(maxOpen int) (*Engine, error) {
	if maxOpen < 1 {
		maxOpen = DefaultMaxOpen
	}
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  maxOpen,
		MaxTotal: maxOpen,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PDFium: %w", err)
	}
	return &Engine{pool: pool}, nil
}

// Close shuts the pool down. Documents opened from it become unusable.
func (e *Engine) Close() error {
	if e.pool != nil {
		return e.pool.Close()
	}
	return nil
}

// PDFDocument is a PDF held open in a PDFium instance until Close.
type PDFDocument struct {
	id        string
	name      string
	data      []byte
	instance  pdfium.Pdfium
	doc       references.FPDF_DOCUMENT
	pageCount int

	mu     sync.Mutex
	closed bool
}

// Open parses data as a PDF document.
func (e *Engine) Open(id, name string, data []byte) (*PDFDocument, error) {
	instance, err := e.pool.GetInstance(instanceTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to get PDFium instance: %w", err)
	}

	doc, err := instance.OpenDocument(&requests.OpenDocument{
		File: &data,
	})
	if err != nil {
		instance.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceLoad, name, err)
	}

	pageCountResp, err := instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: doc.Document,
	})
	if err != nil {
		instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: doc.Document})
		instance.Close()
		return nil, fmt.Errorf("%w: %s: failed to get page count: %v", ErrSourceLoad, name, err)
	}
	if pageCountResp.PageCount < 1 {
		instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: doc.Document})
		instance.Close()
		return nil, fmt.Errorf("%w: %s: document has no pages", ErrSourceLoad, name)
	}

	return &PDFDocument{
		id:        id,
		name:      name,
		data:      data,
		instance:  instance,
		doc:       doc.Document,
		pageCount: pageCountResp.PageCount,
	}, nil
}

func (d *PDFDocument) ID() string     { return d.id }
func (d *PDFDocument) Name() string   { return d.name }
func (d *PDFDocument) PageCount() int { return d.pageCount }
func (d *PDFDocument) Size() int64    { return int64(len(d.data)) }

func (d *PDFDocument) Page(index int) (Page, error) {
	if err := checkIndex(index, d.pageCount); err != nil {
		return nil, err
	}
	return &pdfPage{doc: d, index: index}, nil
}

// Close releases the PDFium document and instance.
func (d *PDFDocument) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: d.doc})
	return d.instance.Close()
}

type pdfPage struct {
	doc   *PDFDocument
	index int
}

func (p *pdfPage) Index() int { return p.index }

func (p *pdfPage) ref() requests.Page {
	return requests.Page{
		ByIndex: &requests.PageByIndex{
			Document: p.doc.doc,
			Index:    p.index,
		},
	}
}

func (p *pdfPage) Render(ctx context.Context, scale float64) (*raster.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fail := func(err error) error {
		return &PageError{Source: p.doc.name, Page: p.index + 1, Err: err}
	}
	if err := checkScale(scale); err != nil {
		return nil, fail(err)
	}

	// A PDFium instance is single-threaded.
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	if p.doc.closed {
		return nil, fail(fmt.Errorf("document closed"))
	}

	size, err := p.doc.instance.GetPageSize(&requests.GetPageSize{Page: p.ref()})
	if err != nil {
		return nil, fail(fmt.Errorf("failed to get page size: %w", err))
	}
	width, height := raster.PointsToPixels(size.Width, size.Height, scale)

	rendered, err := p.doc.instance.RenderPageInPixels(&requests.RenderPageInPixels{
		Page:   p.ref(),
		Width:  width,
		Height: height,
	})
	if err != nil {
		return nil, fail(err)
	}
	defer rendered.Cleanup()

	// The buffer is owned by PDFium and freed by Cleanup, so copy it out.
	b, err := raster.New(rendered.Result.Image)
	if err != nil {
		return nil, fail(err)
	}
	return b, nil
}

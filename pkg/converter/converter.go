package converter

import (
	"context"
	"fmt"
	"time"

	"github.com/alde/flatpdf/pkg/assemble"
	"github.com/alde/flatpdf/pkg/encode"
	"github.com/alde/flatpdf/pkg/layout"
	"github.com/alde/flatpdf/pkg/progress"
	"github.com/alde/flatpdf/pkg/raster"
	"github.com/alde/flatpdf/pkg/search"
	"github.com/alde/flatpdf/pkg/source"
)

// Options contains conversion settings
type Options struct {
	// RenderScale and Quality are the fixed settings for merge and split.
	RenderScale float64
	Quality     float64

	// Search bounds the size-targeted compression, which renders at
	// SearchScale.
	Search      search.Config
	SearchScale float64

	// WorkerCount bounds parallel encoding during search trials. Zero uses
	// every CPU.
	WorkerCount int

	Encoder  encode.Encoder
	Progress progress.Reporter
}

// DefaultOptions returns the settings used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		RenderScale: 2.0,
		Quality:     0.92,
		Search:      search.DefaultConfig(),
		SearchScale: 1.5,
		WorkerCount: 1,
		Encoder:     encode.JPEG{},
		Progress:    progress.Nop{},
	}
}

// Converter runs the merge, split, compress and image workflows.
type Converter struct {
	options Options
}

// ConversionStats tracks conversion metrics
type ConversionStats struct {
	InputSize        uint64
	OutputSize       uint64
	PageCount        int
	ProcessingTime   time.Duration
	CompressionRatio float64
}

// Output is a finished document ready to be exported.
type Output struct {
	Name  string
	Data  []byte
	Stats ConversionStats
}

// New creates a new converter instance. Unset fields fall back to
// DefaultOptions.
func New(opts Options) *Converter {
	def := DefaultOptions()
	if opts.RenderScale <= 0 {
		opts.RenderScale = def.RenderScale
	}
	if opts.Quality <= 0 {
		opts.Quality = def.Quality
	}
	if opts.Search.Iterations == 0 {
		opts.Search = def.Search
	}
	if opts.SearchScale <= 0 {
		opts.SearchScale = def.SearchScale
	}
	if opts.WorkerCount < 0 {
		opts.WorkerCount = def.WorkerCount
	}
	if opts.Encoder == nil {
		opts.Encoder = def.Encoder
	}
	if opts.Progress == nil {
		opts.Progress = def.Progress
	}
	return &Converter{options: opts}
}

// Options returns the effective settings.
func (c *Converter) Options() Options {
	return c.options
}

// pageRef addresses one page of one source.
type pageRef struct {
	doc   source.Document
	index int
}

// flatten renders, encodes and assembles refs in order. Only one raster is
// alive at a time.
func (c *Converter) flatten(ctx context.Context, label string, refs []pageRef, scale, quality float64) ([]byte, error) {
	doc := assemble.New(label)

	c.options.Progress.Stage(label, len(refs))
	defer c.options.Progress.Finish()

	for i, ref := range refs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		buf, err := renderPage(ctx, ref.doc, ref.index, scale)
		if err != nil {
			return nil, err
		}

		data, err := c.options.Encoder.Encode(buf, quality)
		if err != nil {
			return nil, fmt.Errorf("failed to encode page %d of %s: %w", ref.index+1, ref.doc.Name(), err)
		}

		size := layout.PixelsToPoints(buf.Width(), buf.Height())
		if err := doc.Add(assemble.FullBleed(data, size)); err != nil {
			return nil, fmt.Errorf("failed to add page %d: %w", i+1, err)
		}

		c.options.Progress.Step(i + 1)
	}

	out, err := doc.Finalize()
	if err != nil {
		return nil, fmt.Errorf("failed to finalize document: %w", err)
	}
	return out, nil
}

func renderPage(ctx context.Context, doc source.Document, index int, scale float64) (*raster.Buffer, error) {
	page, err := doc.Page(index)
	if err != nil {
		return nil, fmt.Errorf("failed to open page %d of %s: %w", index+1, doc.Name(), err)
	}
	buf, err := page.Render(ctx, scale)
	if err != nil {
		return nil, fmt.Errorf("failed to process page %d: %w", index+1, err)
	}
	return buf, nil
}

func newStats(input int64, output, pages int, start time.Time) ConversionStats {
	s := ConversionStats{
		InputSize:      uint64(input),
		OutputSize:     uint64(output),
		PageCount:      pages,
		ProcessingTime: time.Since(start),
	}
	if input > 0 {
		s.CompressionRatio = float64(output) / float64(input)
	}
	return s
}

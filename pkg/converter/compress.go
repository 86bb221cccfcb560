package converter

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/alde/flatpdf/internal/worker"
	"github.com/alde/flatpdf/pkg/assemble"
	"github.com/alde/flatpdf/pkg/layout"
	"github.com/alde/flatpdf/pkg/preset"
	"github.com/alde/flatpdf/pkg/raster"
	"github.com/alde/flatpdf/pkg/search"
	"github.com/alde/flatpdf/pkg/source"
)

// CompressOptions selects between a named preset and a byte target. A
// positive TargetBytes takes precedence.
type CompressOptions struct {
	Preset      preset.Preset
	TargetBytes int64
}

// CompressionResult is the outcome of Compress.
type CompressionResult struct {
	Output
	SourceSize   int64
	AchievedSize int64
	Quality      float64
	Status       search.Status
	Trials       int
	// Warning is set when the target could not be reached.
	Warning string
}

// Savings returns the size reduction as a whole percentage, never negative.
func (r *CompressionResult) Savings() int {
	if r.SourceSize <= 0 {
		return 0
	}
	pct := math.Round(float64(r.SourceSize-r.AchievedSize) / float64(r.SourceSize) * 100)
	if pct < 0 {
		return 0
	}
	return int(pct)
}

// Compress re-renders doc at lower fidelity, either at a preset or at the
// highest quality that fits TargetBytes.
func (c *Converter) Compress(ctx context.Context, doc source.Document, opts CompressOptions) (*CompressionResult, error) {
	if doc.PageCount() < 1 {
		return nil, fmt.Errorf("%w: %s has no pages", source.ErrSourceLoad, doc.Name())
	}
	if opts.TargetBytes > 0 {
		return c.compressToTarget(ctx, doc, opts.TargetBytes)
	}
	if opts.Preset.Quality <= 0 || opts.Preset.Scale <= 0 {
		return nil, errors.New("a preset or a target size is required")
	}
	return c.compressPreset(ctx, doc, opts.Preset)
}

func (c *Converter) compressPreset(ctx context.Context, doc source.Document, p preset.Preset) (*CompressionResult, error) {
	start := time.Now()

	refs := make([]pageRef, doc.PageCount())
	for i := range refs {
		refs[i] = pageRef{doc: doc, index: i}
	}

	data, err := c.flatten(ctx, "Compressing", refs, p.Scale, p.Quality)
	if err != nil {
		return nil, fmt.Errorf("failed to compress %s: %w", doc.Name(), err)
	}

	return &CompressionResult{
		Output: Output{
			Name:  CompressedName(doc.Name()),
			Data:  data,
			Stats: newStats(doc.Size(), len(data), len(refs), start),
		},
		SourceSize:   doc.Size(),
		AchievedSize: int64(len(data)),
		Quality:      p.Quality,
		Status:       search.Success,
		Trials:       1,
	}, nil
}

func (c *Converter) compressToTarget(ctx context.Context, doc source.Document, target int64) (*CompressionResult, error) {
	start := time.Now()

	rasters, err := c.renderAll(ctx, doc, c.options.SearchScale)
	if err != nil {
		return nil, fmt.Errorf("failed to compress %s: %w", doc.Name(), err)
	}

	c.options.Progress.Stage("Searching", c.options.Search.Iterations+1)
	trials := 0
	trial := func(ctx context.Context, q float64) ([]byte, error) {
		out, err := c.encodeAll(ctx, doc.Name(), rasters, q)
		trials++
		c.options.Progress.Step(trials)
		return out, err
	}

	res, err := search.Run(ctx, c.options.Search, target, trial)
	c.options.Progress.Finish()
	if err != nil {
		return nil, fmt.Errorf("failed to compress %s: %w", doc.Name(), err)
	}

	result := &CompressionResult{
		Output: Output{
			Name:  CompressedName(doc.Name()),
			Data:  res.Output,
			Stats: newStats(doc.Size(), len(res.Output), len(rasters), start),
		},
		SourceSize:   doc.Size(),
		AchievedSize: res.Size,
		Quality:      res.Quality,
		Status:       res.Status,
		Trials:       res.Trials,
	}
	if res.Status == search.PartialSuccess {
		result.Warning = fmt.Sprintf("target %s is not reachable; smallest achievable size is %s",
			humanize.Bytes(uint64(target)), humanize.Bytes(uint64(res.Size)))
	}
	return result, nil
}

// renderAll rasterizes every page once so search trials only re-encode.
func (c *Converter) renderAll(ctx context.Context, doc source.Document, scale float64) ([]*raster.Buffer, error) {
	n := doc.PageCount()
	rasters := make([]*raster.Buffer, n)

	c.options.Progress.Stage("Rendering", n)
	defer c.options.Progress.Finish()

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		buf, err := renderPage(ctx, doc, i, scale)
		if err != nil {
			return nil, err
		}
		rasters[i] = buf
		c.options.Progress.Step(i + 1)
	}
	return rasters, nil
}

// encodeAll encodes cached rasters at q and assembles a candidate.
func (c *Converter) encodeAll(ctx context.Context, name string, rasters []*raster.Buffer, q float64) ([]byte, error) {
	pages := make([]assemble.Page, len(rasters))
	jobs := make([]worker.Job, len(rasters))
	for i, buf := range rasters {
		i, buf := i, buf
		jobs[i] = worker.Func{
			Name: fmt.Sprintf("page-%d", i+1),
			Fn: func(ctx context.Context) error {
				data, err := c.options.Encoder.Encode(buf, q)
				if err != nil {
					return fmt.Errorf("failed to encode page %d of %s: %w", i+1, name, err)
				}
				pages[i] = assemble.FullBleed(data, layout.PixelsToPoints(buf.Width(), buf.Height()))
				return nil
			},
		}
	}

	c.options.Progress.Stage(fmt.Sprintf("Encoding at q=%.2f", q), len(jobs))
	defer c.options.Progress.Finish()

	pool := worker.NewPool(c.options.WorkerCount)
	pool.OnDone(func(_ string, done, _ int) {
		c.options.Progress.Step(done)
	})
	if err := pool.Run(ctx, jobs); err != nil {
		return nil, err
	}
	return assemble.Build(BaseName(name), pages)
}

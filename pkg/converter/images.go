package converter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alde/flatpdf/pkg/assemble"
	"github.com/alde/flatpdf/pkg/layout"
	"github.com/alde/flatpdf/pkg/raster"
	"github.com/alde/flatpdf/pkg/source"
)

// Scale limits for an image's edit state, in percent.
const (
	MinScalePct = 10
	MaxScalePct = 200
)

// EditState is the full set of edits for one image. It is a value: edits
// replace it rather than mutate it.
type EditState struct {
	Transform    raster.TransformSpec
	ScalePercent int
	Fit          layout.FitMode
	Orientation  layout.Orientation
}

// DefaultEditState is the state of a freshly added image.
func DefaultEditState() EditState {
	return EditState{
		Transform:    raster.Identity(),
		ScalePercent: 100,
		Fit:          layout.Contain,
		Orientation:  layout.Auto,
	}
}

func (e EditState) Validate() error {
	if err := e.Transform.Validate(); err != nil {
		return err
	}
	if e.ScalePercent < MinScalePct || e.ScalePercent > MaxScalePct {
		return fmt.Errorf("scale %d%% out of range (%d-%d)", e.ScalePercent, MinScalePct, MaxScalePct)
	}
	return nil
}

// Rotated returns a copy turned a further 90 degrees clockwise.
func (e EditState) Rotated() EditState {
	e.Transform.Rotation = (e.Transform.Rotation + 90) % 360
	return e
}

// ImageAsset is one image in the working list.
type ImageAsset struct {
	ID            string
	Name          string
	Data          []byte
	NaturalWidth  int
	NaturalHeight int
	Edit          EditState
	// PageSize overrides ImageOptions.PageSize when set.
	PageSize layout.PageSize
}

// ImageOptions apply to every page of an image collection.
type ImageOptions struct {
	PageSize    layout.PageSize
	Quality     float64
	Orientation layout.Orientation
	Margin      float64
}

// DefaultImageOptions returns A4 pages with a half-inch margin.
func DefaultImageOptions() ImageOptions {
	return ImageOptions{
		PageSize:    layout.A4,
		Quality:     0.92,
		Orientation: layout.Auto,
		Margin:      36,
	}
}

// ErrNoImages is returned when converting an empty list.
var ErrNoImages = errors.New("add at least one image")

// ImageList is the ordered working list of images.
type ImageList struct {
	assets []ImageAsset
}

// Add sniffs data and appends it with default edits.
func (l *ImageList) Add(name string, data []byte) (ImageAsset, error) {
	id := uuid.NewString()
	doc, err := source.OpenImage(id, name, data)
	if err != nil {
		return ImageAsset{}, err
	}
	cfg := doc.Config()
	asset := ImageAsset{
		ID:            id,
		Name:          name,
		Data:          data,
		NaturalWidth:  cfg.Width,
		NaturalHeight: cfg.Height,
		Edit:          DefaultEditState(),
	}
	l.assets = append(l.assets, asset)
	return asset, nil
}

func (l *ImageList) Len() int { return len(l.assets) }

// Assets returns a copy of the list in order.
func (l *ImageList) Assets() []ImageAsset {
	return append([]ImageAsset(nil), l.assets...)
}

// Get returns the asset with id.
func (l *ImageList) Get(id string) (ImageAsset, bool) {
	i := l.index(id)
	if i < 0 {
		return ImageAsset{}, false
	}
	return l.assets[i], true
}

func (l *ImageList) index(id string) int {
	for i, a := range l.assets {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (l *ImageList) lookup(id string) (int, error) {
	i := l.index(id)
	if i < 0 {
		return -1, fmt.Errorf("no image with id %s", id)
	}
	return i, nil
}

func (l *ImageList) Remove(id string) error {
	i, err := l.lookup(id)
	if err != nil {
		return err
	}
	l.assets = append(l.assets[:i], l.assets[i+1:]...)
	return nil
}

// Shift moves an image by delta positions. Moving past either end is a no-op.
func (l *ImageList) Shift(id string, delta int) error {
	i, err := l.lookup(id)
	if err != nil {
		return err
	}
	j := i + delta
	if j < 0 || j >= len(l.assets) {
		return nil
	}
	moved, err := Move(l.assets, i, j)
	if err != nil {
		return err
	}
	l.assets = moved
	return nil
}

// SetEdit replaces the asset's edit state.
func (l *ImageList) SetEdit(id string, e EditState) error {
	if err := e.Validate(); err != nil {
		return err
	}
	i, err := l.lookup(id)
	if err != nil {
		return err
	}
	l.assets[i].Edit = e
	return nil
}

// Rotate turns the image 90 degrees clockwise.
func (l *ImageList) Rotate(id string) error {
	i, err := l.lookup(id)
	if err != nil {
		return err
	}
	return l.SetEdit(id, l.assets[i].Edit.Rotated())
}

// ResetEdit restores the default edit state.
func (l *ImageList) ResetEdit(id string) error {
	return l.SetEdit(id, DefaultEditState())
}

// SetPageSize overrides the page size for one image. PageSizeUnset clears it.
func (l *ImageList) SetPageSize(id string, ps layout.PageSize) error {
	i, err := l.lookup(id)
	if err != nil {
		return err
	}
	l.assets[i].PageSize = ps
	return nil
}

// Images lays out each asset on its own page, in list order. A zero Quality
// or PageSize in opts falls back to DefaultImageOptions.
func (c *Converter) Images(ctx context.Context, assets []ImageAsset, opts ImageOptions) (*Output, error) {
	if len(assets) == 0 {
		return nil, ErrNoImages
	}
	def := DefaultImageOptions()
	if opts.Quality <= 0 {
		opts.Quality = def.Quality
	}
	if opts.PageSize == layout.PageSizeUnset {
		opts.PageSize = def.PageSize
	}
	start := time.Now()

	doc := assemble.New("images")
	c.options.Progress.Stage("Laying out", len(assets))
	defer c.options.Progress.Finish()

	var input int64
	for i, asset := range assets {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		page, err := c.imagePage(ctx, asset, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to process image %d (%s): %w", i+1, asset.Name, err)
		}
		if err := doc.Add(page); err != nil {
			return nil, fmt.Errorf("failed to add image %d: %w", i+1, err)
		}

		input += int64(len(asset.Data))
		c.options.Progress.Step(i + 1)
	}

	data, err := doc.Finalize()
	if err != nil {
		return nil, fmt.Errorf("failed to finalize document: %w", err)
	}

	return &Output{
		Name:  ImagesName,
		Data:  data,
		Stats: newStats(input, len(data), len(assets), start),
	}, nil
}

func (c *Converter) imagePage(ctx context.Context, asset ImageAsset, opts ImageOptions) (assemble.Page, error) {
	if err := asset.Edit.Validate(); err != nil {
		return assemble.Page{}, err
	}

	src, err := source.OpenImage(asset.ID, asset.Name, asset.Data)
	if err != nil {
		return assemble.Page{}, err
	}
	buf, err := renderPage(ctx, src, 0, 1)
	if err != nil {
		return assemble.Page{}, err
	}
	buf, err = raster.Apply(buf, asset.Edit.Transform)
	if err != nil {
		return assemble.Page{}, err
	}

	data, err := c.options.Encoder.Encode(buf, opts.Quality)
	if err != nil {
		return assemble.Page{}, err
	}

	spec := layout.Spec{
		PageSize:     opts.PageSize,
		Margin:       opts.Margin,
		Fit:          asset.Edit.Fit,
		Orientation:  opts.Orientation,
		ScalePercent: float64(asset.Edit.ScalePercent),
	}
	if asset.PageSize != layout.PageSizeUnset {
		spec.PageSize = asset.PageSize
	}
	if asset.Edit.Orientation != layout.Auto {
		spec.Orientation = asset.Edit.Orientation
	}

	pl, err := layout.Compute(spec, layout.PixelsToPoints(buf.Width(), buf.Height()))
	if err != nil {
		return assemble.Page{}, err
	}
	return assemble.Placed(data, pl), nil
}

package converter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alde/flatpdf/pkg/source"
)

// ErrTooFewDocuments is returned when a merge has fewer than two inputs.
var ErrTooFewDocuments = errors.New("merge needs at least two documents")

// Move returns a copy of list with the element at from moved to index to.
func Move[T any](list []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) {
		return nil, fmt.Errorf("move %d -> %d out of range (0-%d)", from, to, len(list)-1)
	}
	out := make([]T, 0, len(list))
	item := list[from]
	for i, v := range list {
		if i != from {
			out = append(out, v)
		}
	}
	out = append(out[:to], append([]T{item}, out[to:]...)...)
	return out, nil
}

// Merge flattens every page of docs, in the given order, into one document.
func (c *Converter) Merge(ctx context.Context, docs []source.Document) (*Output, error) {
	if len(docs) < 2 {
		return nil, ErrTooFewDocuments
	}
	start := time.Now()

	var refs []pageRef
	var input int64
	for _, d := range docs {
		if d.PageCount() < 1 {
			return nil, fmt.Errorf("%w: %s has no pages", source.ErrSourceLoad, d.Name())
		}
		for i := 0; i < d.PageCount(); i++ {
			refs = append(refs, pageRef{doc: d, index: i})
		}
		input += d.Size()
	}

	data, err := c.flatten(ctx, "Merging", refs, c.options.RenderScale, c.options.Quality)
	if err != nil {
		return nil, fmt.Errorf("failed to merge documents: %w", err)
	}

	return &Output{
		Name:  MergedName,
		Data:  data,
		Stats: newStats(input, len(data), len(refs), start),
	}, nil
}

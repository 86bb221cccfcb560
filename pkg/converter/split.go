package converter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alde/flatpdf/pkg/source"
)

// ErrEmptySelection is returned when a split selects no pages.
var ErrEmptySelection = errors.New("select at least one page")

// Selection marks which pages of a document are kept. Index i is page i+1.
type Selection []bool

// NewSelection returns a selection of n pages with every page selected.
func NewSelection(n int) Selection {
	s := make(Selection, n)
	s.SelectAll()
	return s
}

// SelectionFromRanges selects exactly the pages named by ranges, e.g. "1-3,5".
// An empty string selects nothing.
func SelectionFromRanges(ranges string, total int) (Selection, error) {
	s := make(Selection, total)
	for _, part := range strings.Split(ranges, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		first, last, err := parseSpan(part)
		if err != nil {
			return nil, err
		}
		if first < 1 {
			return nil, fmt.Errorf("page numbers must be 1 or greater, got: %d", first)
		}
		if last > total {
			return nil, fmt.Errorf("page %d exceeds total pages (%d)", last, total)
		}
		for p := first; p <= last; p++ {
			s[p-1] = true
		}
	}
	return s, nil
}

// parseSpan reads "n" or "a-b".
func parseSpan(part string) (int, int, error) {
	lo, hi, isRange := strings.Cut(part, "-")
	first, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid page number: %s", part)
	}
	if !isRange {
		return first, first, nil
	}
	last, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range format: %s", part)
	}
	if first > last {
		return 0, 0, fmt.Errorf("start page (%d) cannot be greater than end page (%d)", first, last)
	}
	return first, last, nil
}

func (s Selection) SelectAll() {
	for i := range s {
		s[i] = true
	}
}

func (s Selection) SelectNone() {
	for i := range s {
		s[i] = false
	}
}

func (s Selection) Invert() {
	for i := range s {
		s[i] = !s[i]
	}
}

// Toggle flips the 1-based page.
func (s Selection) Toggle(page int) error {
	if page < 1 || page > len(s) {
		return fmt.Errorf("page %d out of range (1-%d)", page, len(s))
	}
	s[page-1] = !s[page-1]
	return nil
}

// Pages returns the selected 1-based page numbers in ascending order.
func (s Selection) Pages() []int {
	var pages []int
	for i, on := range s {
		if on {
			pages = append(pages, i+1)
		}
	}
	return pages
}

// String lists the selected pages as compact ranges, e.g. "1-3,5".
func (s Selection) String() string {
	var parts []string
	for i := 0; i < len(s); i++ {
		if !s[i] {
			continue
		}
		j := i
		for j+1 < len(s) && s[j+1] {
			j++
		}
		if i == j {
			parts = append(parts, strconv.Itoa(i+1))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", i+1, j+1))
		}
		i = j
	}
	return strings.Join(parts, ",")
}

// Split flattens the selected pages of doc in ascending page order.
func (c *Converter) Split(ctx context.Context, doc source.Document, sel Selection) (*Output, error) {
	if len(sel) != doc.PageCount() {
		return nil, fmt.Errorf("selection covers %d pages but %s has %d", len(sel), doc.Name(), doc.PageCount())
	}
	pages := sel.Pages()
	if len(pages) == 0 {
		return nil, ErrEmptySelection
	}
	start := time.Now()

	refs := make([]pageRef, len(pages))
	for i, p := range pages {
		refs[i] = pageRef{doc: doc, index: p - 1}
	}

	data, err := c.flatten(ctx, "Splitting", refs, c.options.RenderScale, c.options.Quality)
	if err != nil {
		return nil, fmt.Errorf("failed to split %s: %w", doc.Name(), err)
	}

	return &Output{
		Name:  SplitName(doc.Name(), pages),
		Data:  data,
		Stats: newStats(doc.Size(), len(data), len(pages), start),
	}, nil
}

package converter

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alde/flatpdf/pkg/layout"
	"github.com/alde/flatpdf/pkg/preset"
	"github.com/alde/flatpdf/pkg/search"
)

func noisyDoc() *fakeDoc {
	doc := newFakeDoc("scan.PDF", layout.Size{W: 80, H: 60}, layout.Size{W: 60, H: 80}, layout.Size{W: 70, H: 70})
	doc.noisy = true
	return doc
}

func TestCompressGenerousTarget(t *testing.T) {
	doc := noisyDoc()
	enc := &countingEncoder{}
	c := New(Options{Encoder: enc, WorkerCount: 2})

	res, err := c.Compress(context.Background(), doc, CompressOptions{TargetBytes: 1 << 30})
	require.NoError(t, err)

	assert.Equal(t, search.Success, res.Status)
	assert.InDelta(t, 0.95, res.Quality, 0.01)
	assert.LessOrEqual(t, res.Trials, 8)
	assert.Empty(t, res.Warning)
	assert.Equal(t, "scan-compressed.pdf", res.Name)
	assert.Equal(t, int64(len(res.Data)), res.AchievedSize)

	// Pages are rendered once, then only re-encoded.
	assert.Equal(t, int32(3), doc.renders)
	assert.Equal(t, int32(3*res.Trials), enc.calls)

	// Search renders at 1.5, so a 80x60 page comes out at 90x67.5 points.
	dims := pageDims(t, res.Data)
	require.Len(t, dims, 3)
	assert.InDelta(t, 90, dims[0].W, 1)
	assert.InDelta(t, 67.5, dims[0].H, 1)
}

func TestCompressUnreachableTarget(t *testing.T) {
	doc := noisyDoc()
	res, err := New(Options{}).Compress(context.Background(), doc, CompressOptions{TargetBytes: 1})
	require.NoError(t, err)

	assert.Equal(t, search.PartialSuccess, res.Status)
	assert.Equal(t, 0.05, res.Quality)
	assert.NotEmpty(t, res.Warning)
	assert.NotEmpty(t, res.Data)
	assert.Equal(t, int32(3), doc.renders)
	assert.Equal(t, 3, len(pageDims(t, res.Data)))
}

func TestCompressPreset(t *testing.T) {
	doc := noisyDoc()
	low, err := preset.Get("low")
	require.NoError(t, err)

	res, err := New(Options{}).Compress(context.Background(), doc, CompressOptions{Preset: low})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Trials)
	assert.Equal(t, 0.40, res.Quality)
	// Scale 1.0: 80 points become 80 pixels become 60 points.
	dims := pageDims(t, res.Data)
	assert.InDelta(t, 60, dims[0].W, 1)
}

func TestCompressPresetSmallerThanHigh(t *testing.T) {
	low, _ := preset.Get("low")
	high, _ := preset.Get("high")

	lowRes, err := New(Options{}).Compress(context.Background(), noisyDoc(), CompressOptions{Preset: low})
	require.NoError(t, err)
	highRes, err := New(Options{}).Compress(context.Background(), noisyDoc(), CompressOptions{Preset: high})
	require.NoError(t, err)

	assert.Less(t, lowRes.AchievedSize, highRes.AchievedSize)
}

func TestCompressNeedsMode(t *testing.T) {
	_, err := New(Options{}).Compress(context.Background(), noisyDoc(), CompressOptions{})
	assert.Error(t, err)
}

func TestSavings(t *testing.T) {
	tests := []struct {
		source, achieved int64
		want             int
	}{
		{1000, 250, 75},
		{1000, 1000, 0},
		{1000, 1500, 0},
		{3, 2, 33},
		{0, 10, 0},
	}
	for _, tt := range tests {
		r := &CompressionResult{SourceSize: tt.source, AchievedSize: tt.achieved}
		if got := r.Savings(); got != tt.want {
			t.Errorf("Savings(%d -> %d) = %d, want %d", tt.source, tt.achieved, got, tt.want)
		}
	}
}

type recordingReporter struct {
	mu     sync.Mutex
	stages []string
	steps  map[string][]int
	label  string
}

func (r *recordingReporter) Stage(label string, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.steps == nil {
		r.steps = map[string][]int{}
	}
	r.stages = append(r.stages, label)
	r.label = label
}

func (r *recordingReporter) Step(done int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps[r.label] = append(r.steps[r.label], done)
}

func (r *recordingReporter) Finish() {}

func TestCompressToTargetReportsEncodeProgress(t *testing.T) {
	rec := &recordingReporter{}
	c := New(Options{WorkerCount: 3, Progress: rec})

	res, err := c.Compress(context.Background(), noisyDoc(), CompressOptions{TargetBytes: 1 << 30})
	require.NoError(t, err)

	var encodes int
	for _, label := range rec.stages {
		if !strings.HasPrefix(label, "Encoding") {
			continue
		}
		encodes++
		assert.Equal(t, []int{1, 2, 3}, rec.steps[label])
	}
	assert.Equal(t, res.Trials, encodes)
	assert.Equal(t, []int{1, 2, 3}, rec.steps["Rendering"])
}

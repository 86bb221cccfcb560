package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alde/flatpdf/pkg/converter"
	"github.com/alde/flatpdf/pkg/layout"
)

func TestSplitImageArg(t *testing.T) {
	tests := []struct {
		arg, path, edits string
	}{
		{"a.jpg", "a.jpg", ""},
		{"a.jpg:rotate=90", "a.jpg", "rotate=90"},
		{"C:/scans/a.jpg", "C:/scans/a.jpg", ""},
		{"dir:name/a.jpg:fit=cover,scale=80", "dir:name/a.jpg", "fit=cover,scale=80"},
	}
	for _, tt := range tests {
		path, edits := splitImageArg(tt.arg)
		assert.Equal(t, tt.path, path, tt.arg)
		assert.Equal(t, tt.edits, edits, tt.arg)
	}
}

func TestApplyEdits(t *testing.T) {
	state, ps, err := applyEdits("rotate=270, flip=hv, brightness=150, contrast=60, scale=50, fit=stretch, orientation=landscape, page=fit")
	require.NoError(t, err)

	assert.Equal(t, 270, state.Transform.Rotation)
	assert.True(t, state.Transform.FlipH)
	assert.True(t, state.Transform.FlipV)
	assert.Equal(t, 150, state.Transform.BrightnessPct)
	assert.Equal(t, 60, state.Transform.ContrastPct)
	assert.Equal(t, 50, state.ScalePercent)
	assert.Equal(t, layout.Stretch, state.Fit)
	assert.Equal(t, layout.Landscape, state.Orientation)
	assert.Equal(t, layout.FitToContent, ps)

	state, ps, err = applyEdits("")
	require.NoError(t, err)
	assert.Equal(t, converter.DefaultEditState(), state)
	assert.Equal(t, layout.PageSizeUnset, ps)
}

func TestApplyEditsRejects(t *testing.T) {
	for _, edits := range []string{
		"rotate=45",
		"flip=x",
		"brightness=10",
		"scale=500",
		"fit=tile",
		"colour=red",
		"rotate",
	} {
		_, _, err := applyEdits(edits)
		assert.Error(t, err, edits)
	}
}

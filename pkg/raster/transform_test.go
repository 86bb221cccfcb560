package raster

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    TransformSpec
		wantErr bool
	}{
		{"identity", Identity(), false},
		{"rotation 270", TransformSpec{Rotation: 270, BrightnessPct: 100, ContrastPct: 100}, false},
		{"rotation 45", TransformSpec{Rotation: 45, BrightnessPct: 100, ContrastPct: 100}, true},
		{"brightness too low", TransformSpec{BrightnessPct: 19, ContrastPct: 100}, true},
		{"contrast too high", TransformSpec{BrightnessPct: 100, ContrastPct: 201}, true},
		{"bounds inclusive", TransformSpec{BrightnessPct: 20, ContrastPct: 200}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyRotationDimensions(t *testing.T) {
	src, err := New(solid(30, 10, color.NRGBA{10, 20, 30, 255}))
	require.NoError(t, err)

	for _, rot := range []int{0, 90, 180, 270} {
		spec := Identity()
		spec.Rotation = rot
		out, err := Apply(src, spec)
		require.NoError(t, err)
		if rot == 90 || rot == 270 {
			assert.Equal(t, 10, out.Width(), "rotation %d", rot)
			assert.Equal(t, 30, out.Height(), "rotation %d", rot)
		} else {
			assert.Equal(t, 30, out.Width(), "rotation %d", rot)
			assert.Equal(t, 10, out.Height(), "rotation %d", rot)
		}
	}
}

func TestApplyRotationIsClockwise(t *testing.T) {
	img := solid(2, 1, color.NRGBA{0, 0, 0, 255})
	img.SetNRGBA(0, 0, color.NRGBA{255, 255, 255, 255})
	src, err := New(img)
	require.NoError(t, err)

	spec := Identity()
	spec.Rotation = 90
	out, err := Apply(src, spec)
	require.NoError(t, err)

	// The left pixel ends up on top after a clockwise quarter turn.
	assert.Equal(t, uint8(255), out.Image().NRGBAAt(0, 0).R)
	assert.Equal(t, uint8(0), out.Image().NRGBAAt(0, 1).R)
}

func TestApplyFlip(t *testing.T) {
	img := solid(2, 2, color.NRGBA{0, 0, 0, 255})
	img.SetNRGBA(0, 0, color.NRGBA{200, 0, 0, 255})
	src, err := New(img)
	require.NoError(t, err)

	spec := Identity()
	spec.FlipH = true
	out, err := Apply(src, spec)
	require.NoError(t, err)
	assert.Equal(t, uint8(200), out.Image().NRGBAAt(1, 0).R)

	spec = Identity()
	spec.FlipV = true
	out, err = Apply(src, spec)
	require.NoError(t, err)
	assert.Equal(t, uint8(200), out.Image().NRGBAAt(0, 1).R)
}

func TestApplyToneOrder(t *testing.T) {
	src, err := New(solid(1, 1, color.NRGBA{100, 128, 200, 77}))
	require.NoError(t, err)

	spec := Identity()
	spec.ContrastPct = 200
	spec.BrightnessPct = 50
	out, err := Apply(src, spec)
	require.NoError(t, err)

	px := out.Image().NRGBAAt(0, 0)
	// contrast: (100-128)*2+128 = 72, then brightness: 36
	assert.Equal(t, uint8(36), px.R)
	// mid-gray is a fixed point of contrast: 128*0.5 = 64
	assert.Equal(t, uint8(64), px.G)
	// (200-128)*2+128 = 272, *0.5 = 136; brightness is applied before the clamp
	assert.Equal(t, uint8(136), px.B)
	assert.Equal(t, uint8(77), px.A, "alpha is preserved")
}

func TestApplyClamps(t *testing.T) {
	src, err := New(solid(1, 1, color.NRGBA{250, 5, 128, 255}))
	require.NoError(t, err)

	spec := Identity()
	spec.BrightnessPct = 200
	out, err := Apply(src, spec)
	require.NoError(t, err)
	px := out.Image().NRGBAAt(0, 0)
	assert.Equal(t, uint8(255), px.R)
	assert.Equal(t, uint8(10), px.G)

	spec = Identity()
	spec.ContrastPct = 200
	out, err = Apply(src, spec)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), out.Image().NRGBAAt(0, 0).G)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	src, err := New(solid(4, 2, color.NRGBA{100, 100, 100, 255}))
	require.NoError(t, err)

	spec := TransformSpec{Rotation: 90, FlipH: true, BrightnessPct: 150, ContrastPct: 50}
	_, err = Apply(src, spec)
	require.NoError(t, err)

	assert.Equal(t, 4, src.Width())
	assert.Equal(t, color.NRGBA{100, 100, 100, 255}, src.Image().NRGBAAt(3, 1))
}

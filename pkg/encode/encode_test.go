package encode

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alde/flatpdf/pkg/raster"
)

// noisy builds a raster with smooth gradients plus noise, which behaves like
// a scanned page under JPEG.
func noisy(t *testing.T, rng *rand.Rand, w, h int) *raster.Buffer {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := rng.Intn(40)
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8((x*255/w + n) % 256),
				G: uint8((y*255/h + n) % 256),
				B: uint8(((x+y)*127/(w+h) + n) % 256),
				A: 255,
			})
		}
	}
	b, err := raster.New(img)
	require.NoError(t, err)
	return b
}

func TestJPEGQuality(t *testing.T) {
	assert.Equal(t, 1, JPEGQuality(0.001))
	assert.Equal(t, 5, JPEGQuality(0.05))
	assert.Equal(t, 92, JPEGQuality(0.92))
	assert.Equal(t, 100, JPEGQuality(1))
}

func TestValidateQuality(t *testing.T) {
	assert.NoError(t, ValidateQuality(1))
	assert.NoError(t, ValidateQuality(0.05))
	assert.Error(t, ValidateQuality(0))
	assert.Error(t, ValidateQuality(-0.5))
	assert.Error(t, ValidateQuality(1.01))
}

func TestEncodeRejectsBadQuality(t *testing.T) {
	b := noisy(t, rand.New(rand.NewSource(1)), 8, 8)
	_, err := JPEG{}.Encode(b, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEncode))

	_, err = JPEG{}.Encode(nil, 0.5)
	assert.True(t, errors.Is(err, ErrEncode))
}

func TestEncodeProducesDecodableJPEG(t *testing.T) {
	b := noisy(t, rand.New(rand.NewSource(2)), 64, 48)
	data, err := JPEG{}.Encode(b, 0.8)
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 48, cfg.Height)
}

func TestEncodeIsDeterministic(t *testing.T) {
	b := noisy(t, rand.New(rand.NewSource(3)), 32, 32)
	first, err := JPEG{}.Encode(b, 0.5)
	require.NoError(t, err)
	second, err := JPEG{}.Encode(b, 0.5)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEncodeFlattensTransparency(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	b, err := raster.New(img)
	require.NoError(t, err)

	data, err := JPEG{}.Encode(b, 0.9)
	require.NoError(t, err)

	out, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	r, g, bl, _ := out.At(8, 8).RGBA()
	assert.Greater(t, r>>8, uint32(240))
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, bl>>8, uint32(240))
}

func TestEncodeSizeMostlyMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const samples = 40
	ok := 0
	for i := 0; i < samples; i++ {
		b := noisy(t, rng, 24+rng.Intn(80), 24+rng.Intn(80))
		low, err := JPEG{}.Encode(b, 0.3)
		require.NoError(t, err)
		high, err := JPEG{}.Encode(b, 0.9)
		require.NoError(t, err)
		if len(low) <= len(high) {
			ok++
		}
	}
	assert.GreaterOrEqual(t, float64(ok)/samples, 0.95)
}

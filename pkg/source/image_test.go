package source

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestOpenImage(t *testing.T) {
	data := pngBytes(t, 40, 30)
	doc, err := OpenImage("id-1", "photo.png", data)
	require.NoError(t, err)

	assert.Equal(t, "id-1", doc.ID())
	assert.Equal(t, "photo.png", doc.Name())
	assert.Equal(t, 1, doc.PageCount())
	assert.Equal(t, int64(len(data)), doc.Size())
	assert.Equal(t, 40, doc.Config().Width)
	assert.Equal(t, "png", doc.Config().Format)

	_, err = doc.Page(1)
	assert.Error(t, err)
}

func TestOpenImageRejectsGarbage(t *testing.T) {
	_, err := OpenImage("x", "broken.jpg", []byte{0xff, 0xd8, 0x00})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceLoad))
}

func TestImageRenderScale(t *testing.T) {
	doc, err := OpenImage("id", "photo.png", pngBytes(t, 40, 30))
	require.NoError(t, err)
	page, err := doc.Page(0)
	require.NoError(t, err)

	b, err := page.Render(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 40, b.Width())
	assert.Equal(t, 30, b.Height())

	b, err = page.Render(context.Background(), 0.5)
	require.NoError(t, err)
	assert.Equal(t, 20, b.Width())
	assert.Equal(t, 15, b.Height())

	_, err = page.Render(context.Background(), -1)
	assert.True(t, errors.Is(err, ErrRender))
}

func TestImageRenderCancelled(t *testing.T) {
	doc, err := OpenImage("id", "photo.png", pngBytes(t, 4, 4))
	require.NoError(t, err)
	page, err := doc.Page(0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = page.Render(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPageErrorMatchesRenderFailure(t *testing.T) {
	err := error(&PageError{Source: "a.pdf", Page: 3, Err: errors.New("boom")})
	assert.True(t, errors.Is(err, ErrRender))
	assert.Contains(t, err.Error(), "page 3 of a.pdf")

	var pe *PageError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 3, pe.Page)
}

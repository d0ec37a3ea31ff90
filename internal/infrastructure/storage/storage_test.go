package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestImageProcessor_Validate(t *testing.T) {
	p := NewImageProcessor()

	assert.NoError(t, p.ValidateImage(encodePNG(t, 10, 10)))
	assert.Error(t, p.ValidateImage([]byte("not an image")))

	gifBuf := new(bytes.Buffer)
	require.NoError(t, gif.Encode(gifBuf, image.NewPaletted(image.Rect(0, 0, 2, 2), []color.Color{color.Black}), nil))
	assert.ErrorContains(t, p.ValidateImage(gifBuf.Bytes()), "gif")

	small := &ImageProcessor{MaxSize: 16, MaxDimension: DefaultMaxDimension}
	assert.Error(t, small.ValidateImage(encodePNG(t, 10, 10)))
}

func TestImageProcessor_Normalize(t *testing.T) {
	p := &ImageProcessor{MaxSize: DefaultMaxImageBytes, MaxDimension: 100}

	out, err := p.Normalize(encodePNG(t, 400, 200))
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)

	out, err = p.Normalize(encodePNG(t, 40, 30))
	require.NoError(t, err)
	cfg, err = jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width, "small images keep their size")
}

func TestObjectURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/catalog/products/a/b.jpg",
		ObjectURL("https://cdn.example.com/", "catalog", "/products/a/b.jpg"))
}

package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{10, 10, 10, 255})
	img.SetRGBA(1, 0, color.RGBA{80, 80, 80, 255})
	img.SetRGBA(0, 1, color.RGBA{160, 160, 160, 255})
	img.SetRGBA(1, 1, color.RGBA{250, 250, 250, 255})
	return img
}

func TestEncode_PNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, testImage(), FormatPNG))

	got, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), got.Bounds())
	r, _, _, _ := got.At(1, 1).RGBA()
	assert.Equal(t, uint32(250)*0x101, r)
}

func TestEncode_TIFF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, testImage(), FormatTIFF))

	got, err := tiff.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), got.Bounds())
}

func TestEncode_Unknown(t *testing.T) {
	assert.Error(t, Encode(&bytes.Buffer{}, testImage(), ImageFormat("gif")))
}

func TestParseImageFormat(t *testing.T) {
	f, err := ParseImageFormat("TIF")
	require.NoError(t, err)
	assert.Equal(t, FormatTIFF, f)

	f, err = ParseImageFormat("png")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)

	_, err = ParseImageFormat("jpeg")
	assert.Error(t, err)
}

func TestScale(t *testing.T) {
	src := testImage()
	assert.Same(t, image.Image(src), Scale(src, 1))

	out := Scale(src, 3)
	assert.Equal(t, 6, out.Bounds().Dx())
	assert.Equal(t, 6, out.Bounds().Dy())

	want := color.RGBAModel.Convert(src.At(1, 1)).(color.RGBA)
	got := color.RGBAModel.Convert(out.At(out.Bounds().Min.X+4, out.Bounds().Min.Y+4)).(color.RGBA)
	assert.Equal(t, want, got)
}

func TestScale_ClampsFactor(t *testing.T) {
	src := testImage()
	out := Scale(src, 1<<40)
	assert.Equal(t, src.Bounds().Dx()*MaxScale, out.Bounds().Dx())
	assert.Equal(t, src.Bounds().Dy()*MaxScale, out.Bounds().Dy())
}

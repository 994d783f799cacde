package render

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/nfnt/resize"
	"golang.org/x/image/tiff"
)

// ImageFormat selects the export encoding.
type ImageFormat string

const (
	FormatPNG  ImageFormat = "png"
	FormatTIFF ImageFormat = "tiff"
)

// ParseImageFormat accepts png, tiff or tif (any case).
func ParseImageFormat(s string) (ImageFormat, error) {
	switch strings.ToLower(s) {
	case "png":
		return FormatPNG, nil
	case "tiff", "tif":
		return FormatTIFF, nil
	}
	return "", fmt.Errorf("unsupported image format %q: must be png or tiff", s)
}

// Encode writes img in the given format.
func Encode(w io.Writer, img image.Image, format ImageFormat) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("unsupported image format %q", format)
}

// MaxScale is the largest enlargement factor Scale applies. The config
// schema carries the same bound on surface.scale.
const MaxScale = 64

// Scale enlarges img by an integer factor with nearest-neighbour sampling so
// every source pixel stays a sharp square. Factors above MaxScale are clamped.
func Scale(img image.Image, factor int) image.Image {
	if factor <= 1 {
		return img
	}
	factor = min(factor, MaxScale)
	b := img.Bounds()
	return resize.Resize(uint(b.Dx()*factor), uint(b.Dy()*factor), img, resize.NearestNeighbor)
}

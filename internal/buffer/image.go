package buffer

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// Format is an export image encoding.
type Format int

const (
	FormatPNG Format = iota
	FormatBMP
	FormatTIFF
)

// ErrUnknownFormat is returned for unrecognised export extensions.
var ErrUnknownFormat = errors.New("unknown image format")

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatBMP:
		return "bmp"
	case FormatTIFF:
		return "tiff"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// FormatFromPath picks the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".bmp":
		return FormatBMP, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// ToImage copies the buffer into a straight-alpha image.NRGBA.
func (b *PixelBuffer) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
	copy(img.Pix, b.data)
	return img
}

// FromImage converts any image into a buffer of the same size.
func FromImage(src image.Image) *PixelBuffer {
	r := src.Bounds()
	img := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(img, img.Bounds(), src, r.Min, draw.Src)
	return &PixelBuffer{data: img.Pix, width: r.Dx(), height: r.Dy()}
}

// Scaled returns a copy of src resized to width x height with
// nearest-neighbour sampling, keeping pixel art crisp.
func Scaled(src image.Image, width, height int) *PixelBuffer {
	// The scaler only samples concrete image types correctly.
	var in *image.NRGBA
	switch s := src.(type) {
	case *image.NRGBA:
		in = s
	case *PixelBuffer:
		in = s.ToImage()
	default:
		in = FromImage(src).ToImage()
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(img, img.Bounds(), in, in.Bounds(), draw.Src, nil)
	return &PixelBuffer{data: img.Pix, width: width, height: height}
}

// Encode writes the buffer in the given format.
func (b *PixelBuffer) Encode(w io.Writer, f Format) error {
	img := b.ToImage()
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("%w: %v", ErrUnknownFormat, f)
}

// Decode reads a PNG, BMP or TIFF image into a new buffer.
func Decode(r io.Reader) (*PixelBuffer, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return FromImage(img), nil
}

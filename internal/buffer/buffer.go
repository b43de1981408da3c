// internal/buffer/buffer.go
package buffer

import (
	"image"
	"image/color"

	"github.com/bethropolis/pixl/internal/types"
)

// PixelDiff is the minimal invertible record of one pixel change.
type PixelDiff struct {
	Position types.Position
	Before   types.RGBA
	After    types.RGBA
}

// PixelBuffer is straight-alpha RGBA storage, 4 bytes per pixel, row-major.
// Every access is bounds-checked; out-of-bounds access never panics.
type PixelBuffer struct {
	data   []byte
	width  int
	height int
}

// New creates a transparent buffer. Negative sizes are clamped to 0.
func New(width, height int) *PixelBuffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &PixelBuffer{
		data:   make([]byte, width*height*4),
		width:  width,
		height: height,
	}
}

// FromBytes wraps a copy of data. It returns false when len(data) does not
// match width*height*4.
func FromBytes(width, height int, data []byte) (*PixelBuffer, bool) {
	if width < 0 || height < 0 || len(data) != width*height*4 {
		return nil, false
	}
	b := &PixelBuffer{data: make([]byte, len(data)), width: width, height: height}
	copy(b.data, data)
	return b, true
}

func (b *PixelBuffer) Width() int  { return b.width }
func (b *PixelBuffer) Height() int { return b.height }

// Size returns the buffer dimensions.
func (b *PixelBuffer) Size() types.Size {
	return types.Size{Width: b.width, Height: b.height}
}

// Data exposes the backing bytes. Callers that write through it are
// responsible for refreshing any tile caches.
func (b *PixelBuffer) Data() []byte { return b.data }

// IsInBounds reports whether pos addresses a pixel of this buffer.
func (b *PixelBuffer) IsInBounds(pos types.Position) bool {
	return pos.X >= 0 && pos.Y >= 0 && pos.X < b.width && pos.Y < b.height
}

func (b *PixelBuffer) offset(pos types.Position) int {
	return (pos.Y*b.width + pos.X) * 4
}

// GetPixel returns the pixel at pos, or false when pos is out of bounds.
func (b *PixelBuffer) GetPixel(pos types.Position) (types.RGBA, bool) {
	if !b.IsInBounds(pos) {
		return types.RGBA{}, false
	}
	i := b.offset(pos)
	return types.RGBA{R: b.data[i], G: b.data[i+1], B: b.data[i+2], A: b.data[i+3]}, true
}

// SetPixel writes c at pos and returns the change. Out-of-bounds writes are
// a no-op returning false. Writing the color already present still returns
// a diff with Before == After.
func (b *PixelBuffer) SetPixel(pos types.Position, c types.RGBA) (PixelDiff, bool) {
	if !b.IsInBounds(pos) {
		return PixelDiff{}, false
	}
	i := b.offset(pos)
	before := types.RGBA{R: b.data[i], G: b.data[i+1], B: b.data[i+2], A: b.data[i+3]}
	b.data[i], b.data[i+1], b.data[i+2], b.data[i+3] = c.R, c.G, c.B, c.A
	return PixelDiff{Position: pos, Before: before, After: c}, true
}

// Fill sets every pixel to c.
func (b *PixelBuffer) Fill(c types.RGBA) {
	for i := 0; i < len(b.data); i += 4 {
		b.data[i], b.data[i+1], b.data[i+2], b.data[i+3] = c.R, c.G, c.B, c.A
	}
}

// FillRect sets every in-bounds pixel of r to c.
func (b *PixelBuffer) FillRect(r types.Rect, c types.RGBA) {
	r = b.clip(r)
	for y := r.Top; y <= r.Bottom; y++ {
		for x := r.Left; x <= r.Right; x++ {
			i := b.offset(types.Position{X: x, Y: y})
			b.data[i], b.data[i+1], b.data[i+2], b.data[i+3] = c.R, c.G, c.B, c.A
		}
	}
}

// clip intersects r with the buffer; the result may be empty (Right < Left).
func (b *PixelBuffer) clip(r types.Rect) types.Rect {
	if r.Left < 0 {
		r.Left = 0
	}
	if r.Top < 0 {
		r.Top = 0
	}
	if r.Right >= b.width {
		r.Right = b.width - 1
	}
	if r.Bottom >= b.height {
		r.Bottom = b.height - 1
	}
	return r
}

// Clone returns a deep copy.
func (b *PixelBuffer) Clone() *PixelBuffer {
	c := &PixelBuffer{data: make([]byte, len(b.data)), width: b.width, height: b.height}
	copy(c.data, b.data)
	return c
}

// Snapshot returns a copy of the raw bytes.
func (b *PixelBuffer) Snapshot() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// Replace overwrites the buffer contents with data of the same length.
func (b *PixelBuffer) Replace(data []byte) bool {
	if len(data) != len(b.data) {
		return false
	}
	copy(b.data, data)
	return true
}

// Equal compares dimensions and bytes.
func (b *PixelBuffer) Equal(o *PixelBuffer) bool {
	if b.width != o.width || b.height != o.height {
		return false
	}
	for i := range b.data {
		if b.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

// Resize changes the buffer to newSize. The rectangle of old content
// starting at srcOrigin is copied to destOrigin in the new buffer; pixels
// falling outside either buffer are dropped and uncovered pixels are
// transparent.
func (b *PixelBuffer) Resize(newSize types.Size, destOrigin, srcOrigin types.Position) {
	w, h := newSize.Width, newSize.Height
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	next := make([]byte, w*h*4)
	for y := 0; y < b.height; y++ {
		sy := y + srcOrigin.Y
		dy := y + destOrigin.Y
		if sy < 0 || sy >= b.height || dy < 0 || dy >= h {
			continue
		}
		for x := 0; x < b.width; x++ {
			sx := x + srcOrigin.X
			dx := x + destOrigin.X
			if sx < 0 || sx >= b.width || dx < 0 || dx >= w {
				continue
			}
			si := (sy*b.width + sx) * 4
			di := (dy*w + dx) * 4
			copy(next[di:di+4], b.data[si:si+4])
		}
	}
	b.data, b.width, b.height = next, w, h
}

// image.Image implementation so buffers can be handed to encoders and
// x/image/draw directly.

func (b *PixelBuffer) ColorModel() color.Model { return color.NRGBAModel }

func (b *PixelBuffer) Bounds() image.Rectangle { return image.Rect(0, 0, b.width, b.height) }

func (b *PixelBuffer) At(x, y int) color.Color {
	c, _ := b.GetPixel(types.Position{X: x, Y: y})
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Package clipboard keeps the internal pixel register used by copy, cut
// and paste.
package clipboard

import (
	"github.com/bethropolis/pixl/internal/buffer"
	"github.com/bethropolis/pixl/internal/core/selection"
	"github.com/bethropolis/pixl/internal/logger"
	"github.com/bethropolis/pixl/internal/types"
)

// Manager holds the last copied region.
type Manager struct {
	pixels *buffer.PixelBuffer
	origin types.Position
}

// NewManager creates an empty clipboard.
func NewManager() *Manager {
	return &Manager{}
}

// Copy stores the pixels of src selected by mask, cropped to the mask's
// bounding box. Unselected pixels inside the box become transparent. With
// a nil mask the whole buffer is copied. It returns false when there is
// nothing to copy.
func (m *Manager) Copy(src *buffer.PixelBuffer, mask *selection.Mask) bool {
	size := src.Size()
	box := types.Rect{Right: size.Width - 1, Bottom: size.Height - 1}
	if mask != nil {
		var ok bool
		if box, ok = mask.BoundBox(); !ok {
			return false
		}
	}
	if box.Width() <= 0 || box.Height() <= 0 {
		return false
	}

	out := buffer.New(box.Width(), box.Height())
	for y := box.Top; y <= box.Bottom; y++ {
		for x := box.Left; x <= box.Right; x++ {
			pos := types.Position{X: x, Y: y}
			if mask != nil && !mask.Get(pos) {
				continue
			}
			if c, ok := src.GetPixel(pos); ok {
				out.SetPixel(types.Position{X: x - box.Left, Y: y - box.Top}, c)
			}
		}
	}
	m.pixels, m.origin = out, box.Origin()
	logger.DebugTagf("clipboard", "ClipboardManager: Copied %s region from %v", out.Size(), m.origin)
	return true
}

// Set replaces the register with an external image placed at origin.
func (m *Manager) Set(img *buffer.PixelBuffer, origin types.Position) {
	m.pixels, m.origin = img.Clone(), origin
}

// Has reports whether the register holds pixels.
func (m *Manager) Has() bool { return m.pixels != nil }

// Content returns a copy of the register and where it was copied from.
func (m *Manager) Content() (*buffer.PixelBuffer, types.Position, bool) {
	if m.pixels == nil {
		return nil, types.Position{}, false
	}
	return m.pixels.Clone(), m.origin, true
}

// Clear empties the register.
func (m *Manager) Clear() {
	m.pixels = nil
	m.origin = types.Position{}
}

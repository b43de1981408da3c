package selection

import "github.com/bethropolis/pixl/internal/types"

// Mask is a per-pixel selection bitmap over the canvas with a lazily
// recomputed bounding box.
type Mask struct {
	width  int
	height int
	bits   []uint8 // 1 = selected

	box      types.Rect
	hasBox   bool
	boxValid bool
}

// NewMask creates an empty mask of the given size.
func NewMask(size types.Size) *Mask {
	w, h := max(size.Width, 0), max(size.Height, 0)
	return &Mask{width: w, height: h, bits: make([]uint8, w*h), boxValid: true}
}

// Size returns the mask dimensions.
func (m *Mask) Size() types.Size { return types.Size{Width: m.width, Height: m.height} }

func (m *Mask) inBounds(p types.Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < m.width && p.Y < m.height
}

// Get returns the bit at p; false outside the mask.
func (m *Mask) Get(p types.Position) bool {
	if !m.inBounds(p) {
		return false
	}
	return m.bits[p.Y*m.width+p.X] != 0
}

// Set writes the bit at p. Out-of-bounds positions are ignored.
func (m *Mask) Set(p types.Position, on bool) {
	if !m.inBounds(p) {
		return
	}
	var v uint8
	if on {
		v = 1
	}
	i := p.Y*m.width + p.X
	if m.bits[i] != v {
		m.bits[i] = v
		m.boxValid = false
	}
}

// SetRect writes every in-bounds bit of r.
func (m *Mask) SetRect(r types.Rect, on bool) {
	for y := max(r.Top, 0); y <= min(r.Bottom, m.height-1); y++ {
		for x := max(r.Left, 0); x <= min(r.Right, m.width-1); x++ {
			m.Set(types.Position{X: x, Y: y}, on)
		}
	}
}

// Fill sets or clears every bit.
func (m *Mask) Fill(on bool) {
	var v uint8
	if on {
		v = 1
	}
	for i := range m.bits {
		m.bits[i] = v
	}
	m.boxValid = false
}

// BoundBox returns the smallest rectangle containing every set bit, or
// false when the mask is empty.
func (m *Mask) BoundBox() (types.Rect, bool) {
	if !m.boxValid {
		m.recomputeBox()
	}
	return m.box, m.hasBox
}

func (m *Mask) recomputeBox() {
	m.boxValid = true
	m.hasBox = false
	r := types.Rect{Left: m.width, Top: m.height, Right: -1, Bottom: -1}
	for y := 0; y < m.height; y++ {
		row := m.bits[y*m.width : (y+1)*m.width]
		for x, b := range row {
			if b == 0 {
				continue
			}
			r.Left = min(r.Left, x)
			r.Right = max(r.Right, x)
			r.Top = min(r.Top, y)
			r.Bottom = max(r.Bottom, y)
		}
	}
	if r.Right >= 0 {
		m.box, m.hasBox = r, true
	} else {
		m.box = types.Rect{}
	}
}

// IsEmpty reports whether no bit is set.
func (m *Mask) IsEmpty() bool {
	_, ok := m.BoundBox()
	return !ok
}

// Count returns the number of set bits.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		n += int(b)
	}
	return n
}

// Clone returns a deep copy.
func (m *Mask) Clone() *Mask {
	c := *m
	c.bits = append([]uint8(nil), m.bits...)
	return &c
}

// Combine merges other into m using mode. Both masks must share a size;
// mismatched masks are combined over their overlapping area.
func (m *Mask) Combine(other *Mask, mode EditMode) {
	if mode == ModeReplace {
		m.Fill(false)
	}
	for y := 0; y < min(m.height, other.height); y++ {
		for x := 0; x < min(m.width, other.width); x++ {
			if other.bits[y*other.width+x] == 0 {
				continue
			}
			m.Set(types.Position{X: x, Y: y}, mode != ModeSubtract)
		}
	}
}

// Shifted returns a copy of m moved by offset; bits leaving the canvas are
// dropped.
func (m *Mask) Shifted(offset types.Position) *Mask {
	out := NewMask(m.Size())
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if m.bits[y*m.width+x] != 0 {
				out.Set(types.Position{X: x + offset.X, Y: y + offset.Y}, true)
			}
		}
	}
	return out
}

package tile

import (
	"github.com/bethropolis/pixl/internal/buffer"
	"github.com/bethropolis/pixl/internal/types"
)

// Grid partitions a buffer into Size x Size tiles, row-major.
type Grid struct {
	buf     *buffer.PixelBuffer
	size    int
	rows    int
	columns int
	tiles   []*Tile
}

// MaxSize is the largest tile edge. Patches address pixels inside a tile
// with uint16 indices, so a tile holds at most 65536 pixels.
const MaxSize = 256

// NewGrid builds the tile grid for buf and scans every tile's uniformity.
// tileSize is clamped to 1..MaxSize.
func NewGrid(buf *buffer.PixelBuffer, tileSize int) *Grid {
	tileSize = max(1, min(MaxSize, tileSize))
	g := &Grid{size: tileSize}
	g.Rebuild(buf)
	return g
}

// Rebuild recreates the tiles for buf, e.g. after the buffer was resized or
// replaced. All tiles start dirty.
func (g *Grid) Rebuild(buf *buffer.PixelBuffer) {
	g.buf = buf
	g.rows = (buf.Height() + g.size - 1) / g.size
	g.columns = (buf.Width() + g.size - 1) / g.size
	g.tiles = make([]*Tile, 0, g.rows*g.columns)
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.columns; c++ {
			t := &Tile{Row: r, Column: c, Size: g.size, Dirty: true}
			t.Width = min(g.size, buf.Width()-c*g.size)
			t.Height = min(g.size, buf.Height()-r*g.size)
			g.tiles = append(g.tiles, t)
		}
	}
	g.ScanUniformity()
}

func (g *Grid) TileSize() int { return g.size }
func (g *Grid) Rows() int     { return g.rows }
func (g *Grid) Columns() int  { return g.columns }

// Tiles returns all tiles in row-major order.
func (g *Grid) Tiles() []*Tile { return g.tiles }

// Tile returns the tile at row/column, or nil.
func (g *Grid) Tile(row, column int) *Tile {
	if row < 0 || column < 0 || row >= g.rows || column >= g.columns {
		return nil
	}
	return g.tiles[row*g.columns+column]
}

// TileAt returns the tile owning pos, or nil when pos is outside the buffer.
func (g *Grid) TileAt(pos types.Position) *Tile {
	if !g.buf.IsInBounds(pos) {
		return nil
	}
	return g.Tile(pos.Y/g.size, pos.X/g.size)
}

// PixelWritten updates the owning tile after c was written at pos: the tile
// is marked dirty and its uniform cache is kept current.
func (g *Grid) PixelWritten(pos types.Position, c types.RGBA) {
	t := g.TileAt(pos)
	if t == nil {
		return
	}
	t.Dirty = true
	switch {
	case t.stale:
	case t.uniform && t.uniformColor == c:
	case t.PixelCount() == 1:
		t.uniform, t.uniformColor = true, c
	case t.uniform:
		t.uniform = false
	default:
		// Non-uniform tiles may have just become uniform.
		t.stale = true
	}
}

// Uniform reports whether every pixel of t shares one color.
func (g *Grid) Uniform(t *Tile) (types.RGBA, bool) {
	if t.stale {
		g.scan(t)
	}
	return t.uniformColor, t.uniform
}

func (g *Grid) scan(t *Tile) {
	t.stale = false
	o := t.Origin()
	first, _ := g.buf.GetPixel(o)
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			c, _ := g.buf.GetPixel(types.Position{X: o.X + x, Y: o.Y + y})
			if c != first {
				t.uniform = false
				t.uniformColor = types.RGBA{}
				return
			}
		}
	}
	t.uniform = true
	t.uniformColor = first
}

// ScanUniformity recomputes the uniform cache of every tile. Needed after
// the buffer bytes were replaced wholesale.
func (g *Grid) ScanUniformity() {
	for _, t := range g.tiles {
		g.scan(t)
	}
}

// FillWholeTile paints every pixel of t with c.
func (g *Grid) FillWholeTile(t *Tile, c types.RGBA) {
	g.buf.FillRect(t.Bounds(), c)
	t.Dirty = true
	t.uniform = true
	t.uniformColor = c
	t.stale = false
}

// SetAllDirty marks every tile dirty.
func (g *Grid) SetAllDirty() {
	for _, t := range g.tiles {
		t.Dirty = true
	}
}

// DirtyTiles returns the tiles written since the last ResetDirty.
func (g *Grid) DirtyTiles() []*Tile {
	var out []*Tile
	for _, t := range g.tiles {
		if t.Dirty {
			out = append(out, t)
		}
	}
	return out
}

// ResetDirty clears every dirty flag, typically after a render upload.
func (g *Grid) ResetDirty() {
	for _, t := range g.tiles {
		t.Dirty = false
	}
}

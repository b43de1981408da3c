// Package tile partitions a PixelBuffer into fixed-size tiles for dirty
// tracking and uniform-color shortcuts.
package tile

import (
	"fmt"

	"github.com/bethropolis/pixl/internal/types"
)

// Tile is one cell of a Grid. Edge tiles are clipped to the buffer, so
// Width/Height may be smaller than Size.
type Tile struct {
	Row    int
	Column int
	Size   int
	Width  int
	Height int

	Dirty bool

	uniform      bool
	uniformColor types.RGBA
	stale        bool // uniform cache must be rescanned before use
}

// Origin is the tile's top-left pixel in buffer coordinates.
func (t *Tile) Origin() types.Position {
	return types.Position{X: t.Column * t.Size, Y: t.Row * t.Size}
}

// Bounds is the tile's clipped rectangle in buffer coordinates.
func (t *Tile) Bounds() types.Rect {
	o := t.Origin()
	return types.Rect{Left: o.X, Top: o.Y, Right: o.X + t.Width - 1, Bottom: o.Y + t.Height - 1}
}

// IsInBounds reports whether a tile-local position lies inside the tile.
func (t *Tile) IsInBounds(local types.Position) bool {
	return local.X >= 0 && local.Y >= 0 && local.X < t.Width && local.Y < t.Height
}

// PixelCount is the number of in-bounds pixels.
func (t *Tile) PixelCount() int { return t.Width * t.Height }

// LocalIndex converts a buffer position inside the tile to a row-major
// index within the tile's Size x Size cell.
func (t *Tile) LocalIndex(pos types.Position) int {
	o := t.Origin()
	return (pos.Y-o.Y)*t.Size + (pos.X - o.X)
}

// PositionOf is the inverse of LocalIndex.
func (t *Tile) PositionOf(index int) types.Position {
	o := t.Origin()
	return types.Position{X: o.X + index%t.Size, Y: o.Y + index/t.Size}
}

func (t *Tile) String() string {
	return fmt.Sprintf("tile[%d,%d]", t.Row, t.Column)
}

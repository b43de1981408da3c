// Package patch defines the invertible records attached to layer-buffer
// history entries.
package patch

import (
	"fmt"

	"github.com/bethropolis/pixl/internal/types"
)

// Packed is one RGBA pixel packed as A<<24 | R<<16 | G<<8 | B.
type Packed uint32

// Pack packs c.
func Pack(c types.RGBA) Packed {
	return Packed(uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B))
}

// Unpack expands p back to RGBA.
func (p Packed) Unpack() types.RGBA {
	return types.RGBA{R: uint8(p >> 16), G: uint8(p >> 8), B: uint8(p), A: uint8(p >> 24)}
}

// TileIndex addresses a tile by row and column.
type TileIndex struct {
	Row    int
	Column int
}

func (t TileIndex) String() string { return fmt.Sprintf("%d:%d", t.Row, t.Column) }

// PixelList records sparse changes inside one tile. Indices are row-major
// offsets within the tile's Size x Size cell; Before/After are parallel.
type PixelList struct {
	Tile    TileIndex
	Indices []uint16
	Before  []Packed
	After   []Packed
}

// TileFill records a whole tile painted a single color. Before is nil when
// the tile was not uniform; the prior pixels are then carried by a
// PixelList for the same tile in the same patch.
type TileFill struct {
	Tile   TileIndex
	Before *Packed
	After  Packed
}

// Whole records full-buffer snapshots.
type Whole struct {
	Before []byte
	After  []byte
}

// LayerBuffer is the payload of a layer-buffer history entry. Redo applies
// Fills then Pixels; undo applies Pixels then Fills. Whole, when set,
// replaces the buffer and the other fields are empty.
type LayerBuffer struct {
	LayerID string
	Pixels  []PixelList
	Fills   []TileFill
	Whole   *Whole
}

// Empty reports whether applying the patch would change nothing.
func (p *LayerBuffer) Empty() bool {
	return p == nil || (len(p.Pixels) == 0 && len(p.Fills) == 0 && p.Whole == nil)
}

// PixelRecords counts pixel-list entries.
func (p *LayerBuffer) PixelRecords() int {
	n := 0
	for _, pl := range p.Pixels {
		n += len(pl.Indices)
	}
	return n
}

// Shape names the patch form for logs and labels.
func (p *LayerBuffer) Shape() string {
	switch {
	case p.Empty():
		return "empty"
	case p.Whole != nil:
		return "whole"
	case len(p.Pixels) == 0:
		return "tile-fill"
	case len(p.Fills) == 0:
		return "pixel-list"
	}
	return "mixed"
}

package tile

import (
	"testing"

	"github.com/bethropolis/pixl/internal/buffer"
	"github.com/bethropolis/pixl/internal/types"
)

var (
	red   = types.RGBA{R: 255, A: 255}
	green = types.RGBA{G: 255, A: 255}
)

func TestGridPartitionsBufferExactly(t *testing.T) {
	buf := buffer.New(10, 7)
	g := NewGrid(buf, 4)
	if g.Rows() != 2 || g.Columns() != 3 {
		t.Fatalf("grid = %dx%d, want 2x3", g.Rows(), g.Columns())
	}

	covered := make(map[types.Position]int)
	for _, tl := range g.Tiles() {
		b := tl.Bounds()
		for y := b.Top; y <= b.Bottom; y++ {
			for x := b.Left; x <= b.Right; x++ {
				covered[types.Position{X: x, Y: y}]++
			}
		}
	}
	if len(covered) != 70 {
		t.Fatalf("covered %d pixels, want 70", len(covered))
	}
	for p, n := range covered {
		if n != 1 {
			t.Fatalf("pixel %v covered %d times", p, n)
		}
	}

	edge := g.Tile(1, 2)
	if edge.Width != 2 || edge.Height != 3 {
		t.Fatalf("edge tile = %dx%d, want 2x3", edge.Width, edge.Height)
	}
	if !edge.IsInBounds(types.Position{X: 1, Y: 2}) || edge.IsInBounds(types.Position{X: 2, Y: 0}) {
		t.Fatal("IsInBounds ignores clipping")
	}
}

func TestUniformCacheTracksWrites(t *testing.T) {
	buf := buffer.New(4, 4)
	g := NewGrid(buf, 2)
	tl := g.Tile(0, 0)

	if c, ok := g.Uniform(tl); !ok || c != types.Transparent {
		t.Fatalf("fresh tile uniform = %v,%v", c, ok)
	}

	write := func(p types.Position, c types.RGBA) {
		buf.SetPixel(p, c)
		g.PixelWritten(p, c)
	}

	write(types.Position{X: 0, Y: 0}, red)
	if _, ok := g.Uniform(tl); ok {
		t.Fatal("tile still uniform after differing write")
	}
	write(types.Position{X: 1, Y: 0}, red)
	write(types.Position{X: 0, Y: 1}, red)
	write(types.Position{X: 1, Y: 1}, red)
	if c, ok := g.Uniform(tl); !ok || c != red {
		t.Fatalf("tile uniform = %v,%v, want red", c, ok)
	}
	if other := g.Tile(1, 1); !other.Dirty {
		t.Fatal("tiles start dirty after build")
	}
}

func TestDirtyTracking(t *testing.T) {
	buf := buffer.New(4, 4)
	g := NewGrid(buf, 2)
	g.ResetDirty()
	if len(g.DirtyTiles()) != 0 {
		t.Fatal("dirty tiles after reset")
	}

	p := types.Position{X: 3, Y: 0}
	buf.SetPixel(p, red)
	g.PixelWritten(p, red)
	dirty := g.DirtyTiles()
	if len(dirty) != 1 || dirty[0] != g.Tile(0, 1) {
		t.Fatalf("dirty = %v", dirty)
	}

	g.PixelWritten(types.Position{X: 9, Y: 9}, red) // out of bounds: ignored
	g.SetAllDirty()
	if len(g.DirtyTiles()) != 4 {
		t.Fatal("SetAllDirty missed tiles")
	}
}

func TestFillWholeTile(t *testing.T) {
	buf := buffer.New(3, 3)
	g := NewGrid(buf, 2)
	edge := g.Tile(1, 1) // 1x1 clipped tile at (2,2)
	g.FillWholeTile(edge, green)

	if c, _ := buf.GetPixel(types.Position{X: 2, Y: 2}); c != green {
		t.Fatalf("(2,2) = %v", c)
	}
	if c, _ := buf.GetPixel(types.Position{X: 1, Y: 1}); c != types.Transparent {
		t.Fatal("fill leaked outside the tile")
	}
	if c, ok := g.Uniform(edge); !ok || c != green {
		t.Fatalf("uniform = %v,%v", c, ok)
	}
}

func TestLocalIndexRoundTrip(t *testing.T) {
	buf := buffer.New(8, 8)
	g := NewGrid(buf, 4)
	tl := g.Tile(1, 1)
	p := types.Position{X: 6, Y: 5}
	idx := tl.LocalIndex(p)
	if idx != 1*4+2 {
		t.Fatalf("LocalIndex = %d", idx)
	}
	if tl.PositionOf(idx) != p {
		t.Fatalf("PositionOf = %v", tl.PositionOf(idx))
	}
	if g.TileAt(p) != tl || g.TileAt(types.Position{X: -1}) != nil {
		t.Fatal("TileAt mismatch")
	}
}

func TestSinglePixelTilesStayUniform(t *testing.T) {
	buf := buffer.New(3, 1)
	g := NewGrid(buf, 2) // the right edge tile is 1x1
	edge := g.Tile(0, 1)
	if edge.PixelCount() != 1 {
		t.Fatalf("edge tile has %d pixels", edge.PixelCount())
	}
	p := types.Position{X: 2, Y: 0}
	buf.SetPixel(p, red)
	g.PixelWritten(p, red)
	if c, ok := g.Uniform(edge); !ok || c != red {
		t.Errorf("Uniform(edge) = %v, %v; want red, true", c, ok)
	}

	ones := NewGrid(buffer.New(2, 2), 1)
	q := types.Position{X: 1, Y: 1}
	ones.buf.SetPixel(q, green)
	ones.PixelWritten(q, green)
	if c, ok := ones.Uniform(ones.TileAt(q)); !ok || c != green {
		t.Errorf("Uniform(1x1 tile) = %v, %v; want green, true", c, ok)
	}
}

func TestTileSizeClamped(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 1},
		{-3, 1},
		{16, 16},
		{MaxSize, MaxSize},
		{MaxSize + 44, MaxSize},
	}
	for _, tt := range tests {
		if got := NewGrid(buffer.New(4, 4), tt.in).TileSize(); got != tt.want {
			t.Errorf("NewGrid(_, %d).TileSize() = %d, want %d", tt.in, got, tt.want)
		}
	}
}

package diff

import (
	"testing"

	"github.com/bethropolis/pixl/internal/buffer"
	"github.com/bethropolis/pixl/internal/patch"
	"github.com/bethropolis/pixl/internal/tile"
	"github.com/bethropolis/pixl/internal/types"
)

var (
	red   = types.RGBA{R: 255, A: 255}
	green = types.RGBA{G: 255, A: 255}
	blue  = types.RGBA{B: 255, A: 255}
)

// paint writes c at p and records the diff the way a layer does.
func paint(m *Manager, buf *buffer.PixelBuffer, grid *tile.Grid, p types.Position, c types.RGBA) {
	if d, ok := buf.SetPixel(p, c); ok {
		grid.PixelWritten(p, c)
		m.Add(d)
	}
}

func TestFirstBeforeLastAfter(t *testing.T) {
	buf := buffer.New(4, 4)
	grid := tile.NewGrid(buf, 4)
	m := NewManager()
	p := types.Position{X: 1, Y: 1}

	paint(m, buf, grid, p, red)
	paint(m, buf, grid, p, green)

	d := m.Current()[p]
	if d.Before != types.Transparent || d.After != green {
		t.Fatalf("record = %+v, want transparent -> green", d)
	}
	if !m.IsDiffExists(p) || m.IsDiffExists(types.Position{}) {
		t.Fatal("IsDiffExists mismatch")
	}

	pt := m.BuildPatch("L", buf, grid, 0.8)
	if pt.Shape() != "pixel-list" || len(pt.Pixels) != 1 {
		t.Fatalf("patch shape = %s", pt.Shape())
	}
	pl := pt.Pixels[0]
	if len(pl.Indices) != 1 || pl.Indices[0] != 5 {
		t.Fatalf("indices = %v", pl.Indices)
	}
	if pl.Before[0].Unpack() != types.Transparent || pl.After[0].Unpack() != green {
		t.Fatalf("before/after = %v/%v", pl.Before[0].Unpack(), pl.After[0].Unpack())
	}
}

func TestResetClears(t *testing.T) {
	m := NewManager()
	m.Add(buffer.PixelDiff{Position: types.Position{X: 1}, After: red})
	m.Reset()
	if !m.Empty() || m.PendingPixelCount() != 0 {
		t.Fatal("Reset left records behind")
	}
}

func TestBuildPatchDropsNoOps(t *testing.T) {
	buf := buffer.New(4, 4)
	grid := tile.NewGrid(buf, 2)
	m := NewManager()
	p := types.Position{X: 0, Y: 0}
	paint(m, buf, grid, p, red)
	paint(m, buf, grid, p, types.Transparent)
	if pt := m.BuildPatch("L", buf, grid, 0.8); pt != nil {
		t.Fatalf("expected nil patch, got %s", pt.Shape())
	}
}

func TestBucketPromotedToTileFill(t *testing.T) {
	buf := buffer.New(4, 4)
	grid := tile.NewGrid(buf, 2)
	m := NewManager()
	for y := 0; y < 2; y++ {
		for x := 2; x < 4; x++ {
			paint(m, buf, grid, types.Position{X: x, Y: y}, blue)
		}
	}
	paint(m, buf, grid, types.Position{X: 0, Y: 3}, blue)

	pt := m.BuildPatch("L", buf, grid, 0.8)
	if pt.Shape() != "mixed" {
		t.Fatalf("shape = %s", pt.Shape())
	}
	if len(pt.Fills) != 1 || pt.Fills[0].Tile != (patch.TileIndex{Row: 0, Column: 1}) {
		t.Fatalf("fills = %+v", pt.Fills)
	}
	if pt.Fills[0].Before == nil || pt.Fills[0].Before.Unpack() != types.Transparent || pt.Fills[0].After.Unpack() != blue {
		t.Fatal("tile fill colors wrong")
	}
	if len(pt.Pixels) != 1 || len(pt.Pixels[0].Indices) != 1 {
		t.Fatalf("pixels = %+v", pt.Pixels)
	}
}

func TestWholePromotion(t *testing.T) {
	buf := buffer.New(2, 2)
	buf.SetPixel(types.Position{X: 1, Y: 1}, green)
	grid := tile.NewGrid(buf, 2)
	orig := buf.Snapshot()
	m := NewManager()
	for _, p := range []types.Position{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}} {
		paint(m, buf, grid, p, red)
	}

	pt := m.BuildPatch("L", buf, grid, 0.5)
	if pt.Whole == nil {
		t.Fatalf("shape = %s, want whole", pt.Shape())
	}
	if string(pt.Whole.Before) != string(orig) {
		t.Fatal("whole before does not match the pre-gesture bytes")
	}
	if string(pt.Whole.After) != string(buf.Data()) {
		t.Fatal("whole after does not match the current bytes")
	}
}

func TestTileFillAfterPixelsExpands(t *testing.T) {
	buf := buffer.New(2, 2)
	grid := tile.NewGrid(buf, 2)
	m := NewManager()
	p := types.Position{X: 0, Y: 0}
	paint(m, buf, grid, p, red)

	tl := grid.Tile(0, 0)
	m.AddTileFill(tl, types.Transparent, blue)
	grid.FillWholeTile(tl, blue)

	if m.IsTileFilled(tl) {
		t.Fatal("fill should have been expanded into pixel records")
	}
	if d := m.Current()[p]; d.Before != types.Transparent || d.After != blue {
		t.Fatalf("record = %+v", d)
	}
	if m.PendingPixelCount() != 4 {
		t.Fatalf("pending = %d", m.PendingPixelCount())
	}
}

func TestRefillDropsPixelsInTile(t *testing.T) {
	buf := buffer.New(4, 2)
	grid := tile.NewGrid(buf, 2)
	m := NewManager()
	tl := grid.Tile(0, 0)

	m.AddTileFill(tl, types.Transparent, red)
	grid.FillWholeTile(tl, red)
	inside := types.Position{X: 1, Y: 1}
	outside := types.Position{X: 3, Y: 0}
	paint(m, buf, grid, inside, green)
	paint(m, buf, grid, outside, green)

	m.AddTileFill(tl, red, blue)
	grid.FillWholeTile(tl, blue)

	if m.IsDiffExists(inside) {
		t.Error("pixel record inside the refilled tile survived")
	}
	if !m.IsDiffExists(outside) {
		t.Error("pixel record outside the tile was dropped")
	}
	fills := m.Fills()
	if len(fills) != 1 {
		t.Fatalf("fills = %d, want 1", len(fills))
	}
	if f := fills[0]; f.Before == nil || f.Before.Unpack() != types.Transparent || f.After.Unpack() != blue {
		t.Errorf("fill = %+v, want transparent -> blue", f)
	}
}

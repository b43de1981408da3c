// Package fill implements tile-aware flood fill, selection-area fill and
// the region growth used by auto-select.
package fill

import (
	"fmt"
	"time"

	"github.com/bethropolis/pixl/internal/buffer"
	"github.com/bethropolis/pixl/internal/core/selection"
	"github.com/bethropolis/pixl/internal/layer"
	"github.com/bethropolis/pixl/internal/logger"
	"github.com/bethropolis/pixl/internal/tile"
	"github.com/bethropolis/pixl/internal/types"
)

// Mode selects how an active selection constrains a fill.
type Mode int

const (
	// ModeIgnore floods regardless of the selection.
	ModeIgnore Mode = iota
	// ModeSelectionBounded floods only through selected pixels.
	ModeSelectionBounded
	// ModeArea paints every selected pixel without flooding.
	ModeArea
)

// ParseMode maps "ignore", "selection-bounded" (or "inside") and "area".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "ignore", "":
		return ModeIgnore, nil
	case "selection-bounded", "inside":
		return ModeSelectionBounded, nil
	case "area":
		return ModeArea, nil
	}
	return ModeIgnore, fmt.Errorf("unknown fill mode %q", s)
}

// Options describe one fill.
type Options struct {
	Seed      types.Position
	Color     types.RGBA
	Tolerance uint8
	Mode      Mode
	// Mask is the active selection, or nil when nothing is selected.
	Mask *selection.Mask
}

// Result summarises what a fill touched.
type Result struct {
	Pixels int // pixels written one by one
	Tiles  int // tiles written as a whole
}

// Changed reports whether anything was written.
func (r Result) Changed() bool { return r.Pixels > 0 || r.Tiles > 0 }

var neighbours = [4]types.Position{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}

// filler carries the state of one fill over a layer.
type filler struct {
	agent  *layer.Agent
	buf    *buffer.PixelBuffer
	grid   *tile.Grid
	mask   *selection.Mask // nil: every pixel allowed
	target types.RGBA
	color  types.RGBA
	tol    uint8
	filled map[*tile.Tile]bool
	res    Result
}

// Fill applies opts to the layer, recording every change in the agent's
// gesture diffs. The working set should be empty when Fill starts; the
// caller flushes it into history afterwards. A seed outside the buffer is
// a no-op.
func Fill(agent *layer.Agent, opts Options) Result {
	start := time.Now()
	buf := agent.Buffer()
	if !buf.IsInBounds(opts.Seed) {
		logger.DebugTagf("fill", "fill: seed %v outside %s, ignored", opts.Seed, buf.Size())
		return Result{}
	}

	f := &filler{
		agent:  agent,
		buf:    buf,
		grid:   agent.Grid(),
		color:  opts.Color,
		tol:    opts.Tolerance,
		filled: make(map[*tile.Tile]bool),
	}
	if opts.Mask != nil && !opts.Mask.IsEmpty() && opts.Mode != ModeIgnore {
		f.mask = opts.Mask
	}

	switch {
	case opts.Mode == ModeArea && f.mask != nil:
		f.fillAllowed()
	default:
		f.flood(opts.Seed)
	}

	logger.DebugTagf("fill", "fill: %d tiles, %d pixels in %v", f.res.Tiles, f.res.Pixels, time.Since(start))
	return f.res
}

func (f *filler) allowed(p types.Position) bool {
	return f.mask == nil || f.mask.Get(p)
}

// tileAllowed reports whether every pixel of t is allowed.
func (f *filler) tileAllowed(t *tile.Tile) bool {
	if f.mask == nil {
		return true
	}
	b := t.Bounds()
	for y := b.Top; y <= b.Bottom; y++ {
		for x := b.Left; x <= b.Right; x++ {
			if !f.mask.Get(types.Position{X: x, Y: y}) {
				return false
			}
		}
	}
	return true
}

func (f *filler) matches(c types.RGBA) bool {
	return c.WithinTolerance(f.target, f.tol)
}

// absorbable reports whether a whole tile can be filled in one step.
func (f *filler) absorbable(t *tile.Tile) bool {
	if t == nil || f.filled[t] {
		return false
	}
	c, ok := f.grid.Uniform(t)
	return ok && f.matches(c) && f.tileAllowed(t)
}

func (f *filler) fillTile(t *tile.Tile) {
	if f.agent.FillTile(t, f.color) {
		f.filled[t] = true
		f.res.Tiles++
	}
}

func (f *filler) setPixel(p types.Position) {
	if _, ok := f.agent.SetPixel(p, f.color); ok {
		f.res.Pixels++
	}
}

func (f *filler) flood(seed types.Position) {
	if !f.allowed(seed) {
		return
	}
	f.target, _ = f.buf.GetPixel(seed)
	if f.tol == 0 && f.target == f.color {
		return
	}
	if f.tol == 255 {
		f.fillAllowed()
		return
	}

	var frontier []types.Position
	seedTile := f.grid.TileAt(seed)
	if f.absorbable(seedTile) {
		frontier = f.floodTiles(seedTile)
	} else {
		frontier = []types.Position{seed}
	}
	f.floodPixels(frontier)
}

// floodTiles fills the connected run of absorbable tiles starting at
// seed and returns the pixels bordering them for the pixel pass.
func (f *filler) floodTiles(seed *tile.Tile) []types.Position {
	queue := []*tile.Tile{seed}
	f.fillTile(seed)
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		for _, d := range neighbours {
			n := f.grid.Tile(t.Row+d.Y, t.Column+d.X)
			if f.absorbable(n) {
				f.fillTile(n)
				queue = append(queue, n)
			}
		}
	}

	var edge []types.Position
	for t := range f.filled {
		b := t.Bounds()
		for x := b.Left; x <= b.Right; x++ {
			edge = append(edge, types.Position{X: x, Y: b.Top - 1}, types.Position{X: x, Y: b.Bottom + 1})
		}
		for y := b.Top; y <= b.Bottom; y++ {
			edge = append(edge, types.Position{X: b.Left - 1, Y: y}, types.Position{X: b.Right + 1, Y: y})
		}
	}
	return edge
}

// floodPixels grows the region pixel by pixel. The gesture diff set is
// the visited set.
func (f *filler) floodPixels(stack []types.Position) {
	diffs := f.agent.Diffs()
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		c, ok := f.buf.GetPixel(p)
		if !ok || diffs.IsDiffExists(p) || !f.allowed(p) || !f.matches(c) {
			continue
		}
		if t := f.grid.TileAt(p); f.filled[t] {
			continue
		}
		f.setPixel(p)
		for _, d := range neighbours {
			stack = append(stack, p.Add(d))
		}
	}
}

// fillAllowed paints every allowed pixel, tile-wise where possible. Used
// for area fills and for tolerance 255, where every color matches.
func (f *filler) fillAllowed() {
	for _, t := range f.grid.Tiles() {
		if c, uniform := f.grid.Uniform(t); uniform && f.tileAllowed(t) {
			if c != f.color {
				f.fillTile(t)
			}
			continue
		}
		b := t.Bounds()
		for y := b.Top; y <= b.Bottom; y++ {
			for x := b.Left; x <= b.Right; x++ {
				if p := (types.Position{X: x, Y: y}); f.allowed(p) {
					f.setPixel(p)
				}
			}
		}
	}
}

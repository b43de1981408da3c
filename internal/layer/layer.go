// Package layer owns per-layer pixel state: the buffer, its tile grid, the
// gesture diff set and the per-layer critical section.
package layer

import (
	"context"
	"errors"
	"fmt"

	"github.com/bethropolis/pixl/internal/buffer"
	"github.com/bethropolis/pixl/internal/core/diff"
	"github.com/bethropolis/pixl/internal/logger"
	"github.com/bethropolis/pixl/internal/patch"
	"github.com/bethropolis/pixl/internal/tile"
	"github.com/bethropolis/pixl/internal/types"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

var (
	// ErrLayerNotFound is returned for unknown layer ids.
	ErrLayerNotFound = errors.New("layer not found")
	// ErrBusy is returned by TryAcquire when another operation owns the layer.
	ErrBusy = errors.New("layer is busy")
	// ErrPatchMismatch is returned when a patch does not fit the buffer.
	ErrPatchMismatch = errors.New("patch does not match layer buffer")
)

// BlendMode controls how a layer composes onto the layers below it.
type BlendMode string

const (
	BlendNormal   BlendMode = "normal"
	BlendMultiply BlendMode = "multiply"
	BlendScreen   BlendMode = "screen"
	BlendOverlay  BlendMode = "overlay"
)

// Props are the user-editable layer properties.
type Props struct {
	Name             string
	Visible          bool
	Opacity          float64 // 0..1
	BlendMode        BlendMode
	DotMagnification int
}

// DefaultProps returns a visible, opaque, normal-blend layer named name.
func DefaultProps(name string) Props {
	return Props{Name: name, Visible: true, Opacity: 1, BlendMode: BlendNormal, DotMagnification: 1}
}

// NewID returns a fresh layer identifier.
func NewID() string { return uuid.NewString() }

// Agent binds one layer's buffer, tile grid and gesture diffs.
type Agent struct {
	ID    string
	Props Props

	buf        *buffer.PixelBuffer
	grid       *tile.Grid
	diffs      *diff.Manager
	lock       *semaphore.Weighted
	wholeRatio float64
}

// NewAgent creates a transparent layer of the given size.
func NewAgent(id string, props Props, size types.Size, tileSize int, wholeRatio float64) *Agent {
	buf := buffer.New(size.Width, size.Height)
	return &Agent{
		ID:         id,
		Props:      props,
		buf:        buf,
		grid:       tile.NewGrid(buf, tileSize),
		diffs:      diff.NewManager(),
		lock:       semaphore.NewWeighted(1),
		wholeRatio: wholeRatio,
	}
}

func (a *Agent) Buffer() *buffer.PixelBuffer { return a.buf }
func (a *Agent) Grid() *tile.Grid            { return a.grid }
func (a *Agent) Diffs() *diff.Manager        { return a.diffs }
func (a *Agent) Size() types.Size            { return a.buf.Size() }

// Acquire blocks until the layer is free or ctx is done.
func (a *Agent) Acquire(ctx context.Context) error {
	if err := a.lock.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquiring layer %s: %w", a.ID, err)
	}
	return nil
}

// TryAcquire takes the layer without blocking.
func (a *Agent) TryAcquire() error {
	if !a.lock.TryAcquire(1) {
		return ErrBusy
	}
	return nil
}

// Release ends the current owner's critical section.
func (a *Agent) Release() { a.lock.Release(1) }

// GetPixel reads pos; false when out of bounds.
func (a *Agent) GetPixel(pos types.Position) (types.RGBA, bool) {
	return a.buf.GetPixel(pos)
}

// SetPixel writes c at pos, updates the owning tile and records the diff
// in the gesture working set. Out-of-bounds writes are ignored.
func (a *Agent) SetPixel(pos types.Position, c types.RGBA) (buffer.PixelDiff, bool) {
	d, ok := a.buf.SetPixel(pos, c)
	if !ok {
		return d, false
	}
	a.grid.PixelWritten(pos, c)
	a.diffs.Add(d)
	return d, true
}

// FillTile paints a uniform tile with c as a single tile-fill record.
// It returns false when the tile is not uniform.
func (a *Agent) FillTile(t *tile.Tile, c types.RGBA) bool {
	before, ok := a.grid.Uniform(t)
	if !ok {
		return false
	}
	a.diffs.AddTileFill(t, before, c)
	a.grid.FillWholeTile(t, c)
	return true
}

// FlushPatch turns the gesture working set into a patch and resets it.
// It returns nil when the gesture changed nothing.
func (a *Agent) FlushPatch() *patch.LayerBuffer {
	p := a.diffs.BuildPatch(a.ID, a.buf, a.grid, a.wholeRatio)
	a.diffs.Reset()
	if p != nil {
		logger.DebugTagf("layer", "layer %s: flushed %s patch (%d pixel records, %d fills)", a.ID, p.Shape(), p.PixelRecords(), len(p.Fills))
	}
	return p
}

// Discard restores every pixel touched in the current gesture and resets
// the working set without producing a patch.
func (a *Agent) Discard() {
	for pos, d := range a.diffs.Current() {
		a.buf.SetPixel(pos, d.Before)
		a.grid.PixelWritten(pos, d.Before)
	}
	for _, f := range a.diffs.Fills() {
		if f.Before == nil {
			continue
		}
		if t := a.grid.Tile(f.Tile.Row, f.Tile.Column); t != nil {
			a.grid.FillWholeTile(t, f.Before.Unpack())
		}
	}
	a.diffs.Reset()
}

// ApplyPatch replays p forwards (undo=false) or backwards (undo=true).
func (a *Agent) ApplyPatch(p *patch.LayerBuffer, undo bool) error {
	if p.Empty() {
		return nil
	}
	if p.Whole != nil {
		data := p.Whole.After
		if undo {
			data = p.Whole.Before
		}
		if !a.buf.Replace(data) {
			return fmt.Errorf("%w: whole patch of %d bytes for %s buffer", ErrPatchMismatch, len(data), a.buf.Size())
		}
		a.grid.ScanUniformity()
		a.grid.SetAllDirty()
		return nil
	}

	if undo {
		if err := a.applyPixels(p.Pixels, true); err != nil {
			return err
		}
		return a.applyFills(p.Fills, true)
	}
	if err := a.applyFills(p.Fills, false); err != nil {
		return err
	}
	return a.applyPixels(p.Pixels, false)
}

func (a *Agent) applyFills(fills []patch.TileFill, undo bool) error {
	for _, f := range fills {
		t := a.grid.Tile(f.Tile.Row, f.Tile.Column)
		if t == nil {
			return fmt.Errorf("%w: tile %s", ErrPatchMismatch, f.Tile)
		}
		if undo {
			if f.Before == nil {
				continue
			}
			a.grid.FillWholeTile(t, f.Before.Unpack())
			continue
		}
		a.grid.FillWholeTile(t, f.After.Unpack())
	}
	return nil
}

func (a *Agent) applyPixels(lists []patch.PixelList, undo bool) error {
	for _, pl := range lists {
		t := a.grid.Tile(pl.Tile.Row, pl.Tile.Column)
		if t == nil {
			return fmt.Errorf("%w: tile %s", ErrPatchMismatch, pl.Tile)
		}
		colors := pl.After
		if undo {
			colors = pl.Before
		}
		for i, idx := range pl.Indices {
			pos := t.PositionOf(int(idx))
			c := colors[i].Unpack()
			if _, ok := a.buf.SetPixel(pos, c); ok {
				a.grid.PixelWritten(pos, c)
			}
		}
	}
	return nil
}

// Snapshot copies the buffer bytes.
func (a *Agent) Snapshot() []byte { return a.buf.Snapshot() }

// ReplaceBuffer swaps in buf (any size) and rebuilds the tile grid.
func (a *Agent) ReplaceBuffer(buf *buffer.PixelBuffer) {
	a.buf = buf
	a.grid.Rebuild(buf)
	a.diffs.Reset()
}

// Resize changes the layer dimensions; see buffer.PixelBuffer.Resize.
func (a *Agent) Resize(size types.Size, destOrigin, srcOrigin types.Position) {
	a.buf.Resize(size, destOrigin, srcOrigin)
	a.grid.Rebuild(a.buf)
	a.diffs.Reset()
}

package core

import (
	"bytes"

	"github.com/bethropolis/pixl/internal/core/fill"
	"github.com/bethropolis/pixl/internal/core/history"
	"github.com/bethropolis/pixl/internal/core/selection"
	"github.com/bethropolis/pixl/internal/event"
	"github.com/bethropolis/pixl/internal/layer"
	"github.com/bethropolis/pixl/internal/logger"
	"github.com/bethropolis/pixl/internal/patch"
	"github.com/bethropolis/pixl/internal/types"
)

// BeginStroke takes the active layer for a pointer stroke. Pixels outside
// what limit allows are skipped by DrawPixel.
func (d *Document) BeginStroke(limit selection.LimitMode, label string) error {
	agent, err := d.acquire()
	if err != nil {
		return err
	}
	if label == "" {
		label = "pen"
	}
	d.stroke, d.strokeLimit, d.strokeLabel = agent, limit, label
	logger.DebugTagf("stroke", "Document: stroke %q started on layer %s", label, agent.ID)
	return nil
}

// DrawPixel paints one pixel of the active stroke. It reports whether the
// pixel was written; out-of-bounds and selection-limited positions are
// silently skipped.
func (d *Document) DrawPixel(pos types.Position, c types.RGBA) (bool, error) {
	if d.stroke == nil {
		return false, ErrNoStroke
	}
	if !d.sel.AllowsPaint(pos, d.strokeLimit) {
		return false, nil
	}
	if _, ok := d.stroke.SetPixel(pos, c); !ok {
		return false, nil
	}
	d.events.Dispatch(event.TypeBufferUpdate, event.BufferUpdateData{LayerID: d.stroke.ID, OnlyDirty: true, Context: d.strokeLabel})
	return true, nil
}

// DrawLine paints the pixels between from and to inclusive.
func (d *Document) DrawLine(from, to types.Position, c types.RGBA) (int, error) {
	if d.stroke == nil {
		return 0, ErrNoStroke
	}
	n := 0
	for _, p := range line(from, to) {
		ok, err := d.DrawPixel(p, c)
		if err != nil {
			return n, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// line rasterizes a segment with Bresenham's algorithm.
func line(from, to types.Position) []types.Position {
	dx, dy := abs(to.X-from.X), -abs(to.Y-from.Y)
	sx, sy := 1, 1
	if from.X > to.X {
		sx = -1
	}
	if from.Y > to.Y {
		sy = -1
	}
	errv := dx + dy
	p := from
	out := make([]types.Position, 0, max(dx, -dy)+1)
	for {
		out = append(out, p)
		if p == to {
			return out
		}
		e2 := 2 * errv
		if e2 >= dy {
			errv += dy
			p.X += sx
		}
		if e2 <= dx {
			errv += dx
			p.Y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// EndStroke releases the layer and records the stroke as one action. It
// returns nil when the stroke changed nothing.
func (d *Document) EndStroke() (*history.Action, error) {
	agent := d.stroke
	if agent == nil {
		return nil, ErrNoStroke
	}
	d.stroke = nil
	p := agent.FlushPatch()
	agent.Release()
	return d.record(d.strokeLabel, "stroke", agent, p), nil
}

// CancelStroke restores the pixels touched by the active stroke.
func (d *Document) CancelStroke() error {
	agent := d.stroke
	if agent == nil {
		return ErrNoStroke
	}
	d.stroke = nil
	agent.Discard()
	agent.Release()
	d.bufferUpdated(agent.ID, true, "cancel")
	return nil
}

// record pushes p (when non-nil) as a patch action and notifies observers.
func (d *Document) record(label, context string, agent *layer.Agent, p *patch.LayerBuffer) *history.Action {
	if p == nil {
		return nil
	}
	a := history.NewPatchAction(label, p)
	a.Context = context
	d.history.AddAction(a)
	d.bufferUpdated(agent.ID, p.Whole == nil, context)
	return a
}

// selectionMask returns the committed selection, or nil when nothing is
// selected.
func (d *Document) selectionMask() *selection.Mask {
	if !d.sel.IsSelected() {
		return nil
	}
	return d.sel.Mask()
}

// Fill flood-fills the active layer from seed and records one action.
func (d *Document) Fill(seed types.Position, c types.RGBA, tolerance uint8, mode fill.Mode) (*history.Action, error) {
	agent, err := d.acquire()
	if err != nil {
		return nil, err
	}
	fill.Fill(agent, fill.Options{
		Seed:      seed,
		Color:     c,
		Tolerance: tolerance,
		Mode:      mode,
		Mask:      d.selectionMask(),
	})
	p := agent.FlushPatch()
	agent.Release()
	return d.record("fill", "fill", agent, p), nil
}

// DeleteInSelection clears the selected pixels of the active layer to
// transparent as one whole-buffer action.
func (d *Document) DeleteInSelection() (*history.Action, error) {
	mask := d.selectionMask()
	if mask == nil {
		return nil, nil
	}
	agent, err := d.acquire()
	if err != nil {
		return nil, err
	}
	defer agent.Release()

	buf := agent.Buffer()
	before := buf.Snapshot()
	box, _ := mask.BoundBox()
	for y := box.Top; y <= box.Bottom; y++ {
		for x := box.Left; x <= box.Right; x++ {
			if pos := (types.Position{X: x, Y: y}); mask.Get(pos) {
				buf.SetPixel(pos, types.Transparent)
			}
		}
	}
	after := buf.Snapshot()
	if bytes.Equal(before, after) {
		return nil, nil
	}
	agent.Grid().ScanUniformity()
	agent.Grid().SetAllDirty()
	p := &patch.LayerBuffer{LayerID: agent.ID, Whole: &patch.Whole{Before: before, After: after}}
	return d.record("delete", "delete", agent, p), nil
}

// AutoSelect grows a region from seed on the active layer and merges it
// into the selection with mode.
func (d *Document) AutoSelect(seed types.Position, tolerance uint8, mode selection.EditMode) error {
	agent, err := d.layers.Active()
	if err != nil {
		return err
	}
	region := fill.SelectRegion(agent.Buffer(), seed, tolerance)
	d.sel.ApplyMask(region, mode)
	return nil
}

// SelectRect merges a rectangle into the selection with mode.
func (d *Document) SelectRect(r types.Rect, mode selection.EditMode) bool {
	if !d.sel.BeginDraw(mode) {
		return false
	}
	d.sel.AddRect(r)
	d.sel.CommitDraw()
	return true
}

// SelectAll selects the whole canvas.
func (d *Document) SelectAll() { d.sel.SelectAll() }

// ClearSelection deselects everything.
func (d *Document) ClearSelection() {
	if d.moves.IsMoving() {
		return
	}
	d.sel.Clear()
}

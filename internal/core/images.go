package core

import (
	"bytes"
	"math"

	"github.com/bethropolis/pixl/internal/buffer"
	"github.com/bethropolis/pixl/internal/core/history"
	"github.com/bethropolis/pixl/internal/event"
	"github.com/bethropolis/pixl/internal/imagepool"
	"github.com/bethropolis/pixl/internal/patch"
	"github.com/bethropolis/pixl/internal/types"
)

// AddImage appends e to the image pool and records the addition.
func (d *Document) AddImage(e *imagepool.Entry) error {
	index := d.pool.Len()
	if err := d.InsertImagePoolEntry(e, index); err != nil {
		return err
	}
	d.history.AddAction(history.NewImagePoolAddAction(e, index))
	return nil
}

// LoadImage decodes the image at path into a new pool entry fitted to the
// canvas.
func (d *Document) LoadImage(path string) (*imagepool.Entry, error) {
	e, err := imagepool.LoadEntry(path, d.size)
	if err != nil {
		return nil, err
	}
	return e, d.AddImage(e)
}

// RemoveImage drops a pool entry and records where it was.
func (d *Document) RemoveImage(id string) error {
	e, index, err := d.pool.Remove(id)
	if err != nil {
		return err
	}
	d.events.Dispatch(event.TypeImagePoolChanged, event.ImagePoolChangedData{EntryID: id, Removed: true})
	d.history.AddAction(history.NewImagePoolRemoveAction(e, index))
	return nil
}

// SetImageProps changes an entry's placement.
func (d *Document) SetImageProps(id string, props imagepool.Props) error {
	old, err := d.pool.SetProps(id, props)
	if err != nil {
		return err
	}
	if old == props {
		return nil
	}
	d.events.Dispatch(event.TypeImagePoolChanged, event.ImagePoolChangedData{EntryID: id})
	d.history.AddAction(history.NewImagePoolPropsAction(id, old, props))
	return nil
}

// TransferImage draws a pool entry onto the active layer at its placement,
// scaled with nearest-neighbour sampling and composited with its opacity,
// as one whole-buffer action.
func (d *Document) TransferImage(id string) (*history.Action, error) {
	e, err := d.pool.Get(id)
	if err != nil {
		return nil, err
	}
	agent, err := d.acquire()
	if err != nil {
		return nil, err
	}
	defer agent.Release()

	size := e.ScaledSize()
	scaled := buffer.Scaled(e.Image, size.Width, size.Height)
	opacity := math.Max(0, math.Min(1, e.Props.Opacity))

	buf := agent.Buffer()
	before := buf.Snapshot()
	for y := 0; y < size.Height; y++ {
		for x := 0; x < size.Width; x++ {
			dst := types.Position{X: e.Props.X + x, Y: e.Props.Y + y}
			under, ok := buf.GetPixel(dst)
			if !ok {
				continue
			}
			src, _ := scaled.GetPixel(types.Position{X: x, Y: y})
			src.A = uint8(math.Round(float64(src.A) * opacity))
			buf.SetPixel(dst, buffer.Over(under, src))
		}
	}
	after := buf.Snapshot()
	if bytes.Equal(before, after) {
		return nil, nil
	}
	agent.Grid().ScanUniformity()
	agent.Grid().SetAllDirty()
	p := &patch.LayerBuffer{LayerID: agent.ID, Whole: &patch.Whole{Before: before, After: after}}
	return d.record("transfer image", "image", agent, p), nil
}

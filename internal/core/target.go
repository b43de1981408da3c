package core

import (
	"fmt"

	"github.com/bethropolis/pixl/internal/buffer"
	"github.com/bethropolis/pixl/internal/core/history"
	"github.com/bethropolis/pixl/internal/event"
	"github.com/bethropolis/pixl/internal/imagepool"
	"github.com/bethropolis/pixl/internal/layer"
	"github.com/bethropolis/pixl/internal/patch"
	"github.com/bethropolis/pixl/internal/types"
)

// The methods in this file apply state without recording history. They are
// the history.Target the controller replays actions against, and the
// forward half of the recording operations.

var _ history.Target = (*Document)(nil)

// ApplyCanvasSize resizes every layer and the selection, anchored at the
// top-left corner.
func (d *Document) ApplyCanvasSize(size types.Size) error {
	if size.Width <= 0 || size.Height <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidSize, size)
	}
	old := d.size
	if old == size {
		return nil
	}
	for _, a := range d.layers.Layers() {
		a.Resize(size, types.Position{}, types.Position{})
	}
	d.size = size
	d.sel.Resize(size)
	d.events.Dispatch(event.TypeCanvasSizeChanged, event.CanvasSizeChangedData{Old: old, New: size})
	for _, a := range d.layers.Layers() {
		d.bufferUpdated(a.ID, false, "resize")
	}
	return nil
}

// ApplyPaletteColor sets one palette slot.
func (d *Document) ApplyPaletteColor(slot history.PaletteSlot, c types.RGBA) error {
	switch slot {
	case history.PalettePrimary:
		d.primary = c
	case history.PaletteSecondary:
		d.secondary = c
	default:
		return fmt.Errorf("unknown palette slot %d", int(slot))
	}
	d.events.Dispatch(event.TypePaletteChanged, event.PaletteChangedData{Primary: d.primary, Secondary: d.secondary})
	return nil
}

// InsertImagePoolEntry places e at index in the pool.
func (d *Document) InsertImagePoolEntry(e *imagepool.Entry, index int) error {
	d.pool.Insert(e, index)
	d.events.Dispatch(event.TypeImagePoolChanged, event.ImagePoolChangedData{EntryID: e.ID})
	return nil
}

// RemoveImagePoolEntry drops an entry from the pool.
func (d *Document) RemoveImagePoolEntry(id string) error {
	if _, _, err := d.pool.Remove(id); err != nil {
		return err
	}
	d.events.Dispatch(event.TypeImagePoolChanged, event.ImagePoolChangedData{EntryID: id, Removed: true})
	return nil
}

// ApplyImagePoolProps replaces an entry's placement.
func (d *Document) ApplyImagePoolProps(id string, props imagepool.Props) error {
	if _, err := d.pool.SetProps(id, props); err != nil {
		return err
	}
	d.events.Dispatch(event.TypeImagePoolChanged, event.ImagePoolChangedData{EntryID: id})
	return nil
}

// ApplyLayerPatch replays p on its layer. It fails with layer.ErrBusy when
// another operation holds the layer.
func (d *Document) ApplyLayerPatch(p *patch.LayerBuffer, undo bool) error {
	agent, err := d.layers.Get(p.LayerID)
	if err != nil {
		return err
	}
	if err := agent.TryAcquire(); err != nil {
		return fmt.Errorf("layer %s: %w", agent.ID, err)
	}
	err = agent.ApplyPatch(p, undo)
	agent.Release()
	if err != nil {
		return err
	}

	context := "redo"
	if undo {
		context = "undo"
	}
	d.bufferUpdated(agent.ID, p.Whole == nil, context)
	return nil
}

// RestoreLayer recreates a layer from s at index and makes it active.
func (d *Document) RestoreLayer(s *history.LayerSnapshot, index int) error {
	if _, err := d.layers.Get(s.ID); err == nil {
		return fmt.Errorf("layer %s already exists", s.ID)
	}
	agent := d.newAgent(s.ID, s.Props)
	if s.Data != nil {
		buf, ok := buffer.FromBytes(s.Size.Width, s.Size.Height, s.Data)
		if !ok {
			return fmt.Errorf("%w: snapshot of %d bytes for %v", layer.ErrPatchMismatch, len(s.Data), s.Size)
		}
		agent.ReplaceBuffer(buf.Clone())
		if s.Size != d.size {
			agent.Resize(d.size, types.Position{}, types.Position{})
		}
	}
	d.layers.Insert(agent, index)
	if err := d.layers.SetActive(agent.ID); err != nil {
		return err
	}
	d.layerListChanged()
	d.bufferUpdated(agent.ID, false, "layer")
	return nil
}

// DeleteLayer removes a layer. The last layer cannot be removed.
func (d *Document) DeleteLayer(id string) error {
	if d.layers.Len() <= 1 {
		return ErrLastLayer
	}
	if _, _, err := d.layers.Remove(id); err != nil {
		return err
	}
	d.layerListChanged()
	return nil
}

// ApplyLayerOrder reorders the layers.
func (d *Document) ApplyLayerOrder(ids []string) error {
	if err := d.layers.SetOrder(ids); err != nil {
		return err
	}
	d.layerListChanged()
	return nil
}

// ApplyLayerProps replaces a layer's properties.
func (d *Document) ApplyLayerProps(id string, props layer.Props) error {
	agent, err := d.layers.Get(id)
	if err != nil {
		return err
	}
	agent.Props = props
	d.events.Dispatch(event.TypeLayerPropsChanged, event.LayerPropsChangedData{LayerID: id})
	return nil
}

func (d *Document) layerListChanged() {
	d.events.Dispatch(event.TypeLayerListChanged, event.LayerListChangedData{Order: d.layers.Order()})
}

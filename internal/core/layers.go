package core

import (
	"context"
	"fmt"
	"slices"

	"github.com/bethropolis/pixl/internal/core/history"
	"github.com/bethropolis/pixl/internal/imgproc"
	"github.com/bethropolis/pixl/internal/layer"
	"github.com/bethropolis/pixl/internal/types"
)

// Layers are stored bottom first: index 0 is drawn first when flattening.

// AddLayer creates a transparent layer above the active one, makes it
// active and records the addition.
func (d *Document) AddLayer(name string) (string, error) {
	if d.busy() {
		return "", ErrGestureActive
	}
	if name == "" {
		name = fmt.Sprintf("Layer %d", d.layers.Len()+1)
	}
	snap := &history.LayerSnapshot{ID: layer.NewID(), Props: layer.DefaultProps(name), Size: d.size}
	index := d.layers.IndexOf(d.layers.ActiveID()) + 1
	if err := d.RestoreLayer(snap, index); err != nil {
		return "", err
	}
	d.history.AddAction(history.NewLayerListAction(&history.LayerListChange{Op: history.LayerAdd, Layer: snap, Index: index}))
	return snap.ID, nil
}

// RemoveLayer deletes a layer, keeping a snapshot of its pixels in the
// history so undo restores it in place.
func (d *Document) RemoveLayer(id string) error {
	if d.busy() {
		return ErrGestureActive
	}
	agent, err := d.layers.Get(id)
	if err != nil {
		return err
	}
	snap := &history.LayerSnapshot{ID: agent.ID, Props: agent.Props, Size: agent.Size(), Data: agent.Snapshot()}
	index := d.layers.IndexOf(id)
	if err := d.DeleteLayer(id); err != nil {
		return err
	}
	d.history.AddAction(history.NewLayerListAction(&history.LayerListChange{Op: history.LayerDelete, Layer: snap, Index: index}))
	return nil
}

// ReorderLayers sets the bottom-to-top layer order.
func (d *Document) ReorderLayers(ids []string) error {
	if d.busy() {
		return ErrGestureActive
	}
	old := d.layers.Order()
	if slices.Equal(old, ids) {
		return nil
	}
	if err := d.ApplyLayerOrder(ids); err != nil {
		return err
	}
	d.history.AddAction(history.NewLayerListAction(&history.LayerListChange{
		Op:       history.LayerReorder,
		OldOrder: old,
		NewOrder: slices.Clone(ids),
	}))
	return nil
}

// SetLayerProps changes a layer's properties.
func (d *Document) SetLayerProps(id string, props layer.Props) error {
	agent, err := d.layers.Get(id)
	if err != nil {
		return err
	}
	old := agent.Props
	if old == props {
		return nil
	}
	if err := d.ApplyLayerProps(id, props); err != nil {
		return err
	}
	d.history.AddAction(history.NewLayerPropsAction(id, old, props))
	return nil
}

// SetCanvasSize resizes the canvas. Pixels cropped away are not restored
// by undo.
func (d *Document) SetCanvasSize(size types.Size) error {
	if d.busy() {
		return ErrGestureActive
	}
	old := d.size
	if old == size {
		return nil
	}
	if err := d.ApplyCanvasSize(size); err != nil {
		return err
	}
	d.history.AddAction(history.NewCanvasSizeAction(old, size))
	return nil
}

// SetPaletteColor changes the primary or secondary color.
func (d *Document) SetPaletteColor(slot history.PaletteSlot, c types.RGBA) error {
	old := d.primary
	if slot == history.PaletteSecondary {
		old = d.secondary
	}
	if old == c {
		return nil
	}
	if err := d.ApplyPaletteColor(slot, c); err != nil {
		return err
	}
	d.history.AddAction(history.NewColorAction(slot, old, c))
	return nil
}

// ApplyEffect runs an effect over the active layer as one undoable step.
// It waits for the layer while another goroutine holds it, and for the
// effect itself; the action is recorded on the calling goroutine.
func (d *Document) ApplyEffect(ctx context.Context, kind imgproc.Kind, p imgproc.Params) (*history.Action, error) {
	if d.busy() {
		return nil, ErrGestureActive
	}
	agent, err := d.layers.Active()
	if err != nil {
		return nil, err
	}
	return d.effects.Apply(ctx, agent, kind, p)
}

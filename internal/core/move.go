package core

import (
	"errors"

	"github.com/bethropolis/pixl/internal/buffer"
	"github.com/bethropolis/pixl/internal/core/floating"
	"github.com/bethropolis/pixl/internal/core/history"
	"github.com/bethropolis/pixl/internal/event"
	"github.com/bethropolis/pixl/internal/layer"
	"github.com/bethropolis/pixl/internal/types"
)

// ErrClipboardEmpty is returned by Paste when nothing was copied.
var ErrClipboardEmpty = errors.New("clipboard is empty")

// StartMove lifts the selected pixels of the active layer, or the whole
// layer when nothing is selected, into a floating buffer.
func (d *Document) StartMove() error {
	agent, err := d.acquire()
	if err != nil {
		return err
	}
	mode := floating.MoveLayer
	if d.sel.IsSelected() {
		mode = floating.MoveSelection
	}
	if err := d.moves.Start(agent, mode, d.selectionMask(), nil, types.Position{}); err != nil {
		agent.Release()
		return err
	}
	if mode == floating.MoveSelection {
		d.sel.BeginMove()
	}
	d.moveChanged(agent, event.MoveStarted)
	d.bufferUpdated(agent.ID, true, "move")
	return nil
}

// Paste floats the clipboard content over the active layer at the place
// it was copied from.
func (d *Document) Paste() error {
	img, origin, ok := d.clip.Content()
	if !ok {
		return ErrClipboardEmpty
	}
	return d.PasteImage(img, origin)
}

// PasteImage floats an external image over the active layer at origin.
func (d *Document) PasteImage(img *buffer.PixelBuffer, origin types.Position) error {
	agent, err := d.acquire()
	if err != nil {
		return err
	}
	if err := d.moves.Start(agent, floating.MovePasted, nil, img, origin); err != nil {
		agent.Release()
		return err
	}
	d.moveChanged(agent, event.MoveStarted)
	return nil
}

// MoveTo sets the offset of the floating pixels from where they started.
func (d *Document) MoveTo(offset types.Position) error {
	if err := d.moves.MoveTo(offset); err != nil {
		return err
	}
	if d.moves.Mode() == floating.MoveSelection {
		d.sel.MoveTo(offset)
	}
	d.events.Dispatch(event.TypePreviewUpdate, event.PreviewUpdateData{LayerID: d.moves.Target().ID})
	return nil
}

// CommitMove composites the floating pixels at their destination and
// records the whole move as one action. When compositing fails the layer
// is restored and nothing is recorded.
func (d *Document) CommitMove() (*history.Action, error) {
	agent := d.moves.Target()
	if agent == nil {
		return nil, floating.ErrNotMoving
	}
	mode := d.moves.Mode()
	offset := d.moves.Floating().Offset

	p, err := d.moves.Commit()
	agent.Release()
	if err != nil {
		d.sel.CancelMove()
		d.moveChanged(agent, event.MoveCancelled)
		d.bufferUpdated(agent.ID, true, "move")
		return nil, err
	}
	if mode == floating.MoveSelection {
		d.sel.CommitMove()
	}
	d.events.Dispatch(event.TypeMoveStateChanged, event.MoveStateChangedData{LayerID: agent.ID, State: event.MoveCommitted, Offset: offset})
	if p == nil {
		d.bufferUpdated(agent.ID, true, "move")
		return nil, nil
	}
	label := "move"
	if mode == floating.MovePasted {
		label = "paste"
	}
	return d.record(label, "move", agent, p), nil
}

// CancelMove drops the floating pixels and restores the layer.
func (d *Document) CancelMove() error {
	agent := d.moves.Target()
	if err := d.moves.Cancel(); err != nil {
		return err
	}
	agent.Release()
	d.sel.CancelMove()
	d.moveChanged(agent, event.MoveCancelled)
	d.bufferUpdated(agent.ID, true, "move")
	return nil
}

// IsMoving reports whether a floating move is active.
func (d *Document) IsMoving() bool { return d.moves.IsMoving() }

// MovePreview composes the active move over its layer without touching it.
func (d *Document) MovePreview() (*buffer.PixelBuffer, error) { return d.moves.Preview() }

func (d *Document) moveChanged(agent *layer.Agent, state event.MoveState) {
	var offset types.Position
	if fb := d.moves.Floating(); fb != nil {
		offset = fb.Offset
	}
	d.events.Dispatch(event.TypeMoveStateChanged, event.MoveStateChangedData{LayerID: agent.ID, State: state, Offset: offset})
}

// Copy stores the selected pixels of the active layer, or the whole layer
// when nothing is selected, in the clipboard.
func (d *Document) Copy() (bool, error) {
	agent, err := d.layers.Active()
	if err != nil {
		return false, err
	}
	return d.clip.Copy(agent.Buffer(), d.selectionMask()), nil
}

// Cut copies the selection and clears it on the active layer.
func (d *Document) Cut() (*history.Action, error) {
	if !d.sel.IsSelected() {
		return nil, nil
	}
	if _, err := d.Copy(); err != nil {
		return nil, err
	}
	return d.DeleteInSelection()
}

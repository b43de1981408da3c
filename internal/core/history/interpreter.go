package history

import (
	"errors"
	"fmt"

	"github.com/bethropolis/pixl/internal/imagepool"
	"github.com/bethropolis/pixl/internal/layer"
	"github.com/bethropolis/pixl/internal/patch"
	"github.com/bethropolis/pixl/internal/types"
)

// ErrMalformedAction is returned when an action's payload does not match
// its Kind.
var ErrMalformedAction = errors.New("malformed history action")

// Target is the document state history actions are replayed against.
type Target interface {
	ApplyCanvasSize(size types.Size) error
	ApplyPaletteColor(slot PaletteSlot, c types.RGBA) error
	InsertImagePoolEntry(e *imagepool.Entry, index int) error
	RemoveImagePoolEntry(id string) error
	ApplyImagePoolProps(id string, props imagepool.Props) error
	ApplyLayerPatch(p *patch.LayerBuffer, undo bool) error
	RestoreLayer(s *LayerSnapshot, index int) error
	DeleteLayer(id string) error
	ApplyLayerOrder(ids []string) error
	ApplyLayerProps(id string, props layer.Props) error
}

// apply replays a against t, backwards when undo is set.
func apply(t Target, a *Action, undo bool) error {
	switch a.Kind {
	case KindCanvasSize:
		c := a.CanvasSize
		if c == nil {
			return malformed(a)
		}
		return t.ApplyCanvasSize(pick(undo, c.Old, c.New))

	case KindColor:
		c := a.Color
		if c == nil {
			return malformed(a)
		}
		return t.ApplyPaletteColor(c.Slot, pick(undo, c.Old, c.New))

	case KindImagePoolEntryAdd, KindImagePoolEntryRemove:
		c := a.ImagePoolEntry
		if c == nil || c.Entry == nil {
			return malformed(a)
		}
		// Undoing an add and redoing a remove both take the entry out.
		if undo == (a.Kind == KindImagePoolEntryAdd) {
			return t.RemoveImagePoolEntry(c.Entry.ID)
		}
		return t.InsertImagePoolEntry(c.Entry, c.Index)

	case KindImagePoolEntryProps:
		c := a.ImagePoolProps
		if c == nil {
			return malformed(a)
		}
		return t.ApplyImagePoolProps(c.EntryID, pick(undo, c.Old, c.New))

	case KindLayerBufferPatch:
		if a.Patch == nil {
			return malformed(a)
		}
		return t.ApplyLayerPatch(a.Patch, undo)

	case KindLayerList:
		return applyLayerList(t, a, undo)

	case KindLayerProps:
		c := a.LayerProps
		if c == nil {
			return malformed(a)
		}
		return t.ApplyLayerProps(c.LayerID, pick(undo, c.Old, c.New))
	}
	return fmt.Errorf("%w: unknown kind %v", ErrMalformedAction, a.Kind)
}

func applyLayerList(t Target, a *Action, undo bool) error {
	c := a.LayerList
	if c == nil {
		return malformed(a)
	}
	switch c.Op {
	case LayerAdd, LayerDelete:
		if c.Layer == nil {
			return malformed(a)
		}
		if undo == (c.Op == LayerAdd) {
			return t.DeleteLayer(c.Layer.ID)
		}
		return t.RestoreLayer(c.Layer, c.Index)
	case LayerReorder:
		return t.ApplyLayerOrder(pick(undo, c.OldOrder, c.NewOrder))
	}
	return malformed(a)
}

func pick[T any](undo bool, old, next T) T {
	if undo {
		return old
	}
	return next
}

func malformed(a *Action) error {
	return fmt.Errorf("%w: %v", ErrMalformedAction, a)
}

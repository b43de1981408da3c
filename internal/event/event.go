// internal/event/event.go
package event

import (
	"fmt"

	"github.com/bethropolis/pixl/internal/types"
)

// Type identifies the kind of event.
type Type int

const (
	TypeUnknown Type = iota

	// Raster events
	TypeBufferUpdate  // A layer buffer changed and needs re-upload
	TypePreviewUpdate // A layer thumbnail should be regenerated

	// Document state events
	TypeHistoryChanged    // Undo/redo stacks changed
	TypeSelectionChanged  // Selection mask or its offset changed
	TypeMoveStateChanged  // A floating move started, committed or was cancelled
	TypeCanvasSizeChanged // Canvas dimensions changed
	TypeLayerListChanged  // Layers were added, removed or reordered
	TypeLayerPropsChanged // Layer properties changed
	TypeImagePoolChanged  // Image pool entries changed
	TypePaletteChanged    // Primary/secondary colors changed

	// Application lifecycle
	TypeConfigReloaded // Config file was reloaded from disk
)

var typeNames = [...]string{
	TypeUnknown:           "unknown",
	TypeBufferUpdate:      "buffer-update",
	TypePreviewUpdate:     "preview-update",
	TypeHistoryChanged:    "history-changed",
	TypeSelectionChanged:  "selection-changed",
	TypeMoveStateChanged:  "move-state-changed",
	TypeCanvasSizeChanged: "canvas-size-changed",
	TypeLayerListChanged:  "layer-list-changed",
	TypeLayerPropsChanged: "layer-props-changed",
	TypeImagePoolChanged:  "image-pool-changed",
	TypePaletteChanged:    "palette-changed",
	TypeConfigReloaded:    "config-reloaded",
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Event is the structure passed through the event bus.
type Event struct {
	Type Type
	Data interface{}
}

// BufferUpdateData asks the renderer to refresh a layer. OnlyDirty is false
// when the whole buffer must be re-uploaded (effects, whole patches, resize).
type BufferUpdateData struct {
	LayerID   string
	OnlyDirty bool
	Context   string // human-readable origin, e.g. "undo", "fill"
}

// PreviewUpdateData asks for a layer thumbnail refresh.
type PreviewUpdateData struct {
	LayerID string
}

// HistoryChangedData reports the undo/redo state after a history mutation.
type HistoryChangedData struct {
	CanUndo   bool
	CanRedo   bool
	LastLabel string
}

// SelectionChangedData reports the selection's bounding box after a change.
type SelectionChangedData struct {
	Selected bool
	Box      types.Rect
	Offset   types.Position
}

// MoveState enumerates floating-move transitions.
type MoveState int

const (
	MoveStarted MoveState = iota
	MoveCommitted
	MoveCancelled
)

// MoveStateChangedData reports floating-move transitions.
type MoveStateChangedData struct {
	LayerID string
	State   MoveState
	Offset  types.Position
}

// CanvasSizeChangedData carries the new canvas size.
type CanvasSizeChangedData struct {
	Old types.Size
	New types.Size
}

// LayerListChangedData carries the layer order after a change.
type LayerListChangedData struct {
	Order []string
}

// LayerPropsChangedData names the layer whose props changed.
type LayerPropsChangedData struct {
	LayerID string
}

// ImagePoolChangedData names the entry that changed.
type ImagePoolChangedData struct {
	EntryID string
	Removed bool
}

// PaletteChangedData carries the current palette.
type PaletteChangedData struct {
	Primary   types.RGBA
	Secondary types.RGBA
}

// ConfigReloadedData carries the path of the reloaded file.
type ConfigReloadedData struct {
	Path string
}

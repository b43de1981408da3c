// Package history provides undo/redo via a stack of tagged actions.
package history

import (
	"fmt"

	"github.com/bethropolis/pixl/internal/imagepool"
	"github.com/bethropolis/pixl/internal/layer"
	"github.com/bethropolis/pixl/internal/patch"
	"github.com/bethropolis/pixl/internal/types"
)

// Kind tags the payload an Action carries.
type Kind int

const (
	KindCanvasSize Kind = iota
	KindColor
	KindImagePoolEntryAdd
	KindImagePoolEntryRemove
	KindImagePoolEntryProps
	KindLayerBufferPatch
	KindLayerList
	KindLayerProps

	kindCount
)

var kindNames = [kindCount]string{
	KindCanvasSize:           "canvas-size",
	KindColor:                "color",
	KindImagePoolEntryAdd:    "image-pool-entry-add",
	KindImagePoolEntryRemove: "image-pool-entry-remove",
	KindImagePoolEntryProps:  "image-pool-entry-props",
	KindLayerBufferPatch:     "layer-buffer-patch",
	KindLayerList:            "layer-list",
	KindLayerProps:           "layer-props",
}

func (k Kind) String() string {
	if k >= 0 && k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Action is one undoable step. Exactly one payload field, matching Kind,
// is set.
type Action struct {
	Kind    Kind
	Label   string // shown in undo/redo menus
	Context string // free-form origin for diagnostics

	CanvasSize     *CanvasSizeChange
	Color          *ColorChange
	ImagePoolEntry *ImagePoolEntryChange
	ImagePoolProps *ImagePoolPropsChange
	Patch          *patch.LayerBuffer
	LayerList      *LayerListChange
	LayerProps     *LayerPropsChange
}

func (a *Action) String() string {
	if a.Label != "" {
		return fmt.Sprintf("%s(%s)", a.Kind, a.Label)
	}
	return a.Kind.String()
}

// CanvasSizeChange records a canvas resize. Cropped pixels are not kept.
type CanvasSizeChange struct {
	Old types.Size
	New types.Size
}

// PaletteSlot selects the primary or secondary color.
type PaletteSlot int

const (
	PalettePrimary PaletteSlot = iota
	PaletteSecondary
)

func (s PaletteSlot) String() string {
	if s == PaletteSecondary {
		return "secondary"
	}
	return "primary"
}

// ColorChange records a palette color change.
type ColorChange struct {
	Slot PaletteSlot
	Old  types.RGBA
	New  types.RGBA
}

// ImagePoolEntryChange snapshots an entry for add/remove. The entry keeps
// its id so redo of an add, or undo of a remove, restores the same identity.
type ImagePoolEntryChange struct {
	Entry *imagepool.Entry
	Index int
}

// ImagePoolPropsChange records an entry placement change.
type ImagePoolPropsChange struct {
	EntryID string
	Old     imagepool.Props
	New     imagepool.Props
}

// LayerListOp enumerates layer list mutations.
type LayerListOp int

const (
	LayerAdd LayerListOp = iota
	LayerDelete
	LayerReorder
)

func (o LayerListOp) String() string {
	switch o {
	case LayerAdd:
		return "add"
	case LayerDelete:
		return "delete"
	case LayerReorder:
		return "reorder"
	}
	return fmt.Sprintf("LayerListOp(%d)", int(o))
}

// LayerSnapshot is everything needed to recreate a layer.
type LayerSnapshot struct {
	ID    string
	Props layer.Props
	Size  types.Size
	Data  []byte
}

// LayerListChange records a layer add, delete or reorder. Layer and Index
// are set for add/delete; OldOrder/NewOrder for reorder.
type LayerListChange struct {
	Op       LayerListOp
	Layer    *LayerSnapshot
	Index    int
	OldOrder []string
	NewOrder []string
}

// LayerPropsChange records a layer property change.
type LayerPropsChange struct {
	LayerID string
	Old     layer.Props
	New     layer.Props
}

// NewPatchAction wraps a layer-buffer patch.
func NewPatchAction(label string, p *patch.LayerBuffer) *Action {
	return &Action{Kind: KindLayerBufferPatch, Label: label, Patch: p}
}

// NewCanvasSizeAction records a resize.
func NewCanvasSizeAction(old, next types.Size) *Action {
	return &Action{Kind: KindCanvasSize, Label: "canvas size", CanvasSize: &CanvasSizeChange{Old: old, New: next}}
}

// NewColorAction records a palette change.
func NewColorAction(slot PaletteSlot, old, next types.RGBA) *Action {
	return &Action{Kind: KindColor, Label: slot.String() + " color", Color: &ColorChange{Slot: slot, Old: old, New: next}}
}

// NewImagePoolAddAction records an entry added at index.
func NewImagePoolAddAction(e *imagepool.Entry, index int) *Action {
	return &Action{Kind: KindImagePoolEntryAdd, Label: "add image", ImagePoolEntry: &ImagePoolEntryChange{Entry: e, Index: index}}
}

// NewImagePoolRemoveAction records an entry removed from index.
func NewImagePoolRemoveAction(e *imagepool.Entry, index int) *Action {
	return &Action{Kind: KindImagePoolEntryRemove, Label: "remove image", ImagePoolEntry: &ImagePoolEntryChange{Entry: e, Index: index}}
}

// NewImagePoolPropsAction records an entry placement change.
func NewImagePoolPropsAction(id string, old, next imagepool.Props) *Action {
	return &Action{Kind: KindImagePoolEntryProps, Label: "image props", ImagePoolProps: &ImagePoolPropsChange{EntryID: id, Old: old, New: next}}
}

// NewLayerListAction records a layer list mutation.
func NewLayerListAction(change *LayerListChange) *Action {
	return &Action{Kind: KindLayerList, Label: "layer " + change.Op.String(), LayerList: change}
}

// NewLayerPropsAction records a layer property change.
func NewLayerPropsAction(id string, old, next layer.Props) *Action {
	return &Action{Kind: KindLayerProps, Label: "layer props", LayerProps: &LayerPropsChange{LayerID: id, Old: old, New: next}}
}

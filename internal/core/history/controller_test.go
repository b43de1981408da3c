package history

import (
	"errors"
	"fmt"
	"testing"

	"github.com/bethropolis/pixl/internal/event"
	"github.com/bethropolis/pixl/internal/imagepool"
	"github.com/bethropolis/pixl/internal/layer"
	"github.com/bethropolis/pixl/internal/patch"
	"github.com/bethropolis/pixl/internal/types"
)

// fakeTarget records the calls the interpreter makes.
type fakeTarget struct {
	calls []string
	fail  error
}

func (f *fakeTarget) record(format string, args ...interface{}) error {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return f.fail
}

func (f *fakeTarget) ApplyCanvasSize(s types.Size) error { return f.record("size %v", s) }
func (f *fakeTarget) ApplyPaletteColor(slot PaletteSlot, c types.RGBA) error {
	return f.record("color %v %v", slot, c)
}
func (f *fakeTarget) InsertImagePoolEntry(e *imagepool.Entry, i int) error {
	return f.record("pool insert %s@%d", e.ID, i)
}
func (f *fakeTarget) RemoveImagePoolEntry(id string) error { return f.record("pool remove %s", id) }
func (f *fakeTarget) ApplyImagePoolProps(id string, p imagepool.Props) error {
	return f.record("pool props %s x=%d", id, p.X)
}
func (f *fakeTarget) ApplyLayerPatch(p *patch.LayerBuffer, undo bool) error {
	return f.record("patch %s undo=%v", p.LayerID, undo)
}
func (f *fakeTarget) RestoreLayer(s *LayerSnapshot, i int) error {
	return f.record("layer restore %s@%d", s.ID, i)
}
func (f *fakeTarget) DeleteLayer(id string) error        { return f.record("layer delete %s", id) }
func (f *fakeTarget) ApplyLayerOrder(ids []string) error { return f.record("layer order %v", ids) }
func (f *fakeTarget) ApplyLayerProps(id string, p layer.Props) error {
	return f.record("layer props %s %s", id, p.Name)
}

func TestUndoRedoMovesBetweenStacks(t *testing.T) {
	ft := &fakeTarget{}
	c := NewController(ft, nil, 10)

	if ok, err := c.Undo(); ok || err != nil {
		t.Fatalf("Undo on empty = %v, %v", ok, err)
	}
	if ok, err := c.Redo(); ok || err != nil {
		t.Fatalf("Redo on empty = %v, %v", ok, err)
	}

	c.AddAction(NewCanvasSizeAction(types.Size{Width: 1, Height: 1}, types.Size{Width: 2, Height: 2}))
	c.AddAction(NewPatchAction("stroke", &patch.LayerBuffer{LayerID: "L"}))

	if ok, _ := c.Undo(); !ok {
		t.Fatal("Undo returned false")
	}
	if !c.CanUndo() || !c.CanRedo() {
		t.Fatal("expected both stacks non-empty")
	}
	if ok, _ := c.Redo(); !ok {
		t.Fatal("Redo returned false")
	}
	want := []string{"patch L undo=true", "patch L undo=false"}
	if fmt.Sprint(ft.calls) != fmt.Sprint(want) {
		t.Fatalf("calls = %v, want %v", ft.calls, want)
	}
}

func TestAddActionClearsRedo(t *testing.T) {
	c := NewController(&fakeTarget{}, nil, 10)
	c.AddAction(NewColorAction(PalettePrimary, types.RGBA{}, types.RGBA{R: 1}))
	c.Undo()
	c.AddAction(NewColorAction(PalettePrimary, types.RGBA{}, types.RGBA{R: 2}))
	if c.CanRedo() {
		t.Fatal("redo stack survived a new action")
	}
}

func TestMaxItemsEvictsOldest(t *testing.T) {
	c := NewController(&fakeTarget{}, nil, 3)
	for i := 0; i < 5; i++ {
		c.AddAction(&Action{Kind: KindColor, Label: fmt.Sprint(i), Color: &ColorChange{}})
	}
	stack := c.UndoStack()
	if len(stack) != 3 || stack[0].Label != "2" || stack[2].Label != "4" {
		t.Fatalf("stack = %v", stack)
	}
}

func TestFailedUndoKeepsAction(t *testing.T) {
	ft := &fakeTarget{fail: errors.New("boom")}
	c := NewController(ft, nil, 10)
	c.AddAction(NewLayerPropsAction("L", layer.Props{Name: "a"}, layer.Props{Name: "b"}))

	ok, err := c.Undo()
	if ok || err == nil {
		t.Fatalf("Undo = %v, %v", ok, err)
	}
	if !c.CanUndo() || c.CanRedo() {
		t.Fatal("failed undo moved the action")
	}
}

func TestHistoryChangedNotifications(t *testing.T) {
	events := event.NewManager()
	var got []event.HistoryChangedData
	events.Subscribe(event.TypeHistoryChanged, func(e event.Event) bool {
		got = append(got, e.Data.(event.HistoryChangedData))
		return false
	})
	c := NewController(&fakeTarget{}, events, 10)
	c.AddAction(NewPatchAction("fill", &patch.LayerBuffer{}))
	c.Undo()

	if len(got) != 2 {
		t.Fatalf("notifications = %d", len(got))
	}
	if !got[0].CanUndo || got[0].CanRedo || got[0].LastLabel != "fill" {
		t.Errorf("after add = %+v", got[0])
	}
	if got[1].CanUndo || !got[1].CanRedo {
		t.Errorf("after undo = %+v", got[1])
	}
}

func TestInterpreterCoversEveryKind(t *testing.T) {
	entry := &imagepool.Entry{ID: "img"}
	snap := &LayerSnapshot{ID: "L2"}
	actions := map[Kind]*Action{
		KindCanvasSize:           NewCanvasSizeAction(types.Size{Width: 1}, types.Size{Width: 2}),
		KindColor:                NewColorAction(PaletteSecondary, types.RGBA{}, types.RGBA{G: 1}),
		KindImagePoolEntryAdd:    NewImagePoolAddAction(entry, 0),
		KindImagePoolEntryRemove: NewImagePoolRemoveAction(entry, 1),
		KindImagePoolEntryProps:  NewImagePoolPropsAction("img", imagepool.Props{X: 1}, imagepool.Props{X: 2}),
		KindLayerBufferPatch:     NewPatchAction("p", &patch.LayerBuffer{LayerID: "L"}),
		KindLayerList:            NewLayerListAction(&LayerListChange{Op: LayerAdd, Layer: snap, Index: 1}),
		KindLayerProps:           NewLayerPropsAction("L", layer.Props{Name: "old"}, layer.Props{Name: "new"}),
	}
	if len(actions) != int(kindCount) {
		t.Fatalf("test covers %d kinds, have %d", len(actions), kindCount)
	}

	tests := map[Kind][2]string{
		KindCanvasSize:           {"size 1x0", "size 2x0"},
		KindColor:                {"color secondary #00000000", "color secondary #00010000"},
		KindImagePoolEntryAdd:    {"pool remove img", "pool insert img@0"},
		KindImagePoolEntryRemove: {"pool insert img@1", "pool remove img"},
		KindImagePoolEntryProps:  {"pool props img x=1", "pool props img x=2"},
		KindLayerBufferPatch:     {"patch L undo=true", "patch L undo=false"},
		KindLayerList:            {"layer delete L2", "layer restore L2@1"},
		KindLayerProps:           {"layer props L old", "layer props L new"},
	}
	for k := Kind(0); k < kindCount; k++ {
		ft := &fakeTarget{}
		if err := apply(ft, actions[k], true); err != nil {
			t.Fatalf("%v undo: %v", k, err)
		}
		if err := apply(ft, actions[k], false); err != nil {
			t.Fatalf("%v redo: %v", k, err)
		}
		want := tests[k]
		if len(ft.calls) != 2 || ft.calls[0] != want[0] || ft.calls[1] != want[1] {
			t.Errorf("%v calls = %v, want %v", k, ft.calls, want)
		}
		if k.String() == "" {
			t.Errorf("kind %d has no name", k)
		}
	}
}

func TestMalformedAction(t *testing.T) {
	ft := &fakeTarget{}
	for _, a := range []*Action{
		{Kind: KindLayerBufferPatch},
		{Kind: KindLayerList, LayerList: &LayerListChange{Op: LayerDelete}},
		{Kind: kindCount},
	} {
		if err := apply(ft, a, true); !errors.Is(err, ErrMalformedAction) {
			t.Errorf("apply(%v) = %v", a, err)
		}
	}
}

func TestLayerReorder(t *testing.T) {
	ft := &fakeTarget{}
	a := NewLayerListAction(&LayerListChange{Op: LayerReorder, OldOrder: []string{"a", "b"}, NewOrder: []string{"b", "a"}})
	apply(ft, a, true)
	if ft.calls[0] != "layer order [a b]" {
		t.Fatalf("calls = %v", ft.calls)
	}
}

package floating

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/bethropolis/pixl/internal/buffer"
	"github.com/bethropolis/pixl/internal/core/selection"
	"github.com/bethropolis/pixl/internal/layer"
	"github.com/bethropolis/pixl/internal/types"
)

var (
	red  = types.RGBA{R: 255, A: 255}
	blue = types.RGBA{B: 255, A: 255}
)

func randomAgent(t *testing.T, w, h int) *layer.Agent {
	t.Helper()
	a := layer.NewAgent("L", layer.DefaultProps("L"), types.Size{Width: w, Height: h}, 4, 0.8)
	rng := rand.New(rand.NewSource(int64(w*31 + h)))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a.SetPixel(types.Position{X: x, Y: y}, types.RGBA{
				R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: uint8(rng.Intn(256)),
			})
		}
	}
	a.FlushPatch()
	return a
}

func TestFullCanvasMoveAtOriginIsIdentity(t *testing.T) {
	a := randomAgent(t, 9, 7)
	pre := a.Snapshot()

	m := NewManager()
	if err := m.Start(a, MoveLayer, nil, nil, types.Position{}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := m.MoveTo(types.Position{}); err != nil {
		t.Fatal(err)
	}
	p, err := m.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if string(a.Snapshot()) != string(pre) {
		t.Fatal("buffer changed by an identity move")
	}
	if p != nil {
		t.Fatalf("identity move produced a %s patch", p.Shape())
	}
}

func TestSelectionMoveAndUndo(t *testing.T) {
	a := layer.NewAgent("L", layer.DefaultProps("L"), types.Size{Width: 6, Height: 6}, 3, 0.8)
	a.SetPixel(types.Position{X: 1, Y: 1}, red)
	a.SetPixel(types.Position{X: 2, Y: 1}, blue)
	a.FlushPatch()
	pre := a.Snapshot()

	mask := selection.NewMask(a.Size())
	mask.Set(types.Position{X: 1, Y: 1}, true)

	m := NewManager()
	if err := m.Start(a, MoveSelection, mask, nil, types.Position{}); err != nil {
		t.Fatal(err)
	}
	if c, _ := a.GetPixel(types.Position{X: 1, Y: 1}); c != types.Transparent {
		t.Fatal("lifted pixel not cleared")
	}
	if m.Floating().Width != 1 || m.Floating().Origin != (types.Position{X: 1, Y: 1}) {
		t.Fatalf("floating = %+v", m.Floating())
	}

	prev, err := m.Preview()
	if err != nil {
		t.Fatal(err)
	}
	if c, _ := prev.GetPixel(types.Position{X: 1, Y: 1}); c != red {
		t.Fatal("preview does not show the floating pixel")
	}

	m.MoveTo(types.Position{X: 1, Y: 3})
	m.MoveTo(types.Position{X: 3, Y: 3})
	p, err := m.Commit()
	if err != nil || p == nil {
		t.Fatalf("Commit = %v, %v", p, err)
	}
	if c, _ := a.GetPixel(types.Position{X: 4, Y: 4}); c != red {
		t.Fatalf("(4,4) = %v, want red", c)
	}
	if c, _ := a.GetPixel(types.Position{X: 2, Y: 1}); c != blue {
		t.Fatal("unselected pixel moved")
	}
	if m.IsMoving() {
		t.Fatal("still moving after commit")
	}

	if err := a.ApplyPatch(p, true); err != nil {
		t.Fatal(err)
	}
	if string(a.Snapshot()) != string(pre) {
		t.Fatal("undo of move did not restore the buffer")
	}
}

func TestCancelRestores(t *testing.T) {
	a := randomAgent(t, 5, 5)
	pre := a.Snapshot()
	m := NewManager()
	if err := m.Start(a, MoveLayer, nil, nil, types.Position{}); err != nil {
		t.Fatal(err)
	}
	m.MoveTo(types.Position{X: 2, Y: -1})
	if err := m.Cancel(); err != nil {
		t.Fatal(err)
	}
	if string(a.Snapshot()) != string(pre) {
		t.Fatal("cancel did not restore the buffer")
	}
	if !a.Diffs().Empty() {
		t.Fatal("cancel left gesture diffs")
	}
	if err := m.Cancel(); !errors.Is(err, ErrNotMoving) {
		t.Fatalf("second Cancel = %v", err)
	}
}

func TestMalformedCommitRestores(t *testing.T) {
	a := randomAgent(t, 4, 4)
	pre := a.Snapshot()
	m := NewManager()
	if err := m.Start(a, MoveLayer, nil, nil, types.Position{}); err != nil {
		t.Fatal(err)
	}
	m.Floating().Pixels = buffer.New(1, 1)

	p, err := m.Commit()
	if !errors.Is(err, ErrMalformedFloatingBuffer) || p != nil {
		t.Fatalf("Commit = %v, %v", p, err)
	}
	if string(a.Snapshot()) != string(pre) {
		t.Fatal("failed commit changed the buffer")
	}
	if m.IsMoving() {
		t.Fatal("failed commit left the move active")
	}
}

func TestPastedMove(t *testing.T) {
	a := layer.NewAgent("L", layer.DefaultProps("L"), types.Size{Width: 4, Height: 4}, 2, 0.8)
	img := buffer.New(2, 1)
	img.Fill(red)

	m := NewManager()
	if err := m.Start(a, MovePasted, nil, img, types.Position{X: 1, Y: 1}); err != nil {
		t.Fatal(err)
	}
	if !a.Diffs().Empty() {
		t.Fatal("paste lifted pixels")
	}
	m.MoveTo(types.Position{X: 2, Y: 2}) // lands at (3,3); second pixel is off canvas
	if _, err := m.Commit(); err != nil {
		t.Fatal(err)
	}
	if c, _ := a.GetPixel(types.Position{X: 3, Y: 3}); c != red {
		t.Fatalf("(3,3) = %v", c)
	}
}

func TestStartErrors(t *testing.T) {
	a := layer.NewAgent("L", layer.DefaultProps("L"), types.Size{Width: 2, Height: 2}, 2, 0.8)
	m := NewManager()
	if err := m.Start(a, MoveSelection, selection.NewMask(a.Size()), nil, types.Position{}); !errors.Is(err, ErrNothingToMove) {
		t.Fatalf("empty selection = %v", err)
	}
	if err := m.MoveTo(types.Position{X: 1}); !errors.Is(err, ErrNotMoving) {
		t.Fatalf("MoveTo idle = %v", err)
	}
	if err := m.Start(a, MoveLayer, nil, nil, types.Position{}); err != nil {
		t.Fatal(err)
	}
	if err := m.Start(a, MoveLayer, nil, nil, types.Position{}); !errors.Is(err, ErrAlreadyMoving) {
		t.Fatalf("second Start = %v", err)
	}
}

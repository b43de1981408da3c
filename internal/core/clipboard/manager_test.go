package clipboard

import (
	"testing"

	"github.com/bethropolis/pixl/internal/buffer"
	"github.com/bethropolis/pixl/internal/core/selection"
	"github.com/bethropolis/pixl/internal/types"
)

func TestCopyMasked(t *testing.T) {
	red := types.RGBA{R: 255, A: 255}
	src := buffer.New(4, 4)
	src.Fill(red)

	mask := selection.NewMask(src.Size())
	mask.Set(types.Position{X: 1, Y: 1}, true)
	mask.Set(types.Position{X: 2, Y: 2}, true)

	m := NewManager()
	if m.Has() {
		t.Fatal("new clipboard is not empty")
	}
	if !m.Copy(src, mask) {
		t.Fatal("Copy returned false")
	}
	got, origin, ok := m.Content()
	if !ok || origin != (types.Position{X: 1, Y: 1}) {
		t.Fatalf("Content origin = %v, %v", origin, ok)
	}
	if got.Size() != (types.Size{Width: 2, Height: 2}) {
		t.Fatalf("size = %v", got.Size())
	}
	tests := []struct {
		pos  types.Position
		want types.RGBA
	}{
		{types.Position{X: 0, Y: 0}, red},
		{types.Position{X: 1, Y: 1}, red},
		{types.Position{X: 1, Y: 0}, types.Transparent},
		{types.Position{X: 0, Y: 1}, types.Transparent},
	}
	for _, tt := range tests {
		if c, _ := got.GetPixel(tt.pos); c != tt.want {
			t.Errorf("pixel %v = %v, want %v", tt.pos, c, tt.want)
		}
	}

	// Content hands out copies.
	got.Fill(types.Transparent)
	again, _, _ := m.Content()
	if c, _ := again.GetPixel(types.Position{}); c != red {
		t.Error("Content shares storage with the register")
	}
}

func TestCopyEmptyMask(t *testing.T) {
	m := NewManager()
	src := buffer.New(2, 2)
	if m.Copy(src, selection.NewMask(src.Size())) {
		t.Error("copied an empty selection")
	}
	if !m.Copy(src, nil) || !m.Has() {
		t.Error("whole-buffer copy failed")
	}
	m.Clear()
	if m.Has() {
		t.Error("Clear left content")
	}
}

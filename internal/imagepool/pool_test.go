package imagepool

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bethropolis/pixl/internal/buffer"
	"github.com/bethropolis/pixl/internal/types"
)

func TestNewEntryFitsCanvas(t *testing.T) {
	e := NewEntry("ref.png", buffer.New(20, 10), types.Size{Width: 10, Height: 10})
	if e.Props.Scale != 0.5 {
		t.Fatalf("scale = %v, want 0.5", e.Props.Scale)
	}
	if got := e.ScaledSize(); got != (types.Size{Width: 10, Height: 5}) {
		t.Fatalf("scaled = %v", got)
	}
	if e.ID == "" || !e.Props.Visible || e.Props.Opacity != 1 {
		t.Fatalf("entry = %+v", e)
	}
}

func TestPoolInsertRemoveKeepsIdentity(t *testing.T) {
	p := New()
	a := NewEntry("a", buffer.New(1, 1), types.Size{Width: 1, Height: 1})
	b := NewEntry("b", buffer.New(1, 1), types.Size{Width: 1, Height: 1})
	p.Insert(a, -1)
	p.Insert(b, -1)

	removed, idx, err := p.Remove(a.ID)
	if err != nil || idx != 0 || removed != a {
		t.Fatalf("Remove = %v, %d, %v", removed, idx, err)
	}
	if _, err := p.Get(a.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("Get removed = %v", err)
	}

	p.Insert(removed, idx)
	if p.Entries()[0].ID != a.ID || p.Len() != 2 {
		t.Fatal("re-insert did not restore the same id at the same index")
	}

	p.Insert(removed, 1) // same id: moves rather than duplicates
	if p.Len() != 2 || p.Entries()[1].ID != a.ID {
		t.Fatal("duplicate id inserted")
	}
}

func TestSetProps(t *testing.T) {
	p := New()
	e := NewEntry("a", buffer.New(2, 2), types.Size{Width: 2, Height: 2})
	p.Insert(e, 0)
	old, err := p.SetProps(e.ID, Props{X: 3, Scale: 2, Visible: false})
	if err != nil {
		t.Fatal(err)
	}
	if old.Scale != 1 || e.Props.X != 3 {
		t.Fatalf("old = %+v new = %+v", old, e.Props)
	}
}

func TestLoadEntry(t *testing.T) {
	img := buffer.New(4, 2)
	img.SetPixel(types.Position{X: 3, Y: 1}, types.RGBA{B: 255, A: 255})
	path := filepath.Join(t.TempDir(), "ref.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := img.Encode(f, buffer.FormatPNG); err != nil {
		t.Fatal(err)
	}
	f.Close()

	e, err := LoadEntry(path, types.Size{Width: 8, Height: 8})
	if err != nil {
		t.Fatalf("LoadEntry: %v", err)
	}
	if e.FileName != "ref.png" || e.Width() != 4 || e.Height() != 2 {
		t.Fatalf("entry = %+v", e)
	}
	if _, err := LoadEntry(filepath.Join(t.TempDir(), "missing.png"), types.Size{}); err == nil {
		t.Fatal("missing file loaded")
	}
}

package script

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bethropolis/pixl/internal/core"
	"github.com/bethropolis/pixl/internal/palette"
	"github.com/bethropolis/pixl/internal/types"
)

func newDoc(t *testing.T) *core.Document {
	t.Helper()
	d, err := core.New(core.Options{
		Size:     types.Size{Width: 4, Height: 4},
		TileSize: 2,
		Primary:  types.RGBA{A: 255},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func pixelAt(t *testing.T, d *core.Document, x, y int) types.RGBA {
	t.Helper()
	a, err := d.ActiveLayer()
	if err != nil {
		t.Fatal(err)
	}
	c, _ := a.GetPixel(types.Position{X: x, Y: y})
	return c
}

func TestScriptEdits(t *testing.T) {
	d := newDoc(t)
	src := `
pixl.begin_stroke()
pixl.line(0, 0, 3, 0, "#ff0000")
pixl.end_stroke()
pixl.fill(0, 3, "#0000ff")
if pixl.get_pixel(2, 0) == "#ff0000ff" {
	pixl.set_color("secondary", "#00ff00")
}
size := pixl.size()
pixl.log("canvas", size[0], size[1])
`
	if err := NewRunner(d).Run(context.Background(), "edit", []byte(src)); err != nil {
		t.Fatal(err)
	}
	if c := pixelAt(t, d, 3, 0); c != (types.RGBA{R: 255, A: 255}) {
		t.Errorf("line pixel = %v", c)
	}
	if c := pixelAt(t, d, 3, 3); c != (types.RGBA{B: 255, A: 255}) {
		t.Errorf("fill pixel = %v", c)
	}
	if _, s := d.Colors(); s != (types.RGBA{G: 255, A: 255}) {
		t.Errorf("secondary = %v", s)
	}
	if n := len(d.History().UndoStack()); n != 3 {
		t.Errorf("history has %d actions, want 3", n)
	}
}

func TestScriptUndoAndEffect(t *testing.T) {
	d := newDoc(t)
	src := `
pixl.begin_stroke()
pixl.pixel(1, 1)
pixl.end_stroke()
pixl.effect("invert")
pixl.effect("posterize", {levels: 2})
pixl.undo()
pixl.undo()
`
	if err := NewRunner(d).Run(context.Background(), "fx", []byte(src)); err != nil {
		t.Fatal(err)
	}
	if c := pixelAt(t, d, 1, 1); c != (types.RGBA{A: 255}) {
		t.Errorf("pixel after undoing effects = %v", c)
	}
	if !d.History().CanRedo() {
		t.Error("nothing to redo")
	}
}

func TestScriptLayersAndSelection(t *testing.T) {
	d := newDoc(t)
	src := `
id := pixl.add_layer("ink")
pixl.set_layer_props(id, {opacity: 0.5, name: "ink2"})
pixl.select_rect(0, 0, 1, 1)
pixl.fill(0, 0, "#ffffff", 0, "area")
pixl.clear_selection()
pixl.reorder_layers([id, pixl.layers()[0]])
`
	if err := NewRunner(d).Run(context.Background(), "layers", []byte(src)); err != nil {
		t.Fatal(err)
	}
	a, err := d.ActiveLayer()
	if err != nil {
		t.Fatal(err)
	}
	if a.Props.Name != "ink2" || a.Props.Opacity != 0.5 {
		t.Errorf("props = %+v", a.Props)
	}
	if d.Layers().Order()[0] != a.ID {
		t.Errorf("order = %v", d.Layers().Order())
	}
	if c := pixelAt(t, d, 1, 1); c != (types.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("area fill inside selection = %v", c)
	}
	if c := pixelAt(t, d, 2, 2); c != types.Transparent {
		t.Errorf("area fill outside selection = %v", c)
	}
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"compile", `pixl.fill(`, "compiling"},
		{"unknown effect", `pixl.effect("sharpen")`, "unknown effect"},
		{"bad argument", `pixl.fill("a", 0)`, "x"},
		{"bad color", `pixl.set_color("primary", "#zz")`, "invalid color"},
		{"no stroke", `pixl.pixel(0, 0)`, "no stroke"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRunner(newDoc(t)).Run(context.Background(), tt.name, []byte(tt.src))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestRunFileExports(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.png")
	script := filepath.Join(dir, "draw.tengo")
	src := `pixl.fill(0, 0, "#00ff00")
pixl.save("` + filepath.ToSlash(out) + `")
`
	if err := os.WriteFile(script, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := NewRunner(newDoc(t)).RunFile(context.Background(), script); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("export missing: %v", err)
	}
	if err := NewRunner(newDoc(t)).RunFile(context.Background(), filepath.Join(dir, "missing.tengo")); err == nil {
		t.Error("running a missing file succeeded")
	}
}

func TestScriptPalette(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "duo.toml"), []byte(`name = "Duo"
colors = ["#112233", "#ddeeff"]
`), 0o644); err != nil {
		t.Fatal(err)
	}
	d := newDoc(t)
	src := `
pixl.use_palette("duo")
pixl.fill(0, 0, 1)
pixl.set_color("secondary", 0)
if pixl.nearest_swatch("#eeeeee") != 1 {
	pixl.undo()
}
`
	r := NewRunner(d).SetPalettes(palette.NewManager(dir))
	if err := r.Run(context.Background(), "palette", []byte(src)); err != nil {
		t.Fatal(err)
	}
	if c := pixelAt(t, d, 2, 2); c != types.MustParseHex("#ddeeff") {
		t.Errorf("fill from swatch = %v", c)
	}
	if _, s := d.Colors(); s != types.MustParseHex("#112233") {
		t.Errorf("secondary = %v", s)
	}

	err := NewRunner(newDoc(t)).Run(context.Background(), "range", []byte(`pixl.fill(0, 0, 99)`))
	if err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Errorf("err = %v", err)
	}
}

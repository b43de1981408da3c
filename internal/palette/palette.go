// internal/palette/palette.go
package palette

import (
	"fmt"

	"github.com/bethropolis/pixl/internal/types"
)

// Palette is a named, ordered set of swatches.
type Palette struct {
	Name   string
	Colors []types.RGBA
}

// Swatch returns the color at index i.
func (p *Palette) Swatch(i int) (types.RGBA, error) {
	if i < 0 || i >= len(p.Colors) {
		return types.RGBA{}, fmt.Errorf("palette '%s': swatch %d out of range 0..%d", p.Name, i, len(p.Colors)-1)
	}
	return p.Colors[i], nil
}

// Nearest returns the index of the swatch closest to c in RGB space, or -1
// for an empty palette.
func (p *Palette) Nearest(c types.RGBA) int {
	best, bestDist := -1, 0
	for i, s := range p.Colors {
		dr, dg, db := int(s.R)-int(c.R), int(s.G)-int(c.G), int(s.B)-int(c.B)
		dist := dr*dr + dg*dg + db*db
		if best < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

func mustPalette(name string, hexes ...string) Palette {
	p := Palette{Name: name, Colors: make([]types.RGBA, len(hexes))}
	for i, h := range hexes {
		p.Colors[i] = types.MustParseHex(h)
	}
	return p
}

// PICO8 is the built-in default palette.
var PICO8 = mustPalette("PICO-8",
	"#000000", "#1d2b53", "#7e2553", "#008751",
	"#ab5236", "#5f574f", "#c2c3c7", "#fff1e8",
	"#ff004d", "#ffa300", "#ffec27", "#00e436",
	"#29adff", "#83769c", "#ff77a8", "#ffccaa",
)

// GameBoy is the four-shade handheld palette.
var GameBoy = mustPalette("GameBoy", "#0f380f", "#306230", "#8bac0f", "#9bbc0f")

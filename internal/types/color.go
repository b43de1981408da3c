package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBA is a straight (non-premultiplied) 8-bit color, laid out the same
// way as one pixel in a PixelBuffer.
type RGBA struct {
	R, G, B, A uint8
}

// Transparent is the zero pixel.
var Transparent = RGBA{}

// Equal compares all four channels.
func (c RGBA) Equal(o RGBA) bool {
	return c == o
}

// WithinTolerance reports whether every RGB channel of c differs from o by at
// most tol. Alpha is ignored unless tol is 0, where the match is exact.
func (c RGBA) WithinTolerance(o RGBA, tol uint8) bool {
	if tol == 0 {
		return c == o
	}
	return absDiff(c.R, o.R) <= tol && absDiff(c.G, o.G) <= tol && absDiff(c.B, o.B) <= tol
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

// Hex formats the color as #rrggbbaa.
func (c RGBA) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func (c RGBA) String() string { return c.Hex() }

// ParseHex accepts #rgb, #rrggbb and #rrggbbaa (the leading # is optional).
func ParseHex(s string) (RGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if n := len(s); n != 4 && n != 7 && n != 9 {
		return RGBA{}, fmt.Errorf("invalid color %q: want #rgb, #rrggbb or #rrggbbaa", s)
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return RGBA{}, fmt.Errorf("invalid color %q: %q is not a hex digit", s, r)
		}
	}
	alpha := uint8(255)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return RGBA{}, fmt.Errorf("invalid alpha in color %q: %w", s, err)
		}
		alpha = uint8(a)
		s = s[:7]
	}
	col, err := colorful.Hex(s)
	if err != nil {
		return RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := col.RGB255()
	return RGBA{R: r, G: g, B: b, A: alpha}, nil
}

// MustParseHex is ParseHex for constants; it panics on malformed input.
func MustParseHex(s string) RGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

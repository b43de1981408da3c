package buffer

import "github.com/bethropolis/pixl/internal/types"

// Over composites straight-alpha src onto dst. Fully transparent sources
// leave dst untouched; opaque sources, or any source over a fully
// transparent destination, are copied verbatim so lifting and dropping
// pixels is lossless.
func Over(dst, src types.RGBA) types.RGBA {
	switch {
	case src.A == 0:
		return dst
	case src.A == 255 || dst.A == 0:
		return src
	}
	a := uint32(src.A)
	inv := 255 - a
	mix := func(s, d uint8) uint8 {
		return uint8(((uint32(s)*a + uint32(d)*inv + 127) * 257) >> 16)
	}
	outA := a + (((uint32(dst.A)*inv + 127) * 257) >> 16)
	if outA > 255 {
		outA = 255
	}
	return types.RGBA{R: mix(src.R, dst.R), G: mix(src.G, dst.G), B: mix(src.B, dst.B), A: uint8(outA)}
}

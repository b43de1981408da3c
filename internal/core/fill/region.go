package fill

import (
	"github.com/bethropolis/pixl/internal/buffer"
	"github.com/bethropolis/pixl/internal/core/selection"
	"github.com/bethropolis/pixl/internal/types"
)

// SelectRegion grows the 4-connected region around seed whose colors are
// within tolerance of the seed color and returns it as a mask. Nothing is
// written. A seed outside buf yields an empty mask.
func SelectRegion(buf *buffer.PixelBuffer, seed types.Position, tolerance uint8) *selection.Mask {
	mask := selection.NewMask(buf.Size())
	target, ok := buf.GetPixel(seed)
	if !ok {
		return mask
	}
	stack := []types.Position{seed}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c, ok := buf.GetPixel(p)
		if !ok || mask.Get(p) || !c.WithinTolerance(target, tolerance) {
			continue
		}
		mask.Set(p, true)
		for _, d := range neighbours {
			stack = append(stack, p.Add(d))
		}
	}
	return mask
}

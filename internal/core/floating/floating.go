// Package floating lifts pixels out of a layer for interactive moves and
// composites them back on commit.
package floating

import (
	"errors"
	"fmt"

	"github.com/bethropolis/pixl/internal/buffer"
	"github.com/bethropolis/pixl/internal/core/selection"
	"github.com/bethropolis/pixl/internal/layer"
	"github.com/bethropolis/pixl/internal/types"
)

var (
	// ErrNotMoving is returned when no floating buffer is active.
	ErrNotMoving = errors.New("nothing is moving")
	// ErrAlreadyMoving is returned when a move is started during another.
	ErrAlreadyMoving = errors.New("a move is already in progress")
	// ErrNothingToMove is returned when the selection is empty.
	ErrNothingToMove = errors.New("nothing to move")
	// ErrMalformedFloatingBuffer is returned when a floating buffer's
	// pixels do not match its declared size.
	ErrMalformedFloatingBuffer = errors.New("malformed floating buffer")
)

// Buffer is a pixel region detached from its layer. Origin is where it was
// lifted from; it lands at Origin+Offset on commit.
type Buffer struct {
	Width  int
	Height int
	Origin types.Position
	Offset types.Position
	Pixels *buffer.PixelBuffer
}

// Validate checks that Pixels matches Width x Height.
func (b *Buffer) Validate() error {
	if b == nil || b.Pixels == nil {
		return fmt.Errorf("%w: no pixels", ErrMalformedFloatingBuffer)
	}
	if b.Width <= 0 || b.Height <= 0 || b.Pixels.Width() != b.Width || b.Pixels.Height() != b.Height {
		return fmt.Errorf("%w: declared %dx%d, pixels %s", ErrMalformedFloatingBuffer, b.Width, b.Height, b.Pixels.Size())
	}
	return nil
}

// Destination is the top-left canvas position the buffer lands at.
func (b *Buffer) Destination() types.Position { return b.Origin.Add(b.Offset) }

// Lift copies the pixels of agent selected by mask (every pixel when mask
// is nil) into a floating buffer spanning the mask's bounding box and
// clears them on the layer through the agent, so the gesture diffs can
// restore them.
func Lift(agent *layer.Agent, mask *selection.Mask) (*Buffer, error) {
	size := agent.Size()
	box := types.Rect{Left: 0, Top: 0, Right: size.Width - 1, Bottom: size.Height - 1}
	if mask != nil {
		var ok bool
		if box, ok = mask.BoundBox(); !ok {
			return nil, ErrNothingToMove
		}
	}
	if box.Width() <= 0 || box.Height() <= 0 {
		return nil, ErrNothingToMove
	}

	fb := &Buffer{
		Width:  box.Width(),
		Height: box.Height(),
		Origin: box.Origin(),
		Pixels: buffer.New(box.Width(), box.Height()),
	}
	for y := box.Top; y <= box.Bottom; y++ {
		for x := box.Left; x <= box.Right; x++ {
			p := types.Position{X: x, Y: y}
			if mask != nil && !mask.Get(p) {
				continue
			}
			c, ok := agent.GetPixel(p)
			if !ok || c.A == 0 {
				// Fully transparent pixels carry nothing to move.
				continue
			}
			fb.Pixels.SetPixel(p.Sub(box.Origin()), c)
			agent.SetPixel(p, types.Transparent)
		}
	}
	return fb, nil
}

// Composite alpha-composites fb onto the agent's layer at its destination,
// touching only the floating rectangle's footprint. Writes go through the
// agent so they land in the gesture diffs. A malformed buffer writes
// nothing.
func Composite(agent *layer.Agent, fb *Buffer) error {
	if err := fb.Validate(); err != nil {
		return err
	}
	dest := fb.Destination()
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			src, _ := fb.Pixels.GetPixel(types.Position{X: x, Y: y})
			if src.A == 0 {
				continue
			}
			p := types.Position{X: dest.X + x, Y: dest.Y + y}
			dst, ok := agent.GetPixel(p)
			if !ok {
				continue
			}
			agent.SetPixel(p, buffer.Over(dst, src))
		}
	}
	return nil
}

// Preview returns a copy of base with fb composited at its destination,
// for display while a move is in progress.
func Preview(base *buffer.PixelBuffer, fb *Buffer) (*buffer.PixelBuffer, error) {
	if err := fb.Validate(); err != nil {
		return nil, err
	}
	out := base.Clone()
	dest := fb.Destination()
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			src, _ := fb.Pixels.GetPixel(types.Position{X: x, Y: y})
			p := types.Position{X: dest.X + x, Y: dest.Y + y}
			if dst, ok := out.GetPixel(p); ok {
				out.SetPixel(p, buffer.Over(dst, src))
			}
		}
	}
	return out, nil
}

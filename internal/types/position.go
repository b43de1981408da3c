// internal/types/position.go
package types

import "fmt"

// Position is a pixel coordinate on a canvas or layer.
// X grows to the right, Y grows downwards, both 0-based.
type Position struct {
	X int
	Y int
}

// Add returns p translated by d.
func (p Position) Add(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub returns p translated by -d.
func (p Position) Sub(d Position) Position {
	return Position{X: p.X - d.X, Y: p.Y - d.Y}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  int
	Height int
}

// Area returns Width*Height, or 0 for degenerate sizes.
func (s Size) Area() int {
	if s.Width <= 0 || s.Height <= 0 {
		return 0
	}
	return s.Width * s.Height
}

// Contains reports whether p lies inside a canvas of this size.
func (s Size) Contains(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < s.Width && p.Y < s.Height
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Rect is an inclusive axis-aligned rectangle (Left..Right, Top..Bottom).
type Rect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// Width of the rectangle in pixels.
func (r Rect) Width() int { return r.Right - r.Left + 1 }

// Height of the rectangle in pixels.
func (r Rect) Height() int { return r.Bottom - r.Top + 1 }

// Contains reports whether p lies within r (edges included).
func (r Rect) Contains(p Position) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// Origin is the top-left corner.
func (r Rect) Origin() Position {
	return Position{X: r.Left, Y: r.Top}
}

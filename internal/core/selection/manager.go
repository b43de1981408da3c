// Package selection maintains the selection mask and the small state
// machine gating which pixels mutations may touch.
package selection

import (
	"fmt"

	"github.com/bethropolis/pixl/internal/event"
	"github.com/bethropolis/pixl/internal/logger"
	"github.com/bethropolis/pixl/internal/types"
)

// State of the selection state machine.
type State int

const (
	StateIdle State = iota
	StateDrawing
	StateMove
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDrawing:
		return "drawing"
	case StateMove:
		return "move"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// EditMode controls how a drawn fragment merges into the existing mask.
type EditMode int

const (
	ModeReplace EditMode = iota
	ModeAdd
	ModeSubtract
)

// ParseEditMode maps "replace", "add" and "subtract".
func ParseEditMode(s string) (EditMode, error) {
	switch s {
	case "replace", "":
		return ModeReplace, nil
	case "add":
		return ModeAdd, nil
	case "subtract":
		return ModeSubtract, nil
	}
	return ModeReplace, fmt.Errorf("unknown selection mode %q", s)
}

// LimitMode restricts painting relative to the selection.
type LimitMode int

const (
	LimitNone LimitMode = iota
	LimitInside
	LimitOutside
)

// ParseLimitMode maps "none", "inside" and "outside".
func ParseLimitMode(s string) (LimitMode, error) {
	switch s {
	case "none", "":
		return LimitNone, nil
	case "inside":
		return LimitInside, nil
	case "outside":
		return LimitOutside, nil
	}
	return LimitNone, fmt.Errorf("unknown limit mode %q", s)
}

// Manager handles selection state and logic.
type Manager struct {
	events *event.Manager

	state   State
	mask    *Mask
	pending *Mask // fragment being drawn
	mode    EditMode
	offset  types.Position
}

// NewManager creates an idle manager with an empty mask. events may be nil.
func NewManager(size types.Size, events *event.Manager) *Manager {
	return &Manager{
		events: events,
		mask:   NewMask(size),
	}
}

// State returns the current state.
func (m *Manager) State() State { return m.state }

// Mask returns the committed mask. Callers must not modify it.
func (m *Manager) Mask() *Mask { return m.mask }

// Offset returns the interactive move offset.
func (m *Manager) Offset() types.Position { return m.offset }

// IsSelected reports whether any pixel is selected.
func (m *Manager) IsSelected() bool { return !m.mask.IsEmpty() }

// BoundBox returns the bounding box of the committed mask, without the
// move offset.
func (m *Manager) BoundBox() (types.Rect, bool) { return m.mask.BoundBox() }

// IsMaskOverlap reports whether pos lies within the bounding box and its
// mask bit is set. With withMoveOffset, pos is a canvas position of the
// dragged selection and the current offset is subtracted first.
func (m *Manager) IsMaskOverlap(pos types.Position, withMoveOffset bool) bool {
	if withMoveOffset {
		pos = pos.Sub(m.offset)
	}
	box, ok := m.mask.BoundBox()
	if !ok || !box.Contains(pos) {
		return false
	}
	return m.mask.Get(pos)
}

// AllowsPaint applies limit to pos: inside requires the pixel to be
// selected, outside requires it not to be. With no selection every pixel
// is allowed.
func (m *Manager) AllowsPaint(pos types.Position, limit LimitMode) bool {
	if limit == LimitNone || !m.IsSelected() {
		return true
	}
	in := m.IsMaskOverlap(pos, false)
	if limit == LimitInside {
		return in
	}
	return !in
}

// BeginDraw starts a new fragment merged with mode on commit.
func (m *Manager) BeginDraw(mode EditMode) bool {
	if m.state != StateIdle {
		logger.DebugTagf("selection", "Selection Manager: BeginDraw ignored in %v", m.state)
		return false
	}
	m.state = StateDrawing
	m.mode = mode
	m.pending = NewMask(m.mask.Size())
	return true
}

// AddPixel adds one pixel to the fragment being drawn.
func (m *Manager) AddPixel(pos types.Position) {
	if m.state == StateDrawing {
		m.pending.Set(pos, true)
	}
}

// AddRect adds a rectangle, clipped to the canvas.
func (m *Manager) AddRect(r types.Rect) {
	if m.state == StateDrawing {
		m.pending.SetRect(r, true)
	}
}

// AddPartial ORs a partial mask placed at origin into the fragment.
func (m *Manager) AddPartial(part *Mask, origin types.Position) {
	if m.state != StateDrawing {
		return
	}
	for y := 0; y < part.height; y++ {
		for x := 0; x < part.width; x++ {
			if part.bits[y*part.width+x] != 0 {
				m.pending.Set(types.Position{X: origin.X + x, Y: origin.Y + y}, true)
			}
		}
	}
}

// CommitDraw merges the fragment into the mask and returns to idle.
func (m *Manager) CommitDraw() {
	if m.state != StateDrawing {
		return
	}
	m.mask.Combine(m.pending, m.mode)
	m.pending = nil
	m.state = StateIdle
	m.changed()
}

// CancelDraw drops the fragment.
func (m *Manager) CancelDraw() {
	if m.state != StateDrawing {
		return
	}
	m.pending = nil
	m.state = StateIdle
}

// ApplyMask merges a complete mask (e.g. from auto-select) with mode.
func (m *Manager) ApplyMask(other *Mask, mode EditMode) {
	m.mask.Combine(other, mode)
	m.changed()
}

// BeginMove enters the move state. It requires an idle manager with a
// non-empty selection.
func (m *Manager) BeginMove() bool {
	if m.state != StateIdle || !m.IsSelected() {
		return false
	}
	m.state = StateMove
	m.offset = types.Position{}
	logger.DebugTagf("selection", "Selection Manager: move started")
	return true
}

// MoveTo updates the interactive offset. Pixel content is not moved.
func (m *Manager) MoveTo(offset types.Position) {
	if m.state != StateMove {
		return
	}
	m.offset = offset
	m.changed()
}

// CommitMove bakes the offset into the mask and returns to idle.
func (m *Manager) CommitMove() {
	if m.state != StateMove {
		return
	}
	m.CommitOffset()
	m.state = StateIdle
}

// CancelMove reverts the offset to zero and returns to idle.
func (m *Manager) CancelMove() {
	if m.state != StateMove {
		return
	}
	m.offset = types.Position{}
	m.state = StateIdle
	m.changed()
}

// CommitOffset shifts the mask by the current offset (bits leaving the
// canvas are clipped) and zeroes the offset.
func (m *Manager) CommitOffset() {
	if m.offset != (types.Position{}) {
		m.mask = m.mask.Shifted(m.offset)
		m.offset = types.Position{}
	}
	m.changed()
}

// SelectAll selects every canvas pixel.
func (m *Manager) SelectAll() {
	m.mask.Fill(true)
	m.changed()
}

// Clear resets the mask to empty and the state to idle.
func (m *Manager) Clear() {
	m.mask.Fill(false)
	m.pending = nil
	m.offset = types.Position{}
	m.state = StateIdle
	m.changed()
}

// Resize discards the selection for a new canvas size.
func (m *Manager) Resize(size types.Size) {
	m.mask = NewMask(size)
	m.pending = nil
	m.offset = types.Position{}
	m.state = StateIdle
	m.changed()
}

func (m *Manager) changed() {
	box, ok := m.mask.BoundBox()
	m.events.Dispatch(event.TypeSelectionChanged, event.SelectionChangedData{Selected: ok, Box: box, Offset: m.offset})
}

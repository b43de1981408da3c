package floating

import (
	"fmt"

	"github.com/bethropolis/pixl/internal/buffer"
	"github.com/bethropolis/pixl/internal/core/selection"
	"github.com/bethropolis/pixl/internal/layer"
	"github.com/bethropolis/pixl/internal/logger"
	"github.com/bethropolis/pixl/internal/patch"
	"github.com/bethropolis/pixl/internal/types"
)

// MoveMode says where the floating pixels came from.
type MoveMode int

const (
	// MoveSelection lifts the selected pixels.
	MoveSelection MoveMode = iota
	// MoveLayer lifts the whole layer.
	MoveLayer
	// MovePasted floats an external image; nothing is lifted.
	MovePasted
)

func (m MoveMode) String() string {
	switch m {
	case MoveSelection:
		return "selection"
	case MoveLayer:
		return "layer"
	case MovePasted:
		return "pasted"
	}
	return fmt.Sprintf("MoveMode(%d)", int(m))
}

// Manager drives one floating move at a time.
type Manager struct {
	agent *layer.Agent
	fb    *Buffer
	mode  MoveMode
}

// NewManager creates an idle manager.
func NewManager() *Manager { return &Manager{} }

// IsMoving reports whether a floating buffer is active.
func (m *Manager) IsMoving() bool { return m.fb != nil }

// Mode returns the mode of the active move.
func (m *Manager) Mode() MoveMode { return m.mode }

// Floating returns the active floating buffer, or nil.
func (m *Manager) Floating() *Buffer { return m.fb }

// Target returns the layer being moved on, or nil.
func (m *Manager) Target() *layer.Agent { return m.agent }

// Start lifts pixels from agent. mask is used for MoveSelection; pasted
// (placed at origin) for MovePasted. The agent's gesture diff set must be
// empty.
func (m *Manager) Start(agent *layer.Agent, mode MoveMode, mask *selection.Mask, pasted *buffer.PixelBuffer, origin types.Position) error {
	if m.fb != nil {
		return ErrAlreadyMoving
	}

	var fb *Buffer
	var err error
	switch mode {
	case MoveSelection:
		if mask == nil || mask.IsEmpty() {
			return ErrNothingToMove
		}
		fb, err = Lift(agent, mask)
	case MoveLayer:
		fb, err = Lift(agent, nil)
	case MovePasted:
		if pasted == nil {
			return ErrNothingToMove
		}
		fb = &Buffer{Width: pasted.Width(), Height: pasted.Height(), Origin: origin, Pixels: pasted}
		err = fb.Validate()
	default:
		return fmt.Errorf("unknown move mode %v", mode)
	}
	if err != nil {
		agent.Discard()
		return err
	}

	m.agent, m.fb, m.mode = agent, fb, mode
	logger.DebugTagf("move", "move started: %v %dx%d from %v", mode, fb.Width, fb.Height, fb.Origin)
	return nil
}

// MoveTo sets the offset of the floating buffer. Nothing is copied.
func (m *Manager) MoveTo(offset types.Position) error {
	if m.fb == nil {
		return ErrNotMoving
	}
	m.fb.Offset = offset
	return nil
}

// Commit composites the floating buffer and returns the gesture's patch
// (nil when the layer ended up unchanged). On a composition failure the
// layer is restored, the error logged and returned, and no patch produced.
func (m *Manager) Commit() (*patch.LayerBuffer, error) {
	if m.fb == nil {
		return nil, ErrNotMoving
	}
	agent, fb := m.agent, m.fb
	m.reset()

	if err := Composite(agent, fb); err != nil {
		agent.Discard()
		logger.Errorf("move commit failed on layer %s: %v", agent.ID, err)
		return nil, err
	}
	p := agent.FlushPatch()
	logger.DebugTagf("move", "move committed at %v", fb.Destination())
	return p, nil
}

// Cancel drops the floating buffer and restores the lifted pixels.
func (m *Manager) Cancel() error {
	if m.fb == nil {
		return ErrNotMoving
	}
	agent := m.agent
	m.reset()
	agent.Discard()
	logger.DebugTagf("move", "move cancelled")
	return nil
}

// Preview composes the active move over the lifted layer.
func (m *Manager) Preview() (*buffer.PixelBuffer, error) {
	if m.fb == nil {
		return nil, ErrNotMoving
	}
	return Preview(m.agent.Buffer(), m.fb)
}

func (m *Manager) reset() {
	m.agent, m.fb = nil, nil
}

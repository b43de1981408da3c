package history

import (
	"fmt"
	"sync"

	"github.com/bethropolis/pixl/internal/event"
	"github.com/bethropolis/pixl/internal/logger"
)

const DefaultMaxItems = 128

// Controller owns the undo and redo stacks of one document.
type Controller struct {
	target   Target
	events   *event.Manager
	undo     []*Action
	redo     []*Action
	maxItems int
	mutex    sync.Mutex
}

// NewController creates a controller replaying actions against target.
// events may be nil.
func NewController(target Target, events *event.Manager, maxItems int) *Controller {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return &Controller{
		target:   target,
		events:   events,
		maxItems: maxItems,
	}
}

// AddAction pushes a (already applied) onto the undo stack, evicting the
// oldest entry beyond the max item count, and clears the redo stack.
func (c *Controller) AddAction(a *Action) {
	if a == nil {
		return
	}
	c.mutex.Lock()
	c.undo = append(c.undo, a)
	if over := len(c.undo) - c.maxItems; over > 0 {
		c.undo = append(c.undo[:0], c.undo[over:]...)
	}
	c.redo = nil
	logger.DebugTagf("history", "History: Recorded %v. Undo: %d", a, len(c.undo))
	c.mutex.Unlock()

	c.notify()
}

// Undo reverts the most recent action. It returns false with no error when
// there is nothing to undo. When the inverse fails the action stays on the
// undo stack.
func (c *Controller) Undo() (bool, error) {
	return c.step(true)
}

// Redo reapplies the most recently undone action.
func (c *Controller) Redo() (bool, error) {
	return c.step(false)
}

func (c *Controller) step(undo bool) (bool, error) {
	verb := "redo"
	if undo {
		verb = "undo"
	}

	c.mutex.Lock()
	from := &c.redo
	if undo {
		from = &c.undo
	}
	if len(*from) == 0 {
		c.mutex.Unlock()
		logger.DebugTagf("history", "History: Nothing to %s.", verb)
		return false, nil
	}
	a := (*from)[len(*from)-1]
	*from = (*from)[:len(*from)-1]
	c.mutex.Unlock()

	// The target dispatches events while applying; no lock is held so
	// handlers may query the controller.
	err := apply(c.target, a, undo)

	c.mutex.Lock()
	switch {
	case err != nil:
		*from = append(*from, a)
	case undo:
		c.redo = append(c.redo, a)
	default:
		c.undo = append(c.undo, a)
	}
	c.mutex.Unlock()

	if err != nil {
		logger.Errorf("History: %s of %v failed: %v", verb, a, err)
		return false, fmt.Errorf("%s failed: %w", verb, err)
	}
	logger.DebugTagf("history", "History: %s %v", verb, a)
	c.notify()
	return true, nil
}

// Clear empties both stacks.
func (c *Controller) Clear() {
	c.mutex.Lock()
	c.undo, c.redo = nil, nil
	c.mutex.Unlock()
	logger.DebugTagf("history", "History: Cleared.")
	c.notify()
}

// CanUndo returns true if there are actions that can be undone.
func (c *Controller) CanUndo() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.undo) > 0
}

// CanRedo returns true if there are actions that can be redone.
func (c *Controller) CanRedo() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.redo) > 0
}

// UndoStack returns a copy of the undo stack, oldest first.
func (c *Controller) UndoStack() []*Action {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([]*Action(nil), c.undo...)
}

// RedoStack returns a copy of the redo stack, oldest first.
func (c *Controller) RedoStack() []*Action {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([]*Action(nil), c.redo...)
}

func (c *Controller) notify() {
	c.mutex.Lock()
	data := event.HistoryChangedData{CanUndo: len(c.undo) > 0, CanRedo: len(c.redo) > 0}
	if len(c.undo) > 0 {
		data.LastLabel = c.undo[len(c.undo)-1].Label
	}
	c.mutex.Unlock()
	c.events.Dispatch(event.TypeHistoryChanged, data)
}

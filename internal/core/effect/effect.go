// Package effect turns a whole-buffer transform into a single undoable step.
package effect

import (
	"context"
	"fmt"
	"time"

	"github.com/bethropolis/pixl/internal/core/history"
	"github.com/bethropolis/pixl/internal/event"
	"github.com/bethropolis/pixl/internal/imgproc"
	"github.com/bethropolis/pixl/internal/layer"
	"github.com/bethropolis/pixl/internal/logger"
	"github.com/bethropolis/pixl/internal/patch"
)

// Recorder receives the action produced by a successful effect.
// *history.Controller satisfies it.
type Recorder interface {
	AddAction(a *history.Action)
}

// Applier runs effects through a Processor against layer buffers.
type Applier struct {
	proc    imgproc.Processor
	history Recorder
	events  *event.Manager
}

// NewApplier creates an applier. events may be nil.
func NewApplier(proc imgproc.Processor, history Recorder, events *event.Manager) *Applier {
	return &Applier{proc: proc, history: history, events: events}
}

// Apply runs kind over agent's buffer while holding the layer. On success
// the buffer is replaced, one whole-patch action is recorded and the
// buffer and preview updates are dispatched. On failure the buffer is left
// as it was, nothing is recorded and no event is sent.
//
// The Processor may spread its work over other goroutines, but Apply waits
// for it and records and dispatches on the calling goroutine. Call it from
// the goroutine that owns the document's history.
func (ap *Applier) Apply(ctx context.Context, agent *layer.Agent, kind imgproc.Kind, p imgproc.Params) (*history.Action, error) {
	if err := agent.Acquire(ctx); err != nil {
		return nil, err
	}
	defer agent.Release()

	size := agent.Size()
	before := agent.Snapshot()
	start := time.Now()

	after, err := ap.proc.Process(ctx, kind, before, size.Width, size.Height, p)
	if err == nil && len(after) != len(before) {
		err = fmt.Errorf("%w: got %d bytes, want %d", imgproc.ErrSizeMismatch, len(after), len(before))
	}
	if err != nil {
		logger.Errorf("effect %v on layer %s failed: %v", kind, agent.ID, err)
		return nil, fmt.Errorf("applying %v: %w", kind, err)
	}

	agent.Buffer().Replace(after)
	agent.Grid().ScanUniformity()
	agent.Grid().SetAllDirty()

	action := history.NewPatchAction(kind.String(), &patch.LayerBuffer{
		LayerID: agent.ID,
		Whole:   &patch.Whole{Before: before, After: after},
	})
	action.Context = "effect"
	ap.history.AddAction(action)
	logger.DebugTagf("effect", "effect %v on layer %s (%v) took %v", kind, agent.ID, size, time.Since(start))

	ap.events.Dispatch(event.TypeBufferUpdate, event.BufferUpdateData{LayerID: agent.ID, Context: "effect"})
	ap.events.Dispatch(event.TypePreviewUpdate, event.PreviewUpdateData{LayerID: agent.ID})
	return action, nil
}

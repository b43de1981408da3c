package effect

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/bethropolis/pixl/internal/core/history"
	"github.com/bethropolis/pixl/internal/event"
	"github.com/bethropolis/pixl/internal/imgproc"
	"github.com/bethropolis/pixl/internal/layer"
	"github.com/bethropolis/pixl/internal/types"
)

type recorder struct {
	actions []*history.Action
}

func (r *recorder) AddAction(a *history.Action) { r.actions = append(r.actions, a) }

type failing struct{}

func (failing) Process(context.Context, imgproc.Kind, []byte, int, int, imgproc.Params) ([]byte, error) {
	return nil, errors.New("boom")
}

type shrinking struct{}

func (shrinking) Process(_ context.Context, _ imgproc.Kind, src []byte, _, _ int, _ imgproc.Params) ([]byte, error) {
	return src[:len(src)-4], nil
}

func newAgent(t *testing.T) *layer.Agent {
	t.Helper()
	a := layer.NewAgent("l1", layer.DefaultProps("Layer 1"), types.Size{Width: 8, Height: 6}, 4, 0.8)
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			a.Buffer().SetPixel(types.Position{X: x, Y: y}, types.RGBA{R: uint8(x * 30), G: uint8(y * 40), B: 7, A: 255})
		}
	}
	a.Grid().ScanUniformity()
	return a
}

func countEvents(m *event.Manager) *[2]int {
	var n [2]int
	m.Subscribe(event.TypeBufferUpdate, func(e event.Event) bool {
		if e.Data.(event.BufferUpdateData).OnlyDirty {
			panic("effect update must not be dirty-only")
		}
		n[0]++
		return false
	})
	m.Subscribe(event.TypePreviewUpdate, func(event.Event) bool { n[1]++; return false })
	return &n
}

func TestInvertTwiceUndoesToOriginal(t *testing.T) {
	agent := newAgent(t)
	orig := agent.Snapshot()
	rec := &recorder{}
	events := event.NewManager()
	n := countEvents(events)
	ap := NewApplier(imgproc.NewNative(), rec, events)

	for i := 0; i < 2; i++ {
		if _, err := ap.Apply(context.Background(), agent, imgproc.Invert, imgproc.Params{}); err != nil {
			t.Fatal(err)
		}
	}
	if len(rec.actions) != 2 {
		t.Fatalf("recorded %d actions, want 2", len(rec.actions))
	}
	if !bytes.Equal(agent.Snapshot(), orig) {
		t.Error("invert twice is not the original")
	}
	if *n != [2]int{2, 2} {
		t.Errorf("events = %v, want [2 2]", *n)
	}
	for _, a := range rec.actions {
		if a.Kind != history.KindLayerBufferPatch || a.Patch.Shape() != "whole" {
			t.Fatalf("action %v has shape %s", a, a.Patch.Shape())
		}
	}

	// Undo the second inversion only.
	if err := agent.ApplyPatch(rec.actions[1].Patch, true); err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(agent.Snapshot(), orig) {
		t.Error("undoing one inversion restored the original")
	}
	if err := agent.ApplyPatch(rec.actions[0].Patch, true); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(agent.Snapshot(), orig) {
		t.Error("undoing both inversions did not restore the original")
	}
}

func TestFailureLeavesBufferAlone(t *testing.T) {
	for _, proc := range []imgproc.Processor{failing{}, shrinking{}} {
		agent := newAgent(t)
		orig := agent.Snapshot()
		rec := &recorder{}
		events := event.NewManager()
		n := countEvents(events)

		if _, err := NewApplier(proc, rec, events).Apply(context.Background(), agent, imgproc.Blur, imgproc.Params{}); err == nil {
			t.Fatalf("%T: expected error", proc)
		}
		if !bytes.Equal(agent.Snapshot(), orig) {
			t.Errorf("%T: buffer changed", proc)
		}
		if len(rec.actions) != 0 || *n != [2]int{} {
			t.Errorf("%T: actions=%d events=%v", proc, len(rec.actions), *n)
		}
		if err := agent.TryAcquire(); err != nil {
			t.Errorf("%T: layer still held: %v", proc, err)
		} else {
			agent.Release()
		}
	}
}

func TestApplyWaitsForLayer(t *testing.T) {
	agent := newAgent(t)
	if err := agent.TryAcquire(); err != nil {
		t.Fatal(err)
	}
	defer agent.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := &recorder{}
	if _, err := NewApplier(imgproc.NewNative(), rec, nil).Apply(ctx, agent, imgproc.Invert, imgproc.Params{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(rec.actions) != 0 {
		t.Error("action recorded while layer was held")
	}
}

// offThread runs the transform on its own goroutine and notes whether the
// recorder had already been called while it worked.
type offThread struct {
	rec           *recorder
	recordedEarly bool
}

func (o *offThread) Process(ctx context.Context, kind imgproc.Kind, src []byte, w, h int, p imgproc.Params) ([]byte, error) {
	type result struct {
		out []byte
		err error
	}
	done := make(chan result)
	go func() {
		out, err := imgproc.NewNative().Process(ctx, kind, src, w, h, p)
		done <- result{out, err}
	}()
	r := <-done
	o.recordedEarly = len(o.rec.actions) > 0
	return r.out, r.err
}

func TestApplyRecordsAfterProcessingCompletes(t *testing.T) {
	agent := newAgent(t)
	rec := &recorder{}
	proc := &offThread{rec: rec}
	events := event.NewManager()
	n := countEvents(events)

	a, err := NewApplier(proc, rec, events).Apply(context.Background(), agent, imgproc.Invert, imgproc.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if proc.recordedEarly {
		t.Error("action recorded before the transform finished")
	}
	if len(rec.actions) != 1 || rec.actions[0] != a {
		t.Fatalf("recorded %d actions when Apply returned", len(rec.actions))
	}
	if *n != [2]int{1, 1} {
		t.Errorf("events when Apply returned = %v, want [1 1]", *n)
	}
	if err := agent.TryAcquire(); err != nil {
		t.Fatalf("layer still held: %v", err)
	}
	agent.Release()
}

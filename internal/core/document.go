// Package core wires layers, selection, history, moves and effects into a
// Document, the single editing session the rest of the program talks to.
//
// A Document is driven from one interaction goroutine. Per-layer locks
// guard buffers against effects that run off that goroutine.
package core

import (
	"errors"
	"fmt"

	"github.com/bethropolis/pixl/internal/config"
	"github.com/bethropolis/pixl/internal/core/clipboard"
	"github.com/bethropolis/pixl/internal/core/effect"
	"github.com/bethropolis/pixl/internal/core/fill"
	"github.com/bethropolis/pixl/internal/core/floating"
	"github.com/bethropolis/pixl/internal/core/history"
	"github.com/bethropolis/pixl/internal/core/selection"
	"github.com/bethropolis/pixl/internal/event"
	"github.com/bethropolis/pixl/internal/imagepool"
	"github.com/bethropolis/pixl/internal/imgproc"
	"github.com/bethropolis/pixl/internal/layer"
	"github.com/bethropolis/pixl/internal/logger"
	"github.com/bethropolis/pixl/internal/tile"
	"github.com/bethropolis/pixl/internal/types"
)

var (
	// ErrGestureActive is returned when an operation needs the layer while a
	// stroke or move on this document still holds it.
	ErrGestureActive = errors.New("a gesture is in progress")
	// ErrNoStroke is returned by stroke operations outside BeginStroke/EndStroke.
	ErrNoStroke = errors.New("no stroke in progress")
	// ErrInvalidSize is returned for non-positive canvas sizes.
	ErrInvalidSize = errors.New("invalid canvas size")
	// ErrInvalidTileSize is returned for tile sizes above tile.MaxSize.
	ErrInvalidTileSize = errors.New("invalid tile size")
	// ErrLastLayer is returned when deleting the only layer.
	ErrLastLayer = errors.New("cannot delete the last layer")
)

// Options configure a new Document.
type Options struct {
	Size            types.Size
	TileSize        int
	WholePatchRatio float64
	HistoryMaxItems int
	FillTolerance   uint8
	FillMode        fill.Mode
	Primary         types.RGBA
	Secondary       types.RGBA
	// Processor runs effects; nil selects the built-in one.
	Processor imgproc.Processor
}

// OptionsFromConfig maps a loaded configuration to document options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	mode, err := fill.ParseMode(cfg.Fill.Mode)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Size:            types.Size{Width: cfg.Canvas.Width, Height: cfg.Canvas.Height},
		TileSize:        cfg.Canvas.TileSize,
		WholePatchRatio: cfg.History.WholePatchRatio,
		HistoryMaxItems: cfg.History.MaxItems,
		FillTolerance:   uint8(cfg.Fill.Tolerance),
		FillMode:        mode,
		Primary:         cfg.PrimaryColor(),
		Secondary:       cfg.SecondaryColor(),
	}, nil
}

// Document is one editing session.
type Document struct {
	opts    Options
	size    types.Size
	events  *event.Manager
	layers  *layer.Registry
	pool    *imagepool.Pool
	sel     *selection.Manager
	moves   *floating.Manager
	clip    *clipboard.Manager
	history *history.Controller
	effects *effect.Applier

	primary   types.RGBA
	secondary types.RGBA

	// Active stroke state; stroke is nil between gestures.
	stroke      *layer.Agent
	strokeLimit selection.LimitMode
	strokeLabel string
}

// New creates a document with one transparent layer. events may be nil.
func New(opts Options, events *event.Manager) (*Document, error) {
	if opts.Size.Width <= 0 || opts.Size.Height <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSize, opts.Size)
	}
	if opts.TileSize <= 0 {
		opts.TileSize = config.DefaultTileSize
	}
	if opts.TileSize > tile.MaxSize {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrInvalidTileSize, opts.TileSize, tile.MaxSize)
	}
	if opts.WholePatchRatio <= 0 {
		opts.WholePatchRatio = config.DefaultWholePatchRatio
	}
	if opts.Processor == nil {
		opts.Processor = imgproc.NewNative()
	}
	if events == nil {
		events = event.NewManager()
	}

	d := &Document{
		opts:      opts,
		size:      opts.Size,
		events:    events,
		layers:    layer.NewRegistry(),
		pool:      imagepool.New(),
		sel:       selection.NewManager(opts.Size, events),
		moves:     floating.NewManager(),
		clip:      clipboard.NewManager(),
		primary:   opts.Primary,
		secondary: opts.Secondary,
	}
	d.history = history.NewController(d, events, opts.HistoryMaxItems)
	d.effects = effect.NewApplier(opts.Processor, d.history, events)

	first := d.newAgent(layer.NewID(), layer.DefaultProps("Layer 1"))
	d.layers.Insert(first, 0)
	if err := d.layers.SetActive(first.ID); err != nil {
		return nil, err
	}
	logger.Debugf("Document: created %v canvas, tile size %d", d.size, opts.TileSize)
	return d, nil
}

func (d *Document) newAgent(id string, props layer.Props) *layer.Agent {
	return layer.NewAgent(id, props, d.size, d.opts.TileSize, d.opts.WholePatchRatio)
}

// GetEventManager returns the document's event bus.
func (d *Document) GetEventManager() *event.Manager { return d.events }

// History returns the undo/redo controller.
func (d *Document) History() *history.Controller { return d.history }

// Selection returns the selection manager.
func (d *Document) Selection() *selection.Manager { return d.sel }

// Layers returns the layer registry. Callers must not mutate it directly.
func (d *Document) Layers() *layer.Registry { return d.layers }

// ImagePool returns the reference image pool.
func (d *Document) ImagePool() *imagepool.Pool { return d.pool }

// Size returns the canvas size.
func (d *Document) Size() types.Size { return d.size }

// Colors returns the primary and secondary palette colors.
func (d *Document) Colors() (primary, secondary types.RGBA) { return d.primary, d.secondary }

// FillDefaults returns the configured fill tolerance and mode.
func (d *Document) FillDefaults() (uint8, fill.Mode) { return d.opts.FillTolerance, d.opts.FillMode }

// ActiveLayer returns the layer edits go to.
func (d *Document) ActiveLayer() (*layer.Agent, error) { return d.layers.Active() }

// SetActiveLayer selects the layer edits go to.
func (d *Document) SetActiveLayer(id string) error {
	if d.busy() {
		return ErrGestureActive
	}
	return d.layers.SetActive(id)
}

// busy reports whether a stroke or move holds a layer.
func (d *Document) busy() bool {
	return d.stroke != nil || d.moves.IsMoving()
}

// acquire takes the active layer for a gesture without blocking.
func (d *Document) acquire() (*layer.Agent, error) {
	if d.busy() {
		return nil, ErrGestureActive
	}
	agent, err := d.layers.Active()
	if err != nil {
		return nil, err
	}
	if err := agent.TryAcquire(); err != nil {
		return nil, fmt.Errorf("layer %s: %w", agent.ID, err)
	}
	return agent, nil
}

// Undo reverts the last action. During a floating move it cancels the move
// instead and leaves the history alone.
func (d *Document) Undo() (bool, error) {
	if d.moves.IsMoving() {
		return true, d.CancelMove()
	}
	if d.stroke != nil {
		return false, ErrGestureActive
	}
	return d.history.Undo()
}

// Redo reapplies the last undone action.
func (d *Document) Redo() (bool, error) {
	if d.busy() {
		return false, ErrGestureActive
	}
	return d.history.Redo()
}

func (d *Document) bufferUpdated(id string, onlyDirty bool, context string) {
	d.events.Dispatch(event.TypeBufferUpdate, event.BufferUpdateData{LayerID: id, OnlyDirty: onlyDirty, Context: context})
	d.events.Dispatch(event.TypePreviewUpdate, event.PreviewUpdateData{LayerID: id})
}

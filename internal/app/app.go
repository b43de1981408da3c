// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/bethropolis/pixl/internal/config"
	"github.com/bethropolis/pixl/internal/core"
	"github.com/bethropolis/pixl/internal/event"
	"github.com/bethropolis/pixl/internal/logger"
	"github.com/bethropolis/pixl/internal/palette"
	"github.com/bethropolis/pixl/internal/script"
)

// Options select what a run does besides building the document.
type Options struct {
	ConfigPath string // file reloaded in watch mode; may be empty
	Script     string
	Output     string
	Flatten    bool
	Watch      bool
	// Flags are re-applied on every config reload.
	Flags *config.Flags
}

// App owns one document session and the script/export pipeline around it.
type App struct {
	cfg    *config.Config
	opts   Options
	events *event.Manager
	doc      *core.Document
	palettes *palette.Manager
	status   *Status
}

// NewApp creates an application with a fresh document built from cfg.
func NewApp(cfg *config.Config, opts Options) (*App, error) {
	a := &App{
		cfg:    cfg,
		opts:   opts,
		events: event.NewManager(),
	}
	a.status = newStatus(a.events)
	if err := a.reset(); err != nil {
		return nil, err
	}
	return a, nil
}

// Document returns the current document.
func (a *App) Document() *core.Document { return a.doc }

// Status returns the running summary of document events.
func (a *App) Status() *Status { return a.status }

// reset replaces the document with an empty one built from the config and
// reloads the swatch palettes.
func (a *App) reset() error {
	a.palettes = palette.NewManager(a.cfg.Palette.Dir)
	if err := a.palettes.SetPalette(a.cfg.Palette.Name); err != nil {
		logger.Warnf("App: %v, keeping %s", err, a.palettes.Current().Name)
	}

	opts, err := core.OptionsFromConfig(a.cfg)
	if err != nil {
		return fmt.Errorf("document options: %w", err)
	}
	doc, err := core.New(opts, a.events)
	if err != nil {
		return fmt.Errorf("creating document: %w", err)
	}
	a.doc = doc
	a.status.reset(doc)
	return nil
}

// Run executes the script and export once, then, in watch mode, again on
// every change to the config or script file until ctx is done.
func (a *App) Run(ctx context.Context) error {
	err := a.runOnce(ctx)
	if !a.opts.Watch {
		return err
	}
	if err != nil {
		logger.Errorf("App: run failed: %v", err)
	}
	return a.watch(ctx)
}

func (a *App) runOnce(ctx context.Context) error {
	if a.opts.Script != "" {
		if err := script.NewRunner(a.doc).SetPalettes(a.palettes).RunFile(ctx, a.opts.Script); err != nil {
			return err
		}
	}
	if a.opts.Output != "" {
		if err := a.doc.ExportFile(a.opts.Output, a.opts.Flatten); err != nil {
			return err
		}
	}
	logger.Infof("App: %s", a.status)
	return nil
}

func (a *App) watch(ctx context.Context) error {
	var files []string
	if a.opts.ConfigPath != "" {
		files = append(files, a.opts.ConfigPath)
	}
	if a.opts.Script != "" {
		files = append(files, a.opts.Script)
	}
	if len(files) == 0 {
		return errors.New("watch mode needs a config or script file")
	}

	logger.Infof("App: watching %v", files)
	return config.Watch(ctx, files, func(path string) {
		if err := a.reload(ctx, path); err != nil {
			logger.Errorf("App: reload after change to %s failed: %v", path, err)
		}
	})
}

// reload re-reads the config when it changed, rebuilds the document and
// runs the pipeline again.
func (a *App) reload(ctx context.Context, path string) error {
	if a.opts.ConfigPath != "" && sameFile(path, a.opts.ConfigPath) {
		cfg, err := config.Load(a.opts.ConfigPath, a.opts.Flags)
		if err != nil {
			return err
		}
		a.cfg = cfg
		a.events.Dispatch(event.TypeConfigReloaded, event.ConfigReloadedData{Path: path})
	}
	if err := a.reset(); err != nil {
		return err
	}
	return a.runOnce(ctx)
}

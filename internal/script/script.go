// Package script runs tengo edit scripts against a Document. Scripts see
// the document through a `pixl` object:
//
//	pixl.begin_stroke()
//	pixl.line(0, 0, 7, 7, "#ff0000")
//	pixl.end_stroke()
//	pixl.effect("dither", {levels: 4})
package script

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bethropolis/pixl/internal/core"
	"github.com/bethropolis/pixl/internal/logger"
	"github.com/bethropolis/pixl/internal/palette"
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// Runner executes scripts against one document.
type Runner struct {
	doc      *core.Document
	palettes *palette.Manager
}

// NewRunner binds a runner to doc. Scripts get the built-in palettes
// unless SetPalettes supplies a loaded manager.
func NewRunner(doc *core.Document) *Runner {
	return &Runner{doc: doc, palettes: palette.NewManager("")}
}

// SetPalettes replaces the palettes scripts can pick swatches from.
func (r *Runner) SetPalettes(m *palette.Manager) *Runner {
	if m != nil {
		r.palettes = m
	}
	return r
}

// Run compiles and runs src. Any error raised by a binding aborts the
// script; edits made before it stay in the document's history.
func (r *Runner) Run(ctx context.Context, name string, src []byte) error {
	s := tengo.NewScript(src)
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	if err := s.Add("pixl", r.bindings(ctx)); err != nil {
		return fmt.Errorf("binding script '%s': %w", name, err)
	}

	compiled, err := s.Compile()
	if err != nil {
		return fmt.Errorf("compiling script '%s': %w", name, err)
	}

	start := time.Now()
	if err := compiled.RunContext(ctx); err != nil {
		return fmt.Errorf("running script '%s': %w", name, err)
	}
	logger.DebugTagf("script", "script %s finished in %v", name, time.Since(start))
	return nil
}

// RunFile runs the script at path.
func (r *Runner) RunFile(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading script '%s': %w", path, err)
	}
	return r.Run(ctx, path, src)
}

package app

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/bethropolis/pixl/internal/core"
	"github.com/bethropolis/pixl/internal/event"
	"github.com/bethropolis/pixl/internal/logger"
	"github.com/bethropolis/pixl/internal/types"
)

// Status is a summary of the session kept current from document events.
type Status struct {
	mu        sync.Mutex
	size      types.Size
	layers    int
	canUndo   bool
	lastLabel string
	edits     int
	reloads   int
}

func newStatus(m *event.Manager) *Status {
	s := &Status{}
	m.Subscribe(event.TypeHistoryChanged, s.handleHistoryChanged)
	m.Subscribe(event.TypeLayerListChanged, s.handleLayerListChanged)
	m.Subscribe(event.TypeCanvasSizeChanged, s.handleCanvasSizeChanged)
	m.Subscribe(event.TypeConfigReloaded, s.handleConfigReloaded)
	return s
}

// reset points the summary at a new document.
func (s *Status) reset(doc *core.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.size = doc.Size()
	s.layers = doc.Layers().Len()
	s.canUndo, s.lastLabel, s.edits = false, "", 0
}

func (s *Status) handleHistoryChanged(e event.Event) bool {
	if data, ok := e.Data.(event.HistoryChangedData); ok {
		s.mu.Lock()
		s.canUndo, s.lastLabel = data.CanUndo, data.LastLabel
		s.edits++
		s.mu.Unlock()
	}
	return false // Not consumed
}

func (s *Status) handleLayerListChanged(e event.Event) bool {
	if data, ok := e.Data.(event.LayerListChangedData); ok {
		s.mu.Lock()
		s.layers = len(data.Order)
		s.mu.Unlock()
	}
	return false
}

func (s *Status) handleCanvasSizeChanged(e event.Event) bool {
	if data, ok := e.Data.(event.CanvasSizeChangedData); ok {
		s.mu.Lock()
		s.size = data.New
		s.mu.Unlock()
	}
	return false
}

func (s *Status) handleConfigReloaded(e event.Event) bool {
	if data, ok := e.Data.(event.ConfigReloadedData); ok {
		logger.Infof("App: config reloaded from %s", data.Path)
	}
	s.mu.Lock()
	s.reloads++
	s.mu.Unlock()
	return false
}

// Reloads returns how many times the config was reloaded.
func (s *Status) Reloads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloads
}

func (s *Status) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	last := "none"
	if s.canUndo && s.lastLabel != "" {
		last = s.lastLabel
	}
	return fmt.Sprintf("%v canvas, %d layer(s), %d history change(s), last edit: %s", s.size, s.layers, s.edits, last)
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

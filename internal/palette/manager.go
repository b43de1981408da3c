// internal/palette/manager.go
package palette

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/bethropolis/pixl/internal/logger"
)

// Manager holds loaded palettes and tracks the active one.
type Manager struct {
	palettes map[string]*Palette // lowercase name -> palette
	active   *Palette
	dir      string
	mutex    sync.RWMutex
}

// NewManager loads the built-in palettes plus every .toml file in dir
// (skipped when empty) and activates PICO-8.
func NewManager(dir string) *Manager {
	m := &Manager{
		palettes: make(map[string]*Palette),
		dir:      dir,
	}
	m.loadBuiltinPalettes()

	if dir != "" {
		if err := m.LoadPalettesFromDir(); err != nil {
			logger.Errorf("Error loading palettes from '%s': %v", dir, err)
		}
	}

	m.active = m.palettes[strings.ToLower(PICO8.Name)]
	return m
}

func (m *Manager) loadBuiltinPalettes() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, p := range []Palette{PICO8, GameBoy} {
		p.Colors = slices.Clone(p.Colors)
		m.palettes[strings.ToLower(p.Name)] = &p
		logger.Debugf("Loaded built-in palette: %s", p.Name)
	}
}

// LoadPalettesFromDir scans the palette directory and loads .toml files. A
// missing directory is not an error.
func (m *Manager) LoadPalettesFromDir() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, err := os.Stat(m.dir); os.IsNotExist(err) {
		logger.Infof("Palette directory '%s' does not exist. No custom palettes loaded.", m.dir)
		return nil
	}

	files, err := os.ReadDir(m.dir)
	if err != nil {
		return fmt.Errorf("failed to read palette directory '%s': %w", m.dir, err)
	}

	loadedCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(strings.ToLower(file.Name()), ".toml") {
			continue
		}
		filePath := filepath.Join(m.dir, file.Name())
		p, err := LoadPaletteFromFile(filePath)
		if err != nil {
			logger.Warnf("Failed to load palette from '%s': %v", filePath, err)
			continue // Skip problematic file
		}
		key := strings.ToLower(p.Name)
		if existing, ok := m.palettes[key]; ok {
			logger.Warnf("Palette '%s' from '%s' overrides existing palette '%s'", p.Name, filePath, existing.Name)
		}
		m.palettes[key] = p
		loadedCount++
	}
	logger.Infof("Loaded %d custom palettes.", loadedCount)
	return nil
}

// Current returns the active palette.
func (m *Manager) Current() *Palette {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.active
}

// SetPalette activates a palette by name (case-insensitive).
func (m *Manager) SetPalette(name string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	p, ok := m.palettes[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("palette '%s' not found", name)
	}
	if m.active != p {
		m.active = p
		logger.Infof("Active palette set to: %s", p.Name)
	}
	return nil
}

// ListPalettes returns the names of all loaded palettes, sorted.
func (m *Manager) ListPalettes() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	names := make([]string, 0, len(m.palettes))
	for _, p := range m.palettes {
		names = append(names, p.Name) // Return original case name
	}
	slices.Sort(names)
	return names
}

// GetPalette returns a palette by name (case-insensitive).
func (m *Manager) GetPalette(name string) (*Palette, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	p, ok := m.palettes[strings.ToLower(name)]
	return p, ok
}

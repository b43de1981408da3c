// internal/palette/loader.go
package palette

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bethropolis/pixl/internal/logger"
	"github.com/bethropolis/pixl/internal/types"
)

// TomlPalette represents the structure of a palette file:
//
//	name = "Sunset"
//	colors = ["#ff7e5f", "#feb47b"]
type TomlPalette struct {
	Name   string   `toml:"name"`
	Colors []string `toml:"colors"`
}

// LoadPaletteFromFile parses a TOML file and converts it to a Palette.
func LoadPaletteFromFile(filePath string) (*Palette, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read palette file '%s': %w", filePath, err)
	}

	var tp TomlPalette
	metadata, err := toml.Decode(string(data), &tp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML palette file '%s': %w", filePath, err)
	}
	if len(metadata.Undecoded()) > 0 {
		logger.Warnf("Palette '%s': Unrecognized keys in file '%s': %v", tp.Name, filePath, metadata.Undecoded())
	}

	if tp.Name == "" {
		// Use filename as fallback name if not specified
		tp.Name = strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
		logger.Debugf("Palette file '%s' missing 'name', using filename '%s'", filePath, tp.Name)
	}
	if len(tp.Colors) == 0 {
		return nil, fmt.Errorf("palette '%s' in '%s' has no colors", tp.Name, filePath)
	}

	p := &Palette{Name: tp.Name, Colors: make([]types.RGBA, 0, len(tp.Colors))}
	for i, h := range tp.Colors {
		c, err := types.ParseHex(h)
		if err != nil {
			return nil, fmt.Errorf("palette '%s': color %d: %w", tp.Name, i, err)
		}
		p.Colors = append(p.Colors, c)
	}

	logger.Debugf("Successfully loaded palette '%s' (%d colors) from '%s'", p.Name, len(p.Colors), filePath)
	return p, nil
}

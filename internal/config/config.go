// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bethropolis/pixl/internal/logger"
	"github.com/bethropolis/pixl/internal/types"
	"gopkg.in/yaml.v3"
)

// Config holds the application's combined configuration.
type Config struct {
	Logger  logger.Config `toml:"logger" yaml:"logger"`
	Canvas  CanvasConfig  `toml:"canvas" yaml:"canvas"`
	History HistoryConfig `toml:"history" yaml:"history"`
	Fill    FillConfig    `toml:"fill" yaml:"fill"`
	Palette PaletteConfig `toml:"palette" yaml:"palette"`
}

// CanvasConfig describes the initial document.
type CanvasConfig struct {
	Width    int `toml:"width" yaml:"width"`
	Height   int `toml:"height" yaml:"height"`
	TileSize int `toml:"tile_size" yaml:"tile_size"`
}

// HistoryConfig bounds the undo stack and the patch promotion policy.
type HistoryConfig struct {
	MaxItems        int     `toml:"max_items" yaml:"max_items"`
	WholePatchRatio float64 `toml:"whole_patch_ratio" yaml:"whole_patch_ratio"`
}

// FillConfig holds bucket-fill defaults.
type FillConfig struct {
	Tolerance int    `toml:"tolerance" yaml:"tolerance"`
	Mode      string `toml:"mode" yaml:"mode"` // ignore | selection-bounded | area
}

// PaletteConfig holds the initial primary/secondary colors as hex strings
// and the swatch palette scripts pick from.
type PaletteConfig struct {
	Primary   string `toml:"primary" yaml:"primary"`
	Secondary string `toml:"secondary" yaml:"secondary"`
	Name      string `toml:"name" yaml:"name"`
	Dir       string `toml:"dir" yaml:"dir"` // extra .toml palettes; default ~/.config/pixl/palettes
}

// FillModes lists the accepted Fill.Mode values.
var FillModes = []string{"ignore", "selection-bounded", "area"}

// NewDefaultConfig creates a Config struct with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Logger: logger.NewConfig(),
		Canvas: CanvasConfig{
			Width:    DefaultCanvasWidth,
			Height:   DefaultCanvasHeight,
			TileSize: DefaultTileSize,
		},
		History: HistoryConfig{
			MaxItems:        DefaultHistoryMaxItems,
			WholePatchRatio: DefaultWholePatchRatio,
		},
		Fill: FillConfig{
			Tolerance: DefaultFillTolerance,
			Mode:      DefaultFillMode,
		},
		Palette: PaletteConfig{
			Primary:   DefaultPrimaryColor,
			Secondary: DefaultSecondaryColor,
			Name:      DefaultPaletteName,
			Dir:       DefaultPaletteDir(),
		},
	}
}

// DefaultPath returns ~/.config/pixl/config.toml, or "" when the user
// config dir cannot be determined.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, AppName, DefaultConfigFileName)
}

// DefaultPaletteDir returns ~/.config/pixl/palettes, or "" when the user
// config dir cannot be determined.
func DefaultPaletteDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, AppName, PaletteDirName)
}

// decodeFile overlays the file's values onto cfg. The format is chosen by
// extension: .yaml/.yml use YAML, everything else TOML. A missing file is
// not an error.
func decodeFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		logger.Debugf("Config file not found: %s", filePath)
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading config file '%s': %w", filePath, err)
	}

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
		}
	default:
		metadata, err := toml.Decode(string(data), cfg)
		if err != nil {
			return fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
		}
		if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
			logger.Warnf("Config file '%s': Unrecognized keys: %v", filePath, undecoded)
		}
	}
	logger.Debugf("Loaded configuration from: %s", filePath)
	return nil
}

// validate checks config values and resets invalid ones to defaults.
func (c *Config) validate() {
	defaults := NewDefaultConfig()

	if c.Canvas.Width <= 0 {
		c.Canvas.Width = defaults.Canvas.Width
	}
	if c.Canvas.Height <= 0 {
		c.Canvas.Height = defaults.Canvas.Height
	}
	if c.Canvas.TileSize <= 0 || c.Canvas.TileSize > MaxTileSize {
		logger.Warnf("config: tile_size %d out of range 1..%d, using %d", c.Canvas.TileSize, MaxTileSize, defaults.Canvas.TileSize)
		c.Canvas.TileSize = defaults.Canvas.TileSize
	}

	if c.History.MaxItems <= 0 {
		c.History.MaxItems = defaults.History.MaxItems
	}
	if c.History.WholePatchRatio <= 0 || c.History.WholePatchRatio > 1 {
		c.History.WholePatchRatio = defaults.History.WholePatchRatio
	}

	if c.Fill.Tolerance < 0 || c.Fill.Tolerance > 255 {
		c.Fill.Tolerance = defaults.Fill.Tolerance
	}
	validMode := false
	for _, m := range FillModes {
		if c.Fill.Mode == m {
			validMode = true
			break
		}
	}
	if !validMode {
		c.Fill.Mode = defaults.Fill.Mode
	}

	if _, err := types.ParseHex(c.Palette.Primary); err != nil {
		c.Palette.Primary = defaults.Palette.Primary
	}
	if _, err := types.ParseHex(c.Palette.Secondary); err != nil {
		c.Palette.Secondary = defaults.Palette.Secondary
	}
	if c.Palette.Name == "" {
		c.Palette.Name = defaults.Palette.Name
	}

	if c.Logger.LogLevel == "" {
		c.Logger.LogLevel = defaults.Logger.LogLevel
	}
}

// Load builds a Config from defaults, the file at configFilePath (or the
// default location when empty), flag overrides, and validation. A file
// error is returned alongside a usable config built from the other layers.
func Load(configFilePath string, flags *Flags) (*Config, error) {
	cfg := NewDefaultConfig()

	effectivePath := configFilePath
	if effectivePath == "" {
		effectivePath = DefaultPath()
	}

	var loadErr error
	if effectivePath != "" {
		fileCfg := NewDefaultConfig()
		if err := decodeFile(effectivePath, fileCfg); err != nil {
			loadErr = err
		} else {
			cfg = fileCfg
		}
	}

	if flags != nil {
		flags.ApplyOverrides(cfg)
	}

	cfg.validate()
	return cfg, loadErr
}

// PrimaryColor returns the parsed primary palette color.
func (c *Config) PrimaryColor() types.RGBA {
	col, err := types.ParseHex(c.Palette.Primary)
	if err != nil {
		return types.RGBA{A: 255}
	}
	return col
}

// SecondaryColor returns the parsed secondary palette color.
func (c *Config) SecondaryColor() types.RGBA {
	col, err := types.ParseHex(c.Palette.Secondary)
	if err != nil {
		return types.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return col
}

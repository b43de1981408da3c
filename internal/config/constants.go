package config

import (
	"time"

	"github.com/bethropolis/pixl/internal/tile"
)

// Base application details
const AppName = "pixl"
const DefaultConfigFileName = "config.toml"
const DefaultLogFileName = "pixl.log"

// Canvas
const DefaultCanvasWidth = 64
const DefaultCanvasHeight = 64
const DefaultTileSize = 32

// MaxTileSize keeps tile-local pixel indices within uint16.
const MaxTileSize = tile.MaxSize

// History
const DefaultHistoryMaxItems = 128

// DefaultWholePatchRatio is the share of canvas pixels a gesture may touch
// before it is recorded as a whole-buffer snapshot instead of pixel lists.
const DefaultWholePatchRatio = 0.8

// Fill
const DefaultFillTolerance = 0
const DefaultFillMode = "ignore"

// Palette
const DefaultPrimaryColor = "#000000"
const DefaultSecondaryColor = "#ffffff"
const DefaultPaletteName = "PICO-8"
const PaletteDirName = "palettes"

// WatchDebounce coalesces bursts of file events (editors often write twice).
const WatchDebounce = 100 * time.Millisecond

// Version is reported by -version.
const Version = "0.1.0"

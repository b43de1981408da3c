// internal/config/flags.go
package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/bethropolis/pixl/internal/logger"
)

// Flags holds values parsed from command-line flags.
// Pointers distinguish unset flags from zero values.
type Flags struct {
	fs *flag.FlagSet

	ConfigFilePath *string
	Version        *bool
	Watch          *bool
	Script         *string
	Output         *string
	Flatten        *bool

	LogLevel     *string
	LogFilePath  *string
	EnableTags   *string
	DisableTags  *string
	EnablePkgs   *string
	DisablePkgs  *string
	EnableFiles  *string
	DisableFiles *string

	Width     *int
	Height    *int
	TileSize  *int
	Tolerance *int
	FillMode  *string
	Primary   *string
	Secondary *string
	Palette   *string
}

// DefineFlags registers the flags on fs (flag.CommandLine when nil).
func (f *Flags) DefineFlags(fs *flag.FlagSet) {
	if fs == nil {
		fs = flag.CommandLine
	}
	f.fs = fs
	f.ConfigFilePath = fs.String("config", "", fmt.Sprintf("Path to TOML or YAML configuration file (default ~/.config/%s/%s)", AppName, DefaultConfigFileName))
	f.Version = fs.Bool("version", false, "Show version information and exit")
	f.Watch = fs.Bool("watch", false, "Re-run the script whenever the config or script file changes")
	f.Script = fs.String("script", "", "Path to a tengo edit script")
	f.Output = fs.String("o", "", "Export path (.png, .bmp, .tif)")
	f.Flatten = fs.Bool("flatten", false, "Export all visible layers flattened instead of the active layer")

	f.LogLevel = fs.String("loglevel", "", "Log level (debug, info, warn, error) - Overrides config file")
	f.LogFilePath = fs.String("logfile", "", "Path to write log file (use '-' for stderr) - Overrides config file")
	f.EnableTags = fs.String("log-tags", "", "Comma-separated list of tags to enable - Overrides config file")
	f.DisableTags = fs.String("log-disable-tags", "", "Comma-separated list of tags to disable - Overrides config file")
	f.EnablePkgs = fs.String("log-packages", "", "Comma-separated list of packages to enable - Overrides config file")
	f.DisablePkgs = fs.String("log-disable-packages", "", "Comma-separated list of packages to disable - Overrides config file")
	f.EnableFiles = fs.String("log-files", "", "Comma-separated list of files to enable - Overrides config file")
	f.DisableFiles = fs.String("log-disable-files", "", "Comma-separated list of files to disable - Overrides config file")

	f.Width = fs.Int("width", 0, "Canvas width - Overrides config file")
	f.Height = fs.Int("height", 0, "Canvas height - Overrides config file")
	f.TileSize = fs.Int("tilesize", 0, "Tile size in pixels - Overrides config file")
	f.Tolerance = fs.Int("tolerance", -1, "Fill tolerance 0..255 - Overrides config file")
	f.FillMode = fs.String("fillmode", "", "Fill mode (ignore, selection-bounded, area) - Overrides config file")
	f.Primary = fs.String("primary", "", "Primary color as hex - Overrides config file")
	f.Secondary = fs.String("secondary", "", "Secondary color as hex - Overrides config file")
	f.Palette = fs.String("palette", "", "Swatch palette name - Overrides config file")
}

// ParseFlags defines and parses flags from args, returning the remaining
// non-flag arguments.
func (f *Flags) ParseFlags(fs *flag.FlagSet, args []string) ([]string, error) {
	f.DefineFlags(fs)
	if err := f.fs.Parse(args); err != nil {
		return nil, err
	}
	return f.fs.Args(), nil
}

// ApplyOverrides updates cfg with values from flags *if* they were set.
func (f *Flags) ApplyOverrides(cfg *Config) {
	if f.fs == nil {
		return
	}
	// Visit only processes flags that were actually set
	f.fs.Visit(func(fl *flag.Flag) {
		logger.DebugTagf("config", "Applying flag override: %s", fl.Name)
		switch fl.Name {
		case "loglevel":
			if *f.LogLevel != "" {
				cfg.Logger.LogLevel = *f.LogLevel
			}
		case "logfile":
			cfg.Logger.LogFilePath = *f.LogFilePath
		case "log-tags":
			cfg.Logger.EnabledTags = splitCommaList(*f.EnableTags)
		case "log-disable-tags":
			cfg.Logger.DisabledTags = splitCommaList(*f.DisableTags)
		case "log-packages":
			cfg.Logger.EnabledPackages = splitCommaList(*f.EnablePkgs)
		case "log-disable-packages":
			cfg.Logger.DisabledPackages = splitCommaList(*f.DisablePkgs)
		case "log-files":
			cfg.Logger.EnabledFiles = splitCommaList(*f.EnableFiles)
		case "log-disable-files":
			cfg.Logger.DisabledFiles = splitCommaList(*f.DisableFiles)
		case "width":
			if *f.Width > 0 {
				cfg.Canvas.Width = *f.Width
			}
		case "height":
			if *f.Height > 0 {
				cfg.Canvas.Height = *f.Height
			}
		case "tilesize":
			if *f.TileSize > 0 {
				cfg.Canvas.TileSize = *f.TileSize
			}
		case "tolerance":
			if *f.Tolerance >= 0 {
				cfg.Fill.Tolerance = *f.Tolerance
			}
		case "fillmode":
			if *f.FillMode != "" {
				cfg.Fill.Mode = *f.FillMode
			}
		case "primary":
			if *f.Primary != "" {
				cfg.Palette.Primary = *f.Primary
			}
		case "secondary":
			if *f.Secondary != "" {
				cfg.Palette.Secondary = *f.Secondary
			}
		case "palette":
			if *f.Palette != "" {
				cfg.Palette.Name = *f.Palette
			}
		}
	})
}

func splitCommaList(list string) []string {
	if list == "" {
		return nil
	}
	items := strings.Split(list, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

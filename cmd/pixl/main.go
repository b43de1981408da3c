// cmd/pixl/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	stlog "log" // Use standard log for FATAL errors before logger is ready
	"os"
	"os/signal"
	"syscall"

	"github.com/bethropolis/pixl/internal/app"
	"github.com/bethropolis/pixl/internal/config"
	"github.com/bethropolis/pixl/internal/logger"
)

func main() {
	// --- Argument & Flag Parsing ---
	flags := &config.Flags{}
	args, err := flags.ParseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		stlog.Fatalf("Failed to parse flags: %v", err)
	}
	if *flags.Version {
		fmt.Printf("%s %s\n", config.AppName, config.Version)
		os.Exit(0)
	}

	// --- Configuration ---
	cfg, err := config.Load(*flags.ConfigFilePath, flags)
	if err != nil {
		// Keep going with defaults + flags
		stlog.Printf("Warning: %v", err)
	}

	// --- Logger Initialization ---
	if err := logger.Init(cfg.Logger, os.Stderr); err != nil {
		stlog.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	// Allow specifying the script as first non-flag argument
	scriptPath := *flags.Script
	if scriptPath == "" && len(args) > 0 {
		scriptPath = args[0]
	}

	// Only an existing default config is worth watching
	configPath := *flags.ConfigFilePath
	if configPath == "" {
		if p := config.DefaultPath(); p != "" {
			if _, err := os.Stat(p); err == nil {
				configPath = p
			}
		}
	}

	logger.Infof("Starting %s %s...", config.AppName, config.Version)
	logger.Debugf("Canvas: %dx%d, tile size %d", cfg.Canvas.Width, cfg.Canvas.Height, cfg.Canvas.TileSize)
	if scriptPath != "" {
		logger.Debugf("Script specified: %s", scriptPath)
	} else {
		logger.Debugf("No script specified, starting with an empty canvas.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Create and Run App ---
	pixlApp, err := app.NewApp(cfg, app.Options{
		ConfigPath: configPath,
		Script:     scriptPath,
		Output:     *flags.Output,
		Flatten:    *flags.Flatten,
		Watch:      *flags.Watch,
		Flags:      flags,
	})
	if err != nil {
		logger.Errorf("Error initializing application: %v", err)
		os.Exit(1)
	}

	if err := pixlApp.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Errorf("Application exited with error: %v", err)
		logger.Close()
		os.Exit(1)
	}

	logger.Infof("%s finished.", config.AppName)
}

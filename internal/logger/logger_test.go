package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"err", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitWritesAtConfiguredLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := NewConfig()
	cfg.LogLevel = "warn"
	if err := Init(cfg, &buf); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer Close()

	Infof("hidden %d", 1)
	Warnf("visible %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden 1") {
		t.Errorf("info message logged at warn level: %q", out)
	}
	if !strings.Contains(out, "visible 2") {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestTagFiltering(t *testing.T) {
	var buf bytes.Buffer
	cfg := NewConfig()
	cfg.LogLevel = "debug"
	cfg.DisabledTags = []string{"Fill"}
	if err := Init(cfg, &buf); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer Close()

	DebugTagf("fill", "tile bfs")
	DebugTagf("history", "undo")

	out := buf.String()
	if strings.Contains(out, "tile bfs") {
		t.Errorf("disabled tag was logged: %q", out)
	}
	if !strings.Contains(out, "undo") {
		t.Errorf("enabled tag missing: %q", out)
	}
}

func TestPackageFiltering(t *testing.T) {
	var buf bytes.Buffer
	cfg := NewConfig()
	cfg.DisabledPackages = []string{"logger"}
	if err := Init(cfg, &buf); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer Close()

	Errorf("from the logger package")
	if buf.Len() != 0 {
		t.Errorf("disabled package was logged: %q", buf.String())
	}
}

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/nerrad567/hearth/internal/infrastructure/config"
)

func decodeEntry(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(b, &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, b)
	}
	return entry
}

func TestNew(t *testing.T) {
	for _, cfg := range []config.LoggingConfig{
		{Level: "info", Format: "json", Output: "stdout"},
		{Level: "debug", Format: "text", Output: "stderr"},
		{},
	} {
		if New(cfg, "1.0.0") == nil {
			t.Errorf("New(%+v) = nil", cfg)
		}
	}
	if Default() == nil {
		t.Error("Default() = nil")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{"Error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewWithWriter_DefaultFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(config.LoggingConfig{Level: "info", Format: "json"}, "0.3.1", &buf)

	log.Info("fan ramp started", "target", "HIGH")

	entry := decodeEntry(t, buf.Bytes())
	want := map[string]any{
		"msg":     "fan ramp started",
		"service": ServiceName,
		"version": "0.3.1",
		"target":  "HIGH",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %v", k, entry[k], v)
		}
	}
}

func TestNewWithWriter_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(config.LoggingConfig{Format: "TEXT"}, "dev", &buf).Info("door locked")

	out := buf.String()
	if strings.HasPrefix(out, "{") {
		t.Fatalf("text format wrote JSON: %s", out)
	}
	if !strings.Contains(out, `msg="door locked"`) || !strings.Contains(out, "service=hearth") {
		t.Errorf("text line = %q", out)
	}
}

func TestNewWithWriter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(config.LoggingConfig{Level: "warn", Format: "text"}, "dev", &buf)

	log.Debug("tick")
	log.Info("dropped")
	log.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") || strings.Contains(out, "tick") {
		t.Errorf("entries below warn were written: %s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Error("warn entry missing")
	}
}

func TestLogger_Component(t *testing.T) {
	var buf bytes.Buffer
	root := NewWithWriter(config.LoggingConfig{Format: "json"}, "dev", &buf)

	actuatorLog := root.Component("actuator")
	if actuatorLog == root {
		t.Fatal("Component() returned the parent")
	}
	actuatorLog.Info("door attached")

	entry := decodeEntry(t, buf.Bytes())
	if entry["component"] != "actuator" {
		t.Errorf("component = %v, want actuator", entry["component"])
	}

	buf.Reset()
	root.Info("no component")
	if _, ok := decodeEntry(t, buf.Bytes())["component"]; ok {
		t.Error("parent logger picked up the child's component")
	}
}

func TestDiscard(t *testing.T) {
	log := Discard()
	log.Error("nothing to see")
	log.Component("x").With("k", 1).Warn("still nothing")
}

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cityguided.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "engine:\n  api_key: testkey\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Listen.Port != 5000 {
		t.Errorf("Listen.Port = %d, want 5000", cfg.Listen.Port)
	}
	if cfg.Engine.Model != "gemini-2.5-flash" {
		t.Errorf("Engine.Model = %q, want gemini-2.5-flash", cfg.Engine.Model)
	}
	if cfg.Engine.APIKey != "testkey" {
		t.Errorf("Engine.APIKey = %q, want testkey", cfg.Engine.APIKey)
	}
	if got := cfg.Media.Retention(); got != 300*time.Second {
		t.Errorf("Media.Retention() = %v, want 300s", got)
	}
	if got := cfg.Engine.Timeout(); got != 60*time.Second {
		t.Errorf("Engine.Timeout() = %v, want 60s", got)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SERPAPI_KEY", "from-env")
	path := writeConfig(t, "lookup:\n  api_key: from-file\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Lookup.APIKey != "from-env" {
		t.Errorf("Lookup.APIKey = %q, want env override", cfg.Lookup.APIKey)
	}
}

func TestFindConfigExplicitMissing(t *testing.T) {
	if _, err := FindConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("FindConfig() with missing explicit path should fail")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

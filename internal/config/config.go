// Package config handles cityguided configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./cityguided.yaml, ~/.config/cityguided/config.yaml,
// /etc/cityguided/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"cityguided.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "cityguided", "config.yaml"))
	}

	paths = append(paths, "/etc/cityguided/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Config holds all cityguided configuration.
type Config struct {
	Listen   ListenConfig   `yaml:"listen"`
	Engine   EngineConfig   `yaml:"engine"`
	Store    StoreConfig    `yaml:"store"`
	Lookup   LookupConfig   `yaml:"lookup"`
	Speech   SpeechConfig   `yaml:"speech"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Media    MediaConfig    `yaml:"media"`
	LogLevel string         `yaml:"log_level"`
}

// ListenConfig defines the webhook server settings.
type ListenConfig struct {
	Address string `yaml:"address"` // bind address ("" = all interfaces)
	Port    int    `yaml:"port"`
}

// EngineConfig defines the completion engine (Gemini) settings.
type EngineConfig struct {
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec"` // per-call bound, default 60
}

// Timeout returns the per-call completion bound.
func (c EngineConfig) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

// StoreConfig defines the user document store settings.
type StoreConfig struct {
	Path string `yaml:"path"` // SQLite database path
}

// LookupConfig defines the web lookup (SerpAPI) settings.
type LookupConfig struct {
	APIKey     string `yaml:"api_key"`
	TimeoutSec int    `yaml:"timeout_sec"` // default 15
}

// Timeout returns the per-query lookup bound.
func (c LookupConfig) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

// SpeechConfig defines text-to-speech settings.
type SpeechConfig struct {
	APIKey  string `yaml:"api_key"`
	VoiceID string `yaml:"voice_id"`
	ModelID string `yaml:"model_id"`
}

// GatewayConfig defines the outbound messaging gateway.
type GatewayConfig struct {
	URL        string `yaml:"url"`        // gateway REST base URL
	StreamURL  string `yaml:"stream_url"` // optional websocket event stream
	Account    string `yaml:"account"`    // account SID / username
	Token      string `yaml:"token"`      // auth token
	FromNumber string `yaml:"from_number"`
}

// Configured reports whether the gateway can deliver messages.
func (c GatewayConfig) Configured() bool {
	return c.URL != "" && c.FromNumber != ""
}

// MediaConfig defines temporary media file handling.
type MediaConfig struct {
	Dir          string `yaml:"dir"`           // directory for synthesized audio
	PublicURL    string `yaml:"public_url"`    // externally reachable base for /audio
	RetentionSec int    `yaml:"retention_sec"` // temp-file lifetime, default 300
}

// Retention returns the temp-media lifetime.
func (c MediaConfig) Retention() time.Duration {
	if c.RetentionSec <= 0 {
		return 300 * time.Second
	}
	return time.Duration(c.RetentionSec) * time.Second
}

// Load reads configuration from a YAML file. Environment variables in
// the file body are expanded before parsing, and well-known secret
// variables override their config fields afterwards so keys never have
// to live on disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// Default returns a configuration with working defaults for everything
// that has a sensible one. Secrets have no default.
func Default() *Config {
	return &Config{
		Listen: ListenConfig{Port: 5000},
		Engine: EngineConfig{Model: "gemini-2.5-flash"},
		Store:  StoreConfig{Path: "cityguided.db"},
		Speech: SpeechConfig{
			VoiceID: "JBFqnCBsd6RMkjVDRZzb",
			ModelID: "eleven_turbo_v2_5",
		},
		Media: MediaConfig{Dir: "media"},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Engine.APIKey = v
	}
	if v := os.Getenv("SERPAPI_KEY"); v != "" {
		cfg.Lookup.APIKey = v
	}
	if v := os.Getenv("ELEVENLABS_API_KEY"); v != "" {
		cfg.Speech.APIKey = v
	}
	if v := os.Getenv("GATEWAY_ACCOUNT_SID"); v != "" {
		cfg.Gateway.Account = v
	}
	if v := os.Getenv("GATEWAY_AUTH_TOKEN"); v != "" {
		cfg.Gateway.Token = v
	}
}

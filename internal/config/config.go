// Package config loads hivemind configuration from .hivemind/config.json
// in the workspace, applies environment overrides, and supplies defaults
// matching a local Ollama + Weaviate install.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hivemind/internal/logging"
)

// Config holds all hivemind configuration.
type Config struct {
	// Backend configures the inference backend.
	Backend BackendConfig `json:"backend"`

	// Brain configures the knowledge store.
	Brain BrainConfig `json:"brain"`

	// Lab configures code execution.
	Lab LabConfig `json:"lab"`

	// WorkspaceDir is the scratch directory for script execution.
	WorkspaceDir string `json:"workspace_dir"`

	// ArchivePath is the SQLite session archive location. Empty disables
	// archiving.
	ArchivePath string `json:"archive_path"`

	// Streaming enables live streamed replies.
	Streaming bool `json:"streaming"`

	// Execute enables the code-execution bridge.
	Execute bool `json:"execute"`

	// Logging configures categorized debug logging.
	Logging logging.Config `json:"logging"`
}

// BackendConfig configures the Ollama backend.
type BackendConfig struct {
	BaseURL      string `json:"base_url"`
	DefaultModel string `json:"default_model"`
	Timeout      string `json:"timeout"`
}

// BrainConfig configures the Weaviate knowledge store.
type BrainConfig struct {
	BaseURL    string `json:"base_url"`
	Collection string `json:"collection"`
	TopK       int    `json:"top_k"`
	Timeout    string `json:"timeout"`
}

// LabConfig configures snippet execution.
type LabConfig struct {
	Interpreter    string `json:"interpreter"`
	Shell          string `json:"shell"`
	Timeout        string `json:"timeout"`
	MaxOutputBytes int64  `json:"max_output_bytes"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:      "http://localhost:11434",
			DefaultModel: "llama3",
			Timeout:      "10m",
		},
		Brain: BrainConfig{
			BaseURL:    "http://localhost:8080",
			Collection: "TheBrain",
			TopK:       5,
			Timeout:    "30s",
		},
		Lab: LabConfig{
			Interpreter:    "python3",
			Shell:          "sh",
			Timeout:        "2m",
			MaxOutputBytes: 256 * 1024,
		},
		WorkspaceDir: "the_wormhole",
		ArchivePath:  filepath.Join(".hivemind", "sessions.db"),
		Streaming:    true,
		Logging: logging.Config{
			Level: "info",
		},
	}
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	return filepath.Join(workspace, ".hivemind", "config.json")
}

// Load reads configuration for a workspace, returning defaults when the
// file does not exist. Environment overrides apply last.
func Load(workspace string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes configuration to the workspace config file.
func (c *Config) Save(workspace string) error {
	path := Path(workspace)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("HIVEMIND_OLLAMA_URL"); url != "" {
		c.Backend.BaseURL = url
	}
	if model := os.Getenv("HIVEMIND_MODEL"); model != "" {
		c.Backend.DefaultModel = model
	}
	if url := os.Getenv("HIVEMIND_WEAVIATE_URL"); url != "" {
		c.Brain.BaseURL = url
	}
	if path := os.Getenv("HIVEMIND_DB"); path != "" {
		c.ArchivePath = path
	}
}

// ParseTimeout converts a config duration string, falling back when the
// string is empty or invalid.
func ParseTimeout(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

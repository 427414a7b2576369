package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Backend.BaseURL != "http://localhost:11434" {
		t.Errorf("Unexpected backend URL: %s", cfg.Backend.BaseURL)
	}
	if cfg.Brain.Collection != "TheBrain" {
		t.Errorf("Unexpected collection: %s", cfg.Brain.Collection)
	}
	if cfg.WorkspaceDir != "the_wormhole" {
		t.Errorf("Unexpected workspace dir: %s", cfg.WorkspaceDir)
	}
	if !cfg.Streaming {
		t.Error("Streaming should default on")
	}
	if cfg.Execute {
		t.Error("Execute should default off")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	workspace := t.TempDir()

	cfg := DefaultConfig()
	cfg.Backend.DefaultModel = "qwen2"
	cfg.Brain.TopK = 9
	cfg.Execute = true

	if err := cfg.Save(workspace); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(workspace)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Backend.DefaultModel != "qwen2" {
		t.Errorf("Unexpected model: %s", loaded.Backend.DefaultModel)
	}
	if loaded.Brain.TopK != 9 {
		t.Errorf("Unexpected topK: %d", loaded.Brain.TopK)
	}
	if !loaded.Execute {
		t.Error("Execute flag lost in round trip")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HIVEMIND_OLLAMA_URL", "http://gpu-box:11434")
	t.Setenv("HIVEMIND_MODEL", "llama3:70b")
	t.Setenv("HIVEMIND_WEAVIATE_URL", "http://gpu-box:8080")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend.BaseURL != "http://gpu-box:11434" {
		t.Errorf("Ollama URL override not applied: %s", cfg.Backend.BaseURL)
	}
	if cfg.Backend.DefaultModel != "llama3:70b" {
		t.Errorf("Model override not applied: %s", cfg.Backend.DefaultModel)
	}
	if cfg.Brain.BaseURL != "http://gpu-box:8080" {
		t.Errorf("Weaviate URL override not applied: %s", cfg.Brain.BaseURL)
	}
}

func TestLoadMalformedConfig(t *testing.T) {
	workspace := t.TempDir()
	path := Path(workspace)
	os.MkdirAll(filepath.Dir(path), 0o755)
	os.WriteFile(path, []byte("{broken"), 0o644)

	if _, err := Load(workspace); err == nil {
		t.Fatal("Expected error for malformed config")
	}
}

func TestParseTimeout(t *testing.T) {
	if got := ParseTimeout("90s", time.Minute); got != 90*time.Second {
		t.Errorf("Expected 90s, got %v", got)
	}
	if got := ParseTimeout("", time.Minute); got != time.Minute {
		t.Errorf("Expected fallback, got %v", got)
	}
	if got := ParseTimeout("not-a-duration", time.Minute); got != time.Minute {
		t.Errorf("Expected fallback for invalid value, got %v", got)
	}
}

func TestLoadSwarm(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swarm.yaml")
	manifest := `drones:
  - name: Echo
    model: llama3
    persona: You repeat things.
  - name: Scout
    model: mistral
    options:
      temperature: 0.2
`
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}

	swarm, err := LoadSwarm(path)
	if err != nil {
		t.Fatalf("LoadSwarm failed: %v", err)
	}
	if len(swarm.Drones) != 2 {
		t.Fatalf("Expected 2 drones, got %d", len(swarm.Drones))
	}
	if swarm.Drones[0].Name != "Echo" || swarm.Drones[0].Persona != "You repeat things." {
		t.Errorf("Drone 0 mismatch: %+v", swarm.Drones[0])
	}
	if swarm.Drones[1].Options["temperature"] != 0.2 {
		t.Errorf("Drone 1 options mismatch: %+v", swarm.Drones[1].Options)
	}
}

func TestLoadSwarmValidation(t *testing.T) {
	dir := t.TempDir()

	noName := filepath.Join(dir, "noname.yaml")
	os.WriteFile(noName, []byte("drones:\n  - model: llama3\n"), 0o644)
	if _, err := LoadSwarm(noName); err == nil {
		t.Error("Expected error for drone without name")
	}

	noModel := filepath.Join(dir, "nomodel.yaml")
	os.WriteFile(noModel, []byte("drones:\n  - name: Echo\n"), 0o644)
	if _, err := LoadSwarm(noModel); err == nil {
		t.Error("Expected error for drone without model")
	}
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DroneSpec declares one drone in a swarm manifest.
type DroneSpec struct {
	Name    string         `yaml:"name"`
	Model   string         `yaml:"model"`
	Persona string         `yaml:"persona"`
	Options map[string]any `yaml:"options"`
}

// SwarmManifest declares a set of drones to register at startup.
type SwarmManifest struct {
	Drones []DroneSpec `yaml:"drones"`
}

// LoadSwarm reads a swarm manifest from a YAML file.
func LoadSwarm(path string) (*SwarmManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read swarm manifest: %w", err)
	}

	var manifest SwarmManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse swarm manifest: %w", err)
	}

	for i, spec := range manifest.Drones {
		if spec.Name == "" {
			return nil, fmt.Errorf("swarm manifest drone %d has no name", i)
		}
		if spec.Model == "" {
			return nil, fmt.Errorf("drone %q has no model", spec.Name)
		}
	}
	return &manifest, nil
}

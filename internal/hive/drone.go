package hive

import (
	"fmt"
	"strings"

	"hivemind/internal/logging"
)

// Reserved speaker labels. Host is the human operator; BrainName labels
// synthetic context turns injected from the knowledge store.
const (
	HostName  = "Host"
	BrainName = "TheBrain"
)

// defaultPersona is assigned to drones registered without one.
const defaultPersona = "You are a helpful assistant."

// reservedFragments are substrings no drone name may contain. The check is
// deliberately a substring match, not an exact match: "HostBot" and
// "Brainiac" are rejected too, so transcripts can never be confused with
// the reserved speakers.
var reservedFragments = []string{"Host", "Brain"}

// Drone is a named agent configuration: which model answers for it, the
// persona framing its replies, and backend-opaque generation options.
// Drones are immutable after registration.
type Drone struct {
	Name    string         `json:"name"`
	Model   string         `json:"model"`
	Persona string         `json:"persona"`
	Options map[string]any `json:"options,omitempty"`
}

// DroneInfo is the (name, model) pair reported by Directory.List.
type DroneInfo struct {
	Name  string
	Model string
}

// Directory holds the drones registered in a session, preserving
// registration order for listing.
type Directory struct {
	drones map[string]Drone
	order  []string
}

// NewDirectory creates an empty drone directory.
func NewDirectory() *Directory {
	return &Directory{drones: make(map[string]Drone)}
}

// Register adds a drone under a unique, non-reserved name. A failed
// registration never mutates the directory.
func (d *Directory) Register(name, model, persona string, options map[string]any) error {
	if name == "" {
		return ErrEmptyName
	}
	if _, exists := d.drones[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateDrone, name)
	}
	for _, fragment := range reservedFragments {
		if strings.Contains(name, fragment) {
			return fmt.Errorf("%w: %s", ErrReservedName, name)
		}
	}

	if persona == "" {
		persona = defaultPersona
	}
	if options == nil {
		options = map[string]any{}
	}

	d.drones[name] = Drone{Name: name, Model: model, Persona: persona, Options: options}
	d.order = append(d.order, name)

	logging.SessionDebug("Registered drone %q (model=%s, options=%d)", name, model, len(options))
	return nil
}

// Get returns the drone registered under name.
func (d *Directory) Get(name string) (Drone, bool) {
	drone, ok := d.drones[name]
	return drone, ok
}

// List returns (name, model) pairs in registration order.
func (d *Directory) List() []DroneInfo {
	infos := make([]DroneInfo, 0, len(d.order))
	for _, name := range d.order {
		infos = append(infos, DroneInfo{Name: name, Model: d.drones[name].Model})
	}
	return infos
}

// Len returns the number of registered drones.
func (d *Directory) Len() int {
	return len(d.order)
}

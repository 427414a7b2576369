package hive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"hivemind/internal/logging"
)

// sessionRecord is the durable projection of session state. No derived or
// cached data is persisted; unknown extra fields in a stored record are
// ignored on load.
type sessionRecord struct {
	ID      string           `json:"id"`
	Mode    string           `json:"mode"`
	Execute bool             `json:"execute"`
	Drones  map[string]Drone `json:"drones"`
	History []Turn           `json:"history"`
}

// Save serializes the session to a JSON file, creating parent directories
// as needed.
func (s *Session) Save(path string) error {
	record := sessionRecord{
		ID:      s.ID,
		Mode:    s.Mode,
		Execute: s.Execute,
		Drones:  make(map[string]Drone, s.Directory.Len()),
		History: s.Log.Turns(),
	}
	for _, info := range s.Directory.List() {
		drone, _ := s.Directory.Get(info.Name)
		record.Drones[info.Name] = drone
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create session directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	logging.Session("Session %s saved to %s (%d drones, %d turns)",
		s.ID, path, s.Directory.Len(), s.Log.Len())
	return nil
}

// Load restores a session from a JSON file. Restore is all-or-nothing: a
// malformed record fails without returning a partial session. Missing
// fields take defaults — a fresh id, moderated mode, execution disabled.
// Collaborator options apply as in New.
func Load(path string, opts ...Option) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var record sessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("malformed session record: %w", err)
	}

	s, err := New(opts...)
	if err != nil {
		return nil, err
	}

	if record.ID != "" {
		s.ID = record.ID
	} else {
		s.ID = uuid.NewString()
	}
	if record.Mode != "" {
		s.Mode = record.Mode
	} else {
		s.Mode = ModeModerated
	}
	s.Execute = record.Execute

	// JSON objects carry no order; restore the swarm sorted by name so a
	// restored directory lists deterministically.
	names := make([]string, 0, len(record.Drones))
	for name := range record.Drones {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		drone := record.Drones[name]
		s.Directory.drones[name] = drone
		s.Directory.order = append(s.Directory.order, name)
	}

	for _, turn := range record.History {
		s.Log.Append(turn.Name, turn.Content)
	}

	logging.Session("Session %s restored from %s (%d drones, %d turns)",
		s.ID, path, s.Directory.Len(), s.Log.Len())
	return s, nil
}

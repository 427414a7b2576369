package hive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestSession(t, WithMode("freeform"), WithExecute(true), WithStreaming(false), WithBackend(&fakeBackend{reply: "hi"}))
	require.NoError(t, s.Directory.Register("Echo", "llama3", "You echo.", map[string]any{"temperature": 0.1}))
	require.NoError(t, s.Directory.Register("Scout", "mistral", "", nil))

	_, err := s.Ask(context.Background(), "@Echo hello")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, s.Save(path))

	restored, err := Load(path, WithWorkspaceDir(t.TempDir()))
	require.NoError(t, err)

	assert.Equal(t, s.ID, restored.ID)
	assert.Equal(t, "freeform", restored.Mode)
	assert.True(t, restored.Execute)
	assert.Equal(t, s.Log.Turns(), restored.Log.Turns())

	echo, ok := restored.Directory.Get("Echo")
	require.True(t, ok)
	assert.Equal(t, "You echo.", echo.Persona)
	scout, ok := restored.Directory.Get("Scout")
	require.True(t, ok)
	assert.Equal(t, defaultPersona, scout.Persona)
	assert.Equal(t, 2, restored.Directory.Len())
}

func TestLoadMalformedRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path, WithWorkspaceDir(t.TempDir()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed session record")
}

func TestLoadMissingFieldsTakeDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minimal.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	s, err := Load(path, WithWorkspaceDir(t.TempDir()))
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, ModeModerated, s.Mode)
	assert.False(t, s.Execute)
	assert.Equal(t, 0, s.Directory.Len())
	assert.Equal(t, 0, s.Log.Len())
}

func TestLoadIgnoresUnknownFields(t *testing.T) {
	record := `{"id":"abc","mode":"moderated","unknown_field":true,"history":[{"name":"Host","content":"hi"}]}`
	path := filepath.Join(t.TempDir(), "extra.json")
	require.NoError(t, os.WriteFile(path, []byte(record), 0o644))

	s, err := Load(path, WithWorkspaceDir(t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, "abc", s.ID)
	require.Equal(t, 1, s.Log.Len())
}

func TestLoadRestoresDronesSorted(t *testing.T) {
	record := `{"drones":{"Zed":{"name":"Zed","model":"m"},"Alice":{"name":"Alice","model":"m"}}}`
	path := filepath.Join(t.TempDir(), "drones.json")
	require.NoError(t, os.WriteFile(path, []byte(record), 0o644))

	s, err := Load(path, WithWorkspaceDir(t.TempDir()))
	require.NoError(t, err)

	infos := s.Directory.List()
	require.Len(t, infos, 2)
	assert.Equal(t, "Alice", infos[0].Name)
	assert.Equal(t, "Zed", infos[1].Name)
}

func TestSaveCreatesParentDirectories(t *testing.T) {
	s := newTestSession(t)
	path := filepath.Join(t.TempDir(), "deep", "nested", "session.json")
	require.NoError(t, s.Save(path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

package hive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routerDirectory(t *testing.T) *Directory {
	t.Helper()
	dir := NewDirectory()
	require.NoError(t, dir.Register("Echo", "llama3", "", nil))
	require.NoError(t, dir.Register("Scout_2", "mistral", "", nil))
	return dir
}

func TestResolveAddress(t *testing.T) {
	dir := routerDirectory(t)

	tests := []struct {
		name    string
		message string
		want    string
		wantErr error
	}{
		{"simple", "@Echo what do you think?", "Echo", nil},
		{"mid-message", "so, @Echo, thoughts?", "Echo", nil},
		{"underscore and digit", "@Scout_2 report in", "Scout_2", nil},
		{"first of several", "@Echo agree with @Scout_2?", "Echo", nil},
		{"punctuation ends the name", "@Echo: hello", "Echo", nil},
		{"no address", "anyone awake?", "", ErrNoAddress},
		{"bare at sign", "meet @ noon", "", ErrNoAddress},
		{"bare at sign then address", "meet @ noon, @Echo", "Echo", nil},
		{"unknown drone", "@Ghost hello", "", ErrUnknownDrone},
		{"unknown first shadows known second", "@Ghost ask @Echo", "", ErrUnknownDrone},
		{"empty message", "", "", ErrNoAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveAddress(tt.message, dir)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

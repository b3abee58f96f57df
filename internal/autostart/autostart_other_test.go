//go:build !windows

package autostart

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXDGEntry(t *testing.T) {
	if runtime.GOOS == "darwin" {
		t.Skip("no XDG autostart on darwin")
	}
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	e, err := New("/opt/audio switch/audioswitchd", []string{"--verbose"}, nil)
	require.NoError(t, err)

	path, err := e.Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(configHome, "autostart", "audioswitchd.desktop"), path)

	require.NoError(t, e.Enable())
	enabled, err := e.IsEnabled()
	require.NoError(t, err)
	assert.True(t, enabled)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[Desktop Entry]\n")
	assert.Contains(t, string(data), `Exec="/opt/audio switch/audioswitchd" --verbose`)

	require.NoError(t, e.Disable())
	enabled, err = e.IsEnabled()
	require.NoError(t, err)
	assert.False(t, enabled)
}

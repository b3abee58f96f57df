package autostart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandLine(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"empty", nil, ""},
		{"plain", []string{"--verbose"}, "--verbose"},
		{"spaces", []string{`C:\Program Files\audioswitchd.exe`, "-v"}, `"C:\Program Files\audioswitchd.exe" -v`},
		{"quotes", []string{`say "hi"`}, `"say \"hi\""`},
		{"empty arg", []string{""}, `""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, commandLine(tt.args))
		})
	}
}

func TestNew_DefaultsToExecutable(t *testing.T) {
	e, err := New("", nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, e.Exec)
	assert.Equal(t, Name, e.Name)
}

func TestDisable_Missing(t *testing.T) {
	e, err := New("/usr/bin/audioswitchd", nil, nil)
	require.NoError(t, err)
	e.dir = t.TempDir()

	enabled, err := e.IsEnabled()
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.NoError(t, e.Disable())
}

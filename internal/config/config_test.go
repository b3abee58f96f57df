package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/hotkey"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/platform"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/rotation"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, hotkey.PresetMediaPlayPause, cfg.Hotkey.Preset)
	assert.Equal(t, "Ctrl+Alt+F12", cfg.Hotkey.Custom)
	assert.Equal(t, "refresh", cfg.Reconcile.OnAdded)
	assert.Equal(t, "refresh", cfg.Reconcile.OnRemoved)
	assert.Equal(t, []string{"console", "multimedia"}, cfg.Audio.Roles)
	assert.Equal(t, "auto", cfg.Audio.Backend)
	assert.True(t, cfg.Announce.Enabled)
	assert.Equal(t, time.Second, cfg.Announce.MinInterval.Duration())
	assert.False(t, cfg.Chime.Enabled)
	assert.Equal(t, 60, cfg.Chime.Volume)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, 500, cfg.History.Keep)
	assert.False(t, cfg.Startup.Autostart)
	assert.Equal(t, "info", cfg.Log.Level)

	require.NoError(t, cfg.Validate())
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[hotkey]
preset = "custom"
custom = "Ctrl+Shift+F9"

[reconcile]
on_added = "ignore"

[audio]
roles = ["multimedia", "communications"]

[announce]
method = "log"
min_interval = "250ms"

[chime]
enabled = true
volume = 30
file = "~/sounds/ding.wav"

[history]
keep = 50

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "custom", cfg.Hotkey.Preset)
	h, err := cfg.ResolveHotkey()
	require.NoError(t, err)
	assert.Equal(t, "Ctrl+Shift+F9", h.String())

	policy, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, rotation.Policy{OnAdded: rotation.ActionIgnore, OnRemoved: rotation.ActionRefresh}, policy)

	assert.Equal(t, []platform.Role{platform.RoleMultimedia, platform.RoleCommunications}, cfg.Roles())
	assert.Equal(t, "auto", cfg.Audio.Backend) // Default preserved
	assert.Equal(t, "log", cfg.Announce.Method)
	assert.Equal(t, 250*time.Millisecond, cfg.Announce.MinInterval.Duration())
	assert.True(t, cfg.Announce.Enabled) // Default preserved
	assert.True(t, cfg.Chime.Enabled)
	assert.Equal(t, 30, cfg.Chime.Volume)
	assert.Equal(t, 50, cfg.History.Keep)
	assert.Equal(t, "debug", cfg.Log.Level)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "sounds", "ding.wav"), cfg.ChimeFile())
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("this is not [valid toml"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "defaults", modify: func(c *Config) {}},
		{name: "pause break preset", modify: func(c *Config) { c.Hotkey.Preset = hotkey.PresetPauseBreak }},
		{name: "unknown preset", modify: func(c *Config) { c.Hotkey.Preset = "scroll_wheel" }, wantErr: true},
		{name: "bad custom hotkey", modify: func(c *Config) {
			c.Hotkey.Preset = hotkey.PresetCustom
			c.Hotkey.Custom = "Ctrl+Nope"
		}, wantErr: true},
		{name: "bad custom ignored for preset", modify: func(c *Config) { c.Hotkey.Custom = "Ctrl+Nope" }},
		{name: "restart policy", modify: func(c *Config) { c.Reconcile.OnRemoved = "restart" }, wantErr: true},
		{name: "unknown role", modify: func(c *Config) { c.Audio.Roles = []string{"speakers"} }, wantErr: true},
		{name: "empty roles", modify: func(c *Config) { c.Audio.Roles = nil }},
		{name: "unknown backend", modify: func(c *Config) { c.Audio.Backend = "pulse" }, wantErr: true},
		{name: "unknown announce method", modify: func(c *Config) { c.Announce.Method = "email" }, wantErr: true},
		{name: "negative interval", modify: func(c *Config) { c.Announce.MinInterval = Duration(-time.Second) }, wantErr: true},
		{name: "volume too high", modify: func(c *Config) { c.Chime.Volume = 101 }, wantErr: true},
		{name: "volume negative", modify: func(c *Config) { c.Chime.Volume = -1 }, wantErr: true},
		{name: "negative keep", modify: func(c *Config) { c.History.Keep = -5 }, wantErr: true},
		{name: "unknown log level", modify: func(c *Config) { c.Log.Level = "trace" }, wantErr: true},
		{name: "uppercase log level", modify: func(c *Config) { c.Log.Level = "WARN" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "config.toml")

	cfg := DefaultConfig()
	cfg.Hotkey.Preset = hotkey.PresetPauseBreak
	cfg.Startup.Autostart = true

	require.NoError(t, cfg.Save(path))

	_, err := os.Stat(path)
	require.NoError(t, err)
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, hotkey.PresetPauseBreak, loaded.Hotkey.Preset)
	assert.True(t, loaded.Startup.Autostart)
	assert.Equal(t, cfg.Announce.MinInterval, loaded.Announce.MinInterval)
}

func TestConfigPath(t *testing.T) {
	if runtime.GOOS == "darwin" {
		t.Skip("os.UserConfigDir ignores XDG_CONFIG_HOME on macOS")
	}
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	t.Setenv("APPDATA", "/custom/config")

	path, err := ConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/custom/config", "audioswitch", "config.toml"), path)
}

func TestDataPath(t *testing.T) {
	t.Run("with XDG_DATA_HOME", func(t *testing.T) {
		t.Setenv("XDG_DATA_HOME", "/custom/data")
		assert.Equal(t, filepath.Join("/custom/data", "audioswitch"), DataPath())
	})

	t.Run("history path", func(t *testing.T) {
		t.Setenv("XDG_DATA_HOME", "/custom/data")
		assert.Equal(t, filepath.Join("/custom/data", "audioswitch", "history.jsonl"), HistoryPath())
	})
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"1s", time.Second, false},
		{"250ms", 250 * time.Millisecond, false},
		{"1500", 1500 * time.Millisecond, false},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration())
		})
	}
}

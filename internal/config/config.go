// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/hotkey"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/platform"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/rotation"
)

// AppName is used for config and data directory names.
const AppName = "audioswitch"

// Default configuration values.
const (
	DefaultHotkeyPreset   = hotkey.PresetMediaPlayPause
	DefaultCustomHotkey   = "Ctrl+Alt+F12"
	DefaultAnnounceMethod = "auto"
	DefaultMinInterval    = time.Second
	DefaultChimeVolume    = 60
	DefaultHistoryKeep    = 500
	DefaultLogLevel       = "info"
)

// Valid announce methods.
var announceMethods = []string{"auto", "dbus", "toast", "log"}

// Valid log levels.
var logLevels = []string{"debug", "info", "warn", "error"}

// Config represents the audioswitch configuration.
type Config struct {
	Hotkey    HotkeyConfig    `toml:"hotkey"`
	Reconcile ReconcileConfig `toml:"reconcile"`
	Audio     AudioConfig     `toml:"audio"`
	Announce  AnnounceConfig  `toml:"announce"`
	Chime     ChimeConfig     `toml:"chime"`
	History   HistoryConfig   `toml:"history"`
	Startup   StartupConfig   `toml:"startup"`
	Log       LogConfig       `toml:"log"`
}

// HotkeyConfig selects the global rotation hotkey.
type HotkeyConfig struct {
	Preset string `toml:"preset"` // media_play_pause, pause_break, custom
	Custom string `toml:"custom"` // e.g. "Ctrl+Alt+F12", used when preset = custom
}

// ReconcileConfig sets how hotplug notifications are handled.
type ReconcileConfig struct {
	OnAdded   string `toml:"on_added"`   // refresh, ignore
	OnRemoved string `toml:"on_removed"` // refresh, ignore
}

// AudioConfig contains platform backend settings.
type AudioConfig struct {
	Roles   []string `toml:"roles"`   // console, multimedia, communications
	Backend string   `toml:"backend"` // auto, wca, malgo
}

// AnnounceConfig controls desktop notifications on switch.
type AnnounceConfig struct {
	Enabled     bool     `toml:"enabled"`
	Method      string   `toml:"method"`       // auto, dbus, toast, log
	MinInterval Duration `toml:"min_interval"` // Per-key rate limit
}

// ChimeConfig controls the confirmation sound.
type ChimeConfig struct {
	Enabled bool   `toml:"enabled"`
	Volume  int    `toml:"volume"` // 0-100
	File    string `toml:"file"`   // Empty = built-in tone
}

// HistoryConfig controls the switch log.
type HistoryConfig struct {
	Enabled bool `toml:"enabled"`
	Keep    int  `toml:"keep"` // Max events kept (0 = unlimited)
}

// StartupConfig controls launching at login.
type StartupConfig struct {
	Autostart bool `toml:"autostart"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Hotkey: HotkeyConfig{
			Preset: DefaultHotkeyPreset,
			Custom: DefaultCustomHotkey,
		},
		Reconcile: ReconcileConfig{
			OnAdded:   string(rotation.ActionRefresh),
			OnRemoved: string(rotation.ActionRefresh),
		},
		Audio: AudioConfig{
			Roles:   []string{platform.RoleConsole.String(), platform.RoleMultimedia.String()},
			Backend: platform.BackendAuto,
		},
		Announce: AnnounceConfig{
			Enabled:     true,
			Method:      DefaultAnnounceMethod,
			MinInterval: Duration(DefaultMinInterval),
		},
		Chime: ChimeConfig{
			Enabled: false,
			Volume:  DefaultChimeVolume,
		},
		History: HistoryConfig{
			Enabled: true,
			Keep:    DefaultHistoryKeep,
		},
		Startup: StartupConfig{
			Autostart: false,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName, "config.toml"), nil
}

// DataPath returns the path to the data directory.
// Uses XDG_DATA_HOME if set, LOCALAPPDATA on Windows, otherwise ~/.local/share.
func DataPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" && runtime.GOOS == "windows" {
		dataHome = os.Getenv("LOCALAPPDATA")
	}
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, AppName)
}

// HistoryPath returns the path to the switch history JSONL file.
func HistoryPath() string {
	return filepath.Join(DataPath(), "history.jsonl")
}

// Load loads configuration from path, or the default path when empty.
// Returns the default config if the file doesn't exist.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse overlays TOML data onto the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to path, or the default path when empty.
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.ResolveHotkey(); err != nil {
		return fmt.Errorf("invalid hotkey: %w", err)
	}

	if _, err := c.Policy(); err != nil {
		return err
	}

	if _, err := platform.ParseRoles(c.Audio.Roles); err != nil {
		return err
	}

	switch c.Audio.Backend {
	case platform.BackendAuto, platform.BackendWCA, platform.BackendMalgo:
	default:
		return fmt.Errorf("invalid audio backend %q, must be one of: auto, wca, malgo", c.Audio.Backend)
	}

	if !contains(announceMethods, c.Announce.Method) {
		return fmt.Errorf("invalid announce method %q, must be one of: %v", c.Announce.Method, announceMethods)
	}
	if c.Announce.MinInterval < 0 {
		return fmt.Errorf("min_interval cannot be negative")
	}

	if c.Chime.Volume < 0 || c.Chime.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Chime.Volume)
	}

	if c.History.Keep < 0 {
		return fmt.Errorf("history keep cannot be negative, got %d", c.History.Keep)
	}

	if !contains(logLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("invalid log level %q, must be one of: %v", c.Log.Level, logLevels)
	}

	return nil
}

// ResolveHotkey returns the configured hotkey.
func (c *Config) ResolveHotkey() (hotkey.Hotkey, error) {
	return hotkey.Resolve(c.Hotkey.Preset, c.Hotkey.Custom)
}

// Policy returns the reconciliation policy.
func (c *Config) Policy() (rotation.Policy, error) {
	added, err := rotation.ParseAction(c.Reconcile.OnAdded)
	if err != nil {
		return rotation.Policy{}, fmt.Errorf("on_added: %w", err)
	}
	removed, err := rotation.ParseAction(c.Reconcile.OnRemoved)
	if err != nil {
		return rotation.Policy{}, fmt.Errorf("on_removed: %w", err)
	}
	return rotation.Policy{OnAdded: added, OnRemoved: removed}, nil
}

// Roles returns the parsed audio roles.
func (c *Config) Roles() []platform.Role {
	roles, err := platform.ParseRoles(c.Audio.Roles)
	if err != nil {
		return platform.DefaultRoles
	}
	return roles
}

// ChimeFile returns the chime path with ~ expanded.
func (c *Config) ChimeFile() string {
	return expandPath(c.Chime.File)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

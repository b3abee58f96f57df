package audio

import (
	"log/slog"
	"sync"
)

// ChimeSettings configures a Chime.
type ChimeSettings struct {
	Enabled bool
	Volume  int    // 0-100
	File    string // Empty = built-in tone
}

// Chime plays a confirmation sound after a successful switch.
type Chime struct {
	mu       sync.RWMutex
	playMu   sync.Mutex
	logger   *slog.Logger
	player   *Player
	settings ChimeSettings
}

// NewChime creates a Chime.
func NewChime(settings ChimeSettings, logger *slog.Logger) *Chime {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Chime{
		logger: logger,
		player: NewPlayer(logger),
	}
	c.Apply(settings)
	return c
}

// Apply replaces the settings and drops cached sounds.
func (c *Chime) Apply(settings ChimeSettings) {
	c.mu.Lock()
	c.settings = settings
	c.mu.Unlock()

	c.player.SetVolume(float64(settings.Volume) / 100.0)
	c.player.ClearCache()
	c.logger.Debug("chime configured", "enabled", settings.Enabled, "volume", settings.Volume, "file", settings.File)
}

// Settings returns the current settings.
func (c *Chime) Settings() ChimeSettings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// Play plays the chime if enabled. The speaker is reopened first so the
// chime comes out of the device that just became the default.
func (c *Chime) Play() error {
	s := c.Settings()
	if !s.Enabled {
		return nil
	}

	c.playMu.Lock()
	defer c.playMu.Unlock()

	c.player.Reopen()
	if s.File == "" {
		return c.player.PlayTone()
	}
	return c.player.Play(s.File)
}

// Close releases the speaker.
func (c *Chime) Close() {
	c.player.Close()
}

package daemon

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/notify"
)

// DefaultMinInterval is the default time between notices sharing a key.
const DefaultMinInterval = time.Second

// Announcer sends user-facing notices about switches and daemon events.
// Notices sharing a key are rate-limited, except switch notices: the latest
// device must always be shown.
type Announcer struct {
	mu     sync.Mutex
	logger *slog.Logger

	notifier notify.Notifier

	// Rate limiting
	lastNotifyTime map[string]time.Time
	minInterval    time.Duration
	now            func() time.Time

	enabled bool
}

// NewAnnouncer creates an Announcer delivering through n.
func NewAnnouncer(n notify.Notifier, logger *slog.Logger) *Announcer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Announcer{
		logger:         logger,
		notifier:       n,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    DefaultMinInterval,
		now:            time.Now,
		enabled:        true,
	}
}

// SetNotifier replaces the delivery backend, closing the previous one.
func (a *Announcer) SetNotifier(n notify.Notifier) {
	a.mu.Lock()
	old := a.notifier
	a.notifier = n
	a.mu.Unlock()

	if old != nil && old != n {
		if err := old.Close(); err != nil {
			a.logger.Debug("failed to close notifier", "error", err)
		}
	}
}

// SetEnabled enables or disables notices. Errors are still logged when disabled.
func (a *Announcer) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// Enabled reports whether notices are sent.
func (a *Announcer) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// SetMinInterval sets the minimum interval between notices with the same key.
func (a *Announcer) SetMinInterval(interval time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.minInterval = interval
}

// Notify sends a notice unless disabled or rate-limited.
// It reports whether the notice was handed to the notifier.
func (a *Announcer) Notify(key, summary, body string, level notify.Level) bool {
	return a.send(key, summary, body, level, true)
}

func (a *Announcer) send(key, summary, body string, level notify.Level, limited bool) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.enabled {
		return false
	}

	if a.notifier == nil {
		a.logger.Debug("notice skipped: no notifier", "summary", summary)
		return false
	}

	now := a.now()
	if last, ok := a.lastNotifyTime[key]; limited && ok && now.Sub(last) < a.minInterval {
		a.logger.Debug("notice rate-limited", "key", key, "summary", summary)
		return false
	}
	a.lastNotifyTime[key] = now

	a.logger.Debug("sending notice", "key", key, "summary", summary, "level", level)

	msg := notify.Message{Summary: summary, Body: body, Level: level}
	if err := a.notifier.Send(msg); err != nil {
		a.logger.Warn("failed to send notice", "summary", summary, "error", err)
		return false
	}
	return true
}

// NotifySwitched announces the device that now receives playback. It is not
// rate-limited, so the last notice always names the current device.
func (a *Announcer) NotifySwitched(name string) bool {
	return a.send(
		"switch",
		"Audio Output",
		"Now playing on "+name,
		notify.LevelInfo,
		false,
	)
}

// NotifyNoDevices announces that no output device is available.
func (a *Announcer) NotifyNoDevices() bool {
	return a.Notify(
		"no-devices",
		"Audio Output",
		"No audio device available",
		notify.LevelWarning,
	)
}

// NotifyError announces a failed operation.
func (a *Announcer) NotifyError(summary string, err error) bool {
	a.logger.Warn(summary, "error", err)
	return a.Notify(
		"error:"+summary,
		summary,
		err.Error(),
		notify.LevelError,
	)
}

// NotifyConfigReloaded sends a notification about config being reloaded.
func (a *Announcer) NotifyConfigReloaded() bool {
	return a.Notify(
		"config-reload",
		"Configuration Reloaded",
		"audioswitch configuration has been reloaded.",
		notify.LevelInfo,
	)
}

// NotifyConfigError sends a notification about config validation error.
func (a *Announcer) NotifyConfigError(err error) bool {
	return a.Notify(
		"config-error",
		"Configuration Error",
		"Failed to reload configuration: "+err.Error(),
		notify.LevelWarning,
	)
}

// Close closes the underlying notifier.
func (a *Announcer) Close() error {
	a.mu.Lock()
	n := a.notifier
	a.notifier = nil
	a.mu.Unlock()

	if n == nil {
		return nil
	}
	return n.Close()
}

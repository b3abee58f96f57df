//go:build !windows

package tray

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/hotkey"
)

// Tray is headless outside Windows. It keeps the last tooltip and menu so
// status can still be logged, and RegisterHotkey reports ErrUnsupported.
type Tray struct {
	logger  *slog.Logger
	handler Handler

	mu      sync.Mutex
	tooltip string
	menu    MenuState

	readyCh chan struct{}
}

// New creates a headless Tray.
func New(h Handler, logger *slog.Logger) *Tray {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tray{
		logger:  logger,
		handler: h,
		readyCh: make(chan struct{}),
	}
}

// Ready is closed once Run has started.
func (t *Tray) Ready() <-chan struct{} {
	return t.readyCh
}

// Run blocks until ctx is cancelled.
func (t *Tray) Run(ctx context.Context) error {
	close(t.readyCh)
	t.logger.Debug("running without a tray icon")
	<-ctx.Done()
	return nil
}

// SetTooltip records the tooltip and logs changes.
func (t *Tray) SetTooltip(text string) {
	text = truncateTooltip(text)

	t.mu.Lock()
	changed := text != t.tooltip
	t.tooltip = text
	t.mu.Unlock()

	if changed {
		t.logger.Info("current device", "device", text)
	}
}

// Tooltip returns the last tooltip.
func (t *Tray) Tooltip() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tooltip
}

// SetMenu records the menu state.
func (t *Tray) SetMenu(state MenuState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.menu = state
}

// Menu returns the last menu state.
func (t *Tray) Menu() MenuState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.menu
}

// RegisterHotkey is unsupported without a tray window.
func (t *Tray) RegisterHotkey(hotkey.Hotkey) error {
	return ErrUnsupported
}

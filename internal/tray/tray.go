// Package tray provides the notification-area icon, its context menu and the
// global hotkey. On platforms without a tray the daemon runs headless.
package tray

import (
	"errors"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/hotkey"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
)

// ErrUnsupported is returned by tray operations on platforms without a tray.
var ErrUnsupported = errors.New("tray is not supported on this platform")

// ErrNotRunning is returned when the tray thread has not started or has exited.
var ErrNotRunning = errors.New("tray is not running")

// Handler receives tray and hotkey commands. Methods are called on the tray
// thread and must not block.
type Handler interface {
	Next(trigger model.Trigger)
	Refresh()
	SelectPreset(name string)
	ToggleAutostart()
	Exit()
}

// MenuState is what the context menu displays.
type MenuState struct {
	Device    string   // Disabled label at the top
	Preset    string   // Checked hotkey preset
	Presets   []string // Hotkey presets offered
	Autostart bool
}

// Tooltips are truncated to this many characters by the shell.
const maxTooltip = 127

func truncateTooltip(s string) string {
	r := []rune(s)
	if len(r) <= maxTooltip {
		return s
	}
	return string(r[:maxTooltip-1]) + "…"
}

// menu item identifiers
const (
	cmdDevice = iota + 1
	cmdNext
	cmdRefresh
	cmdAutostart
	cmdExit
	cmdPresetBase = 100
)

// menuItem is one entry of the context menu.
type menuItem struct {
	id        int
	label     string
	disabled  bool
	checked   bool
	radio     bool
	separator bool
}

// buildMenu lays out the context menu for s.
func buildMenu(s MenuState) []menuItem {
	device := s.Device
	if device == "" {
		device = "No audio device available"
	}

	items := []menuItem{
		{id: cmdDevice, label: device, disabled: true},
		{separator: true},
		{id: cmdNext, label: "Next device"},
		{id: cmdRefresh, label: "Refresh devices"},
		{separator: true},
	}

	presets := s.Presets
	if len(presets) == 0 {
		presets = hotkey.Presets()
	}
	for i, name := range presets {
		items = append(items, menuItem{
			id:      cmdPresetBase + i,
			label:   "Hotkey: " + hotkey.PresetLabel(name),
			checked: name == s.Preset,
			radio:   true,
		})
	}

	items = append(items,
		menuItem{separator: true},
		menuItem{id: cmdAutostart, label: "Start with Windows", checked: s.Autostart},
		menuItem{separator: true},
		menuItem{id: cmdExit, label: "Exit"},
	)
	return items
}

// dispatch routes a menu command to h.
func dispatch(h Handler, s MenuState, id int) {
	switch id {
	case cmdNext:
		h.Next(model.TriggerTray)
	case cmdRefresh:
		h.Refresh()
	case cmdAutostart:
		h.ToggleAutostart()
	case cmdExit:
		h.Exit()
	default:
		presets := s.Presets
		if len(presets) == 0 {
			presets = hotkey.Presets()
		}
		if i := id - cmdPresetBase; i >= 0 && i < len(presets) {
			h.SelectPreset(presets[i])
		}
	}
}

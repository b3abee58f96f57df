package tray

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/hotkey"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
)

type recordingHandler struct {
	calls []string
}

func (h *recordingHandler) Next(trigger model.Trigger) {
	h.calls = append(h.calls, "next:"+string(trigger))
}
func (h *recordingHandler) Refresh()                 { h.calls = append(h.calls, "refresh") }
func (h *recordingHandler) SelectPreset(name string) { h.calls = append(h.calls, "preset:"+name) }
func (h *recordingHandler) ToggleAutostart()         { h.calls = append(h.calls, "autostart") }
func (h *recordingHandler) Exit()                    { h.calls = append(h.calls, "exit") }

func findItem(items []menuItem, label string) (menuItem, bool) {
	for _, it := range items {
		if it.label == label {
			return it, true
		}
	}
	return menuItem{}, false
}

func TestBuildMenu(t *testing.T) {
	items := buildMenu(MenuState{
		Device:    "Speakers",
		Preset:    hotkey.PresetPauseBreak,
		Presets:   hotkey.Presets(),
		Autostart: true,
	})

	require.NotEmpty(t, items)
	assert.Equal(t, "Speakers", items[0].label)
	assert.True(t, items[0].disabled)

	pause, ok := findItem(items, "Hotkey: "+hotkey.PresetLabel(hotkey.PresetPauseBreak))
	require.True(t, ok)
	assert.True(t, pause.checked)
	assert.True(t, pause.radio)

	media, ok := findItem(items, "Hotkey: "+hotkey.PresetLabel(hotkey.PresetMediaPlayPause))
	require.True(t, ok)
	assert.False(t, media.checked)

	auto, ok := findItem(items, "Start with Windows")
	require.True(t, ok)
	assert.True(t, auto.checked)

	assert.Equal(t, "Exit", items[len(items)-1].label)
}

func TestBuildMenu_NoDevice(t *testing.T) {
	items := buildMenu(MenuState{})
	assert.Equal(t, "No audio device available", items[0].label)

	// Presets default to the built-in list.
	_, ok := findItem(items, "Hotkey: "+hotkey.PresetLabel(hotkey.PresetMediaPlayPause))
	assert.True(t, ok)
}

func TestDispatch(t *testing.T) {
	state := MenuState{Presets: hotkey.Presets()}
	h := &recordingHandler{}

	dispatch(h, state, cmdNext)
	dispatch(h, state, cmdRefresh)
	dispatch(h, state, cmdPresetBase+1)
	dispatch(h, state, cmdAutostart)
	dispatch(h, state, cmdExit)
	dispatch(h, state, cmdDevice)        // disabled label
	dispatch(h, state, cmdPresetBase+99) // out of range

	assert.Equal(t, []string{
		"next:tray",
		"refresh",
		"preset:" + hotkey.Presets()[1],
		"autostart",
		"exit",
	}, h.calls)
}

func TestTruncateTooltip(t *testing.T) {
	assert.Equal(t, "short", truncateTooltip("short"))

	long := strings.Repeat("x", 300)
	got := []rune(truncateTooltip(long))
	assert.Len(t, got, maxTooltip)
	assert.Equal(t, '…', got[len(got)-1])
}

package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/config"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/hotkey"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/platform"
)

var testDevices = []model.Device{
	{ID: "{0.0.0.00000000}.{aaa}", Name: "Speakers (Realtek Audio)"},
	{ID: "{0.0.0.00000000}.{bbb}", Name: "Headphones (USB Audio)"},
	{ID: "{0.0.0.00000000}.{ccc}", Name: "Realtek Digital Output"},
}

func TestResolveDevice(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"index", "2", "{0.0.0.00000000}.{bbb}"},
		{"id", "{0.0.0.00000000}.{ccc}", "{0.0.0.00000000}.{ccc}"},
		{"exact name wins over substring", "realtek digital output", "{0.0.0.00000000}.{ccc}"},
		{"unique substring", "headph", "{0.0.0.00000000}.{bbb}"},
		{"whitespace", "  1 ", "{0.0.0.00000000}.{aaa}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := resolveDevice(testDevices, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.ID)
		})
	}
}

func TestResolveDevice_Errors(t *testing.T) {
	_, err := resolveDevice(testDevices, "4")
	assert.ErrorIs(t, err, platform.ErrDeviceNotFound)

	_, err = resolveDevice(testDevices, "0")
	assert.ErrorIs(t, err, platform.ErrDeviceNotFound)

	_, err = resolveDevice(testDevices, "hdmi")
	assert.ErrorIs(t, err, platform.ErrDeviceNotFound)

	_, err = resolveDevice(testDevices, "realtek")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matches 2 devices")

	_, err = resolveDevice(testDevices, " ")
	assert.Error(t, err)

	_, err = resolveDevice(nil, "1")
	assert.ErrorIs(t, err, platform.ErrDeviceNotFound)
}

func TestReadSelection(t *testing.T) {
	line, err := readSelection(strings.NewReader("\n  2 | Headphones *\n3 | Other\n"))
	require.NoError(t, err)
	assert.Equal(t, "2 | Headphones *", line)

	_, err = readSelection(strings.NewReader("\n\n"))
	assert.Error(t, err)
}

func TestApplyHotkeyArg(t *testing.T) {
	hc := config.DefaultConfig().Hotkey

	require.NoError(t, applyHotkeyArg(&hc, "Pause_Break"))
	assert.Equal(t, hotkey.PresetPauseBreak, hc.Preset)

	require.NoError(t, applyHotkeyArg(&hc, "Ctrl+Shift+F9"))
	assert.Equal(t, hotkey.PresetCustom, hc.Preset)
	assert.Equal(t, "Ctrl+Shift+F9", hc.Custom)

	require.NoError(t, applyHotkeyArg(&hc, hotkey.PresetMediaPlayPause))
	assert.Equal(t, hotkey.PresetMediaPlayPause, hc.Preset)
	assert.Equal(t, "Ctrl+Shift+F9", hc.Custom)

	assert.Error(t, applyHotkeyArg(&hc, "Ctrl+Nope"))
	assert.Equal(t, hotkey.PresetMediaPlayPause, hc.Preset)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 3, exitCode(platform.ErrPlatformUnavailable))
	_, err := resolveDevice(testDevices, "9")
	assert.Equal(t, 4, exitCode(err))
	assert.Equal(t, 5, exitCode(platform.ErrInterfaceUnavailable))
	assert.Equal(t, 1, exitCode(assert.AnError))
}

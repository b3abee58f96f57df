// Package hotkey parses and formats global hotkey definitions.
//
// Key codes and modifier bits use the Win32 RegisterHotKey encoding so a
// Hotkey can be handed to the tray without translation.
package hotkey

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Modifier is a RegisterHotKey modifier bit set.
type Modifier uint32

const (
	ModAlt      Modifier = 0x0001
	ModControl  Modifier = 0x0002
	ModShift    Modifier = 0x0004
	ModWin      Modifier = 0x0008
	ModNoRepeat Modifier = 0x4000
)

// Preset names accepted in config.
const (
	PresetMediaPlayPause = "media_play_pause"
	PresetPauseBreak     = "pause_break"
	PresetCustom         = "custom"
)

// Virtual-key codes used by presets.
const (
	VKPause          uint32 = 0x13
	VKMediaPlayPause uint32 = 0xB3
)

// Errors returned by Parse.
var (
	ErrEmpty       = errors.New("hotkey is empty")
	ErrUnknownKey  = errors.New("unknown key")
	ErrNoModifier  = errors.New("letter, digit, and editing keys need at least one modifier")
	ErrUnknownName = errors.New("unknown hotkey preset")
)

// Hotkey is a key plus modifiers.
type Hotkey struct {
	Modifiers Modifier
	Key       uint32 // Virtual-key code
}

// IsZero reports whether no key is set.
func (h Hotkey) IsZero() bool {
	return h.Key == 0
}

// String formats the hotkey as "Ctrl+Alt+Shift+Win+Key".
func (h Hotkey) String() string {
	var parts []string
	if h.Modifiers&ModControl != 0 {
		parts = append(parts, "Ctrl")
	}
	if h.Modifiers&ModAlt != 0 {
		parts = append(parts, "Alt")
	}
	if h.Modifiers&ModShift != 0 {
		parts = append(parts, "Shift")
	}
	if h.Modifiers&ModWin != 0 {
		parts = append(parts, "Win")
	}
	parts = append(parts, KeyName(h.Key))
	return strings.Join(parts, "+")
}

var presets = map[string]Hotkey{
	PresetMediaPlayPause: {Key: VKMediaPlayPause},
	PresetPauseBreak:     {Key: VKPause},
}

// Presets returns the names of the built-in presets in display order.
func Presets() []string {
	return []string{PresetMediaPlayPause, PresetPauseBreak}
}

// PresetLabel returns a menu label for a preset.
func PresetLabel(name string) string {
	switch name {
	case PresetMediaPlayPause:
		return "Media Play/Pause key"
	case PresetPauseBreak:
		return "Pause/Break key"
	case PresetCustom:
		return "Custom key"
	default:
		return name
	}
}

// Preset returns the hotkey for a built-in preset.
func Preset(name string) (Hotkey, error) {
	h, ok := presets[name]
	if !ok {
		return Hotkey{}, fmt.Errorf("%w: %q", ErrUnknownName, name)
	}
	return h, nil
}

// Resolve returns the hotkey selected by a preset name, parsing custom when
// the preset is "custom".
func Resolve(preset, custom string) (Hotkey, error) {
	if preset == PresetCustom {
		return Parse(custom)
	}
	return Preset(preset)
}

// Parse parses a spec like "Ctrl+Shift+F9", "Pause", or "Alt+MediaNext".
// Tokens are case-insensitive and separated by "+"; the last token is the key.
func Parse(spec string) (Hotkey, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Hotkey{}, ErrEmpty
	}

	parts := strings.Split(spec, "+")
	for i := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(parts[i]))
	}

	var h Hotkey
	for _, p := range parts[:len(parts)-1] {
		switch p {
		case "ctrl", "control":
			h.Modifiers |= ModControl
		case "alt", "menu":
			h.Modifiers |= ModAlt
		case "shift":
			h.Modifiers |= ModShift
		case "win", "meta", "super":
			h.Modifiers |= ModWin
		default:
			return Hotkey{}, fmt.Errorf("unknown modifier %q in %q", p, spec)
		}
	}

	vk, ok := lookupKey(parts[len(parts)-1])
	if !ok {
		return Hotkey{}, fmt.Errorf("%w %q in %q", ErrUnknownKey, parts[len(parts)-1], spec)
	}
	h.Key = vk

	if h.Modifiers == 0 && needsModifier(vk) {
		return Hotkey{}, fmt.Errorf("%q: %w", spec, ErrNoModifier)
	}
	return h, nil
}

func lookupKey(token string) (uint32, bool) {
	if len(token) == 1 {
		ch := token[0]
		if ch >= 'a' && ch <= 'z' {
			return uint32(ch - 'a' + 'A'), true
		}
		if ch >= '0' && ch <= '9' {
			return uint32(ch), true
		}
	}

	if strings.HasPrefix(token, "f") {
		if n, err := strconv.Atoi(token[1:]); err == nil && n >= 1 && n <= 24 {
			return 0x70 + uint32(n-1), true
		}
	}

	for _, prefix := range []string{"numpad", "num", "kp"} {
		if rest, ok := strings.CutPrefix(token, prefix); ok && len(rest) == 1 && rest[0] >= '0' && rest[0] <= '9' {
			return 0x60 + uint32(rest[0]-'0'), true
		}
	}

	vk, ok := namedKeys[token]
	return vk, ok
}

// needsModifier reports whether vk would swallow ordinary typing if bound alone.
func needsModifier(vk uint32) bool {
	switch {
	case vk >= 'A' && vk <= 'Z', vk >= '0' && vk <= '9':
		return true
	case vk >= 0x60 && vk <= 0x69:
		return true
	}
	switch vk {
	case 0x08, 0x09, 0x0D, 0x1B, 0x20, 0x2E: // backspace, tab, enter, esc, space, delete
		return true
	}
	return false
}

var namedKeys = map[string]uint32{
	"backspace":   0x08,
	"tab":         0x09,
	"enter":       0x0D,
	"return":      0x0D,
	"pause":       VKPause,
	"break":       VKPause,
	"capslock":    0x14,
	"esc":         0x1B,
	"escape":      0x1B,
	"space":       0x20,
	"pageup":      0x21,
	"pagedown":    0x22,
	"end":         0x23,
	"home":        0x24,
	"left":        0x25,
	"up":          0x26,
	"right":       0x27,
	"down":        0x28,
	"printscreen": 0x2C,
	"insert":      0x2D,
	"delete":      0x2E,
	"numlock":     0x90,
	"scrolllock":  0x91,
	"volumemute":  0xAD,
	"volumedown":  0xAE,
	"volumeup":    0xAF,
	"medianext":   0xB0,
	"mediaprev":   0xB1,
	"mediastop":   0xB2,
	"playpause":   VKMediaPlayPause,
	"mediaplay":   VKMediaPlayPause,
}

// canonicalNames maps a VK back to its display name.
var canonicalNames = map[uint32]string{
	0x08:             "Backspace",
	0x09:             "Tab",
	0x0D:             "Enter",
	VKPause:          "Pause",
	0x14:             "CapsLock",
	0x1B:             "Esc",
	0x20:             "Space",
	0x21:             "PageUp",
	0x22:             "PageDown",
	0x23:             "End",
	0x24:             "Home",
	0x25:             "Left",
	0x26:             "Up",
	0x27:             "Right",
	0x28:             "Down",
	0x2C:             "PrintScreen",
	0x2D:             "Insert",
	0x2E:             "Delete",
	0x90:             "NumLock",
	0x91:             "ScrollLock",
	0xAD:             "VolumeMute",
	0xAE:             "VolumeDown",
	0xAF:             "VolumeUp",
	0xB0:             "MediaNext",
	0xB1:             "MediaPrev",
	0xB2:             "MediaStop",
	VKMediaPlayPause: "PlayPause",
}

// KeyName returns the display name of a virtual-key code.
func KeyName(vk uint32) string {
	switch {
	case vk >= 'A' && vk <= 'Z', vk >= '0' && vk <= '9':
		return string(rune(vk))
	case vk >= 0x70 && vk <= 0x87:
		return "F" + strconv.Itoa(int(vk-0x70+1))
	case vk >= 0x60 && vk <= 0x69:
		return "Numpad" + strconv.Itoa(int(vk-0x60))
	}
	if name, ok := canonicalNames[vk]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", vk)
}

// KeyNames returns every named key accepted by Parse, sorted.
func KeyNames() []string {
	names := make([]string, 0, len(namedKeys))
	for name := range namedKeys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

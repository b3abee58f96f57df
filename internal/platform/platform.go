package platform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
)

// Errors reported by AudioController implementations.
var (
	// ErrPlatformUnavailable means the audio subsystem could not be reached.
	ErrPlatformUnavailable = errors.New("audio platform unavailable")

	// ErrDeviceNotFound means the device vanished or the ID is unknown.
	ErrDeviceNotFound = errors.New("audio device not found")

	// ErrInterfaceUnavailable means the mechanism for setting the default
	// device is missing on this system.
	ErrInterfaceUnavailable = errors.New("default device interface unavailable")
)

// AudioController is the platform boundary used by the rotation controller.
type AudioController interface {
	// Enumerate returns the active playback endpoints in platform order.
	Enumerate() ([]model.Device, error)

	// DefaultDevice returns the ID of the default multimedia playback device,
	// or "" when none is set.
	DefaultDevice() (string, error)

	// SetDefault makes id the system default playback device.
	SetDefault(id string) error

	// Subscribe registers fn for device-change notifications. The returned
	// function unregisters it. fn may be called from any goroutine.
	Subscribe(fn func(Notification)) (func(), error)

	// Close releases platform resources.
	Close() error
}

// NotificationKind identifies the type of device-change notification.
type NotificationKind int

const (
	DefaultDeviceChanged NotificationKind = iota
	DeviceAdded
	DeviceRemoved
	DeviceStateChanged
)

// String returns the kind name.
func (k NotificationKind) String() string {
	switch k {
	case DefaultDeviceChanged:
		return "default-changed"
	case DeviceAdded:
		return "added"
	case DeviceRemoved:
		return "removed"
	case DeviceStateChanged:
		return "state-changed"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// DeviceState mirrors the Core Audio DEVICE_STATE_* bit flags.
type DeviceState uint32

const (
	StateActive     DeviceState = 0x1
	StateDisabled   DeviceState = 0x2
	StateNotPresent DeviceState = 0x4
	StateUnplugged  DeviceState = 0x8
)

// String returns a "|"-joined list of set flags.
func (s DeviceState) String() string {
	if s == 0 {
		return "none"
	}
	var parts []string
	if s&StateActive != 0 {
		parts = append(parts, "active")
	}
	if s&StateDisabled != 0 {
		parts = append(parts, "disabled")
	}
	if s&StateNotPresent != 0 {
		parts = append(parts, "not-present")
	}
	if s&StateUnplugged != 0 {
		parts = append(parts, "unplugged")
	}
	if rest := s &^ (StateActive | StateDisabled | StateNotPresent | StateUnplugged); rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// Notification is a device-change event from the platform.
type Notification struct {
	Kind     NotificationKind
	DeviceID string
	State    DeviceState // Only set for DeviceStateChanged
}

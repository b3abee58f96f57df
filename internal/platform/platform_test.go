package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotificationKind_String(t *testing.T) {
	tests := []struct {
		kind NotificationKind
		want string
	}{
		{DefaultDeviceChanged, "default-changed"},
		{DeviceAdded, "added"},
		{DeviceRemoved, "removed"},
		{DeviceStateChanged, "state-changed"},
		{NotificationKind(42), "unknown(42)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestDeviceState_String(t *testing.T) {
	assert.Equal(t, "none", DeviceState(0).String())
	assert.Equal(t, "active", StateActive.String())
	assert.Equal(t, "disabled|unplugged", (StateDisabled | StateUnplugged).String())
	assert.Equal(t, "active|0x10", (StateActive | 0x10).String())
}

// Package model defines the core data structures for audioswitch.
package model

import (
	"strings"
)

// Device is a snapshot of one active playback endpoint.
// Devices are values: a refresh replaces the whole list rather than patching entries.
type Device struct {
	ID   string `json:"id" yaml:"id"`     // Opaque platform identifier, unique within a refresh
	Name string `json:"name" yaml:"name"` // Human-readable label
}

// String returns the display name, falling back to the ID.
func (d Device) String() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// IndexOf returns the index of the device with the given ID, or -1.
func IndexOf(devices []Device, id string) int {
	if id == "" {
		return -1
	}
	for i := range devices {
		if devices[i].ID == id {
			return i
		}
	}
	return -1
}

// LookupByIndex finds a device by its index (1-based for user-friendliness).
// Returns nil if index is out of bounds.
func LookupByIndex(devices []Device, index int) *Device {
	idx := index - 1
	if idx < 0 || idx >= len(devices) {
		return nil
	}
	return &devices[idx]
}

// SearchByName returns devices whose name contains term, case-insensitively.
func SearchByName(devices []Device, term string) []Device {
	if term == "" {
		return devices
	}

	term = strings.ToLower(term)
	var result []Device
	for _, d := range devices {
		if strings.Contains(strings.ToLower(d.Name), term) {
			result = append(result, d)
		}
	}
	return result
}

// Clone returns a copy of the slice so callers cannot alias controller state.
func Clone(devices []Device) []Device {
	if devices == nil {
		return nil
	}
	out := make([]Device, len(devices))
	copy(out, devices)
	return out
}

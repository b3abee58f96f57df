// Package output provides output formatters for devices and switch history.
package output

import (
	"io"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
)

// Formatter formats devices and switch history for output.
type Formatter interface {
	// FormatDevices writes the device list to the writer.
	FormatDevices(w io.Writer, devices []DeviceEntry) error
	// FormatHistory writes switch events, newest first, to the writer.
	FormatHistory(w io.Writer, events []model.SwitchEvent) error
}

// DeviceEntry is a device as listed, with its 1-based index and default flag.
type DeviceEntry struct {
	Index   int    `json:"index" yaml:"index"`
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Default bool   `json:"default" yaml:"default"`
}

// Entries builds list entries, marking the device whose ID is defaultID.
func Entries(devices []model.Device, defaultID string) []DeviceEntry {
	out := make([]DeviceEntry, len(devices))
	for i, d := range devices {
		out[i] = DeviceEntry{
			Index:   i + 1,
			ID:      d.ID,
			Name:    d.Name,
			Default: defaultID != "" && d.ID == defaultID,
		}
	}
	return out
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatDmenu FormatType = "dmenu"
	FormatIDs   FormatType = "ids"
)

// FormatTypes lists the accepted format names.
func FormatTypes() []string {
	return []string{string(FormatPlain), string(FormatJSON), string(FormatYAML), string(FormatDmenu), string(FormatIDs)}
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter()
	case FormatDmenu:
		return NewDmenuFormatter(opts)
	case FormatIDs:
		return NewIDsFormatter()
	case FormatPlain:
		fallthrough
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template  string // Custom template for plain/dmenu device lines
	ShowIndex bool   // Show 1-based index prefix
	ShowID    bool   // Show the platform device ID
	ShowTime  bool   // Show relative time in history
	Separator string // Field separator for dmenu format
	Compact   bool   // JSON without indentation
}

// DefaultFormatterOptions returns sensible defaults.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex: true,
		ShowTime:  true,
		Separator: " | ",
	}
}

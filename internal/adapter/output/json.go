package output

import (
	"encoding/json"
	"io"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
)

// JSONFormatter formats devices and history as JSON arrays.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// FormatDevices writes devices as a JSON array.
func (f *JSONFormatter) FormatDevices(w io.Writer, devices []DeviceEntry) error {
	if devices == nil {
		devices = []DeviceEntry{}
	}
	return f.encode(w, devices)
}

// FormatHistory writes events as a JSON array.
func (f *JSONFormatter) FormatHistory(w io.Writer, events []model.SwitchEvent) error {
	if events == nil {
		events = []model.SwitchEvent{}
	}
	return f.encode(w, events)
}

func (f *JSONFormatter) encode(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	if !f.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}

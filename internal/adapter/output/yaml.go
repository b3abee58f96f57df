package output

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
)

// YAMLFormatter formats devices and history as YAML sequences.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// FormatDevices writes devices as a YAML sequence.
func (f *YAMLFormatter) FormatDevices(w io.Writer, devices []DeviceEntry) error {
	if devices == nil {
		devices = []DeviceEntry{}
	}
	return encodeYAML(w, devices)
}

// FormatHistory writes events as a YAML sequence.
func (f *YAMLFormatter) FormatHistory(w io.Writer, events []model.SwitchEvent) error {
	if events == nil {
		events = []model.SwitchEvent{}
	}
	return encodeYAML(w, events)
}

func encodeYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return encoder.Close()
}

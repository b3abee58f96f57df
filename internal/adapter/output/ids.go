package output

import (
	"fmt"
	"io"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
)

// IDsFormatter outputs just the device or event IDs, one per line.
// Useful for piping to other commands (e.g., audioswitch set).
type IDsFormatter struct{}

// NewIDsFormatter creates a new IDs formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

// FormatDevices writes device IDs to the writer, one per line.
func (f *IDsFormatter) FormatDevices(w io.Writer, devices []DeviceEntry) error {
	for _, d := range devices {
		if _, err := fmt.Fprintln(w, d.ID); err != nil {
			return err
		}
	}
	return nil
}

// FormatHistory writes event IDs to the writer, one per line.
func (f *IDsFormatter) FormatHistory(w io.Writer, events []model.SwitchEvent) error {
	for _, e := range events {
		if _, err := fmt.Fprintln(w, e.ID); err != nil {
			return err
		}
	}
	return nil
}

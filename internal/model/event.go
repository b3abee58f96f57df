package model

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Trigger identifies what caused a default-device switch.
type Trigger string

const (
	TriggerHotkey Trigger = "hotkey"
	TriggerTray   Trigger = "tray"
	TriggerCLI    Trigger = "cli"
	TriggerPicker Trigger = "picker"
)

// SwitchEvent records one successful default-device switch.
// It is written to the history log and never read back to restore a selection.
type SwitchEvent struct {
	ID        string  `json:"id" yaml:"id"`
	Timestamp int64   `json:"timestamp" yaml:"timestamp"` // Unix seconds
	FromID    string  `json:"from_id,omitempty" yaml:"from_id,omitempty"`
	ToID      string  `json:"to_id" yaml:"to_id"`
	ToName    string  `json:"to_name" yaml:"to_name"`
	Trigger   Trigger `json:"trigger" yaml:"trigger"`
}

// Validation errors.
var (
	ErrEmptyEventID     = errors.New("event id cannot be empty")
	ErrEmptyTarget      = errors.New("event target device cannot be empty")
	ErrInvalidTimestamp = errors.New("timestamp must be greater than 0")
)

// NewSwitchEvent creates a SwitchEvent with a generated ULID.
func NewSwitchEvent(from string, to Device, trigger Trigger) (*SwitchEvent, error) {
	now := time.Now()
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ULID: %w", err)
	}

	return &SwitchEvent{
		ID:        id.String(),
		Timestamp: now.Unix(),
		FromID:    from,
		ToID:      to.ID,
		ToName:    to.Name,
		Trigger:   trigger,
	}, nil
}

// Validate checks that the event has all required fields.
func (e *SwitchEvent) Validate() error {
	if e.ID == "" {
		return ErrEmptyEventID
	}
	if e.ToID == "" {
		return ErrEmptyTarget
	}
	if e.Timestamp <= 0 {
		return ErrInvalidTimestamp
	}
	return nil
}

// Time returns the timestamp as a time.Time.
func (e *SwitchEvent) Time() time.Time {
	return time.Unix(e.Timestamp, 0)
}

package notify

import (
	"fmt"
	"log/slog"

	"github.com/gen2brain/beeep"
)

// ToastNotifier shows Windows toasts and macOS notifications via beeep.
type ToastNotifier struct {
	logger *slog.Logger
}

// NewToastNotifier creates a ToastNotifier.
func NewToastNotifier(logger *slog.Logger) *ToastNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	beeep.AppName = AppName
	return &ToastNotifier{logger: logger}
}

// Send shows msg. Errors use an alert, which also plays the system sound.
func (n *ToastNotifier) Send(msg Message) error {
	var err error
	if msg.Level == LevelError {
		err = beeep.Alert(msg.Summary, msg.Body, "")
	} else {
		err = beeep.Notify(msg.Summary, msg.Body, "")
	}
	if err != nil {
		return fmt.Errorf("failed to show toast: %w", err)
	}
	return nil
}

// Close is a no-op.
func (n *ToastNotifier) Close() error {
	return nil
}

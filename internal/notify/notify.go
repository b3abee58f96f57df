// Package notify delivers short user-facing notices through the desktop's
// notification service.
package notify

import (
	"fmt"
	"log/slog"
	"runtime"
)

// AppName is reported to notification services.
const AppName = "audioswitch"

// Level indicates the urgency of a notice.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Message is a single notice.
type Message struct {
	Summary string
	Body    string
	Level   Level
}

// Notifier sends notices.
type Notifier interface {
	Send(msg Message) error
	Close() error
}

// Methods accepted by New.
const (
	MethodAuto  = "auto"
	MethodDBus  = "dbus"
	MethodToast = "toast"
	MethodLog   = "log"
)

// New returns a Notifier for method. "auto" picks D-Bus on Linux and the BSDs,
// toast elsewhere, and falls back to the log when D-Bus is unreachable.
func New(method string, logger *slog.Logger) (Notifier, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch method {
	case MethodDBus:
		return NewDBusNotifier(logger)
	case MethodToast:
		return NewToastNotifier(logger), nil
	case MethodLog:
		return NewLogNotifier(logger), nil
	case "", MethodAuto:
		if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
			return NewToastNotifier(logger), nil
		}
		n, err := NewDBusNotifier(logger)
		if err != nil {
			logger.Debug("D-Bus notifications unavailable, using log", "error", err)
			return NewLogNotifier(logger), nil
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unknown notify method %q", method)
	}
}

// LogNotifier writes notices to the logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Send logs msg at a level matching its urgency.
func (n *LogNotifier) Send(msg Message) error {
	switch msg.Level {
	case LevelError:
		n.logger.Error(msg.Summary, "body", msg.Body)
	case LevelWarning:
		n.logger.Warn(msg.Summary, "body", msg.Body)
	default:
		n.logger.Info(msg.Summary, "body", msg.Body)
	}
	return nil
}

// Close is a no-op.
func (n *LogNotifier) Close() error {
	return nil
}

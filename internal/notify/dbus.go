package notify

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsName = "org.freedesktop.Notifications"
	notificationsPath = "/org/freedesktop/Notifications"
	notifyMethod      = notificationsName + ".Notify"

	// ExpireTimeout is how long notices stay on screen, in milliseconds.
	ExpireTimeout = 3000
)

// DBusNotifier sends notices over org.freedesktop.Notifications. Each notice
// replaces the previous one so rapid switching shows a single bubble.
type DBusNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger
	conn   *dbus.Conn
	lastID uint32
}

// NewDBusNotifier connects to the session bus.
func NewDBusNotifier(logger *slog.Logger) (*DBusNotifier, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	return &DBusNotifier{
		logger: logger,
		conn:   conn,
	}, nil
}

// Send shows msg, replacing the previous notice.
func (n *DBusNotifier) Send(msg Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	hints := map[string]dbus.Variant{
		"urgency":   dbus.MakeVariant(urgency(msg.Level)),
		"category":  dbus.MakeVariant("device"),
		"transient": dbus.MakeVariant(true),
	}

	obj := n.conn.Object(notificationsName, dbus.ObjectPath(notificationsPath))
	call := obj.Call(notifyMethod, 0,
		AppName,
		n.lastID,
		icon(msg.Level),
		msg.Summary,
		msg.Body,
		[]string{},
		hints,
		int32(ExpireTimeout),
	)
	if call.Err != nil {
		return fmt.Errorf("failed to send notification: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("failed to read notification id: %w", err)
	}
	n.lastID = id
	return nil
}

// Close closes the bus connection.
func (n *DBusNotifier) Close() error {
	return n.conn.Close()
}

// urgency maps a Level to the freedesktop urgency byte.
func urgency(l Level) byte {
	switch l {
	case LevelInfo:
		return 0
	case LevelError:
		return 2
	default:
		return 1
	}
}

func icon(l Level) string {
	switch l {
	case LevelWarning:
		return "dialog-warning"
	case LevelError:
		return "dialog-error"
	default:
		return "audio-speakers"
	}
}

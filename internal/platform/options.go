package platform

import (
	"log/slog"
	"time"
)

// Backend names accepted by Open.
const (
	BackendAuto  = "auto"
	BackendWCA   = "wca"
	BackendMalgo = "malgo"
)

// Options configures Open.
type Options struct {
	Backend      string
	Roles        []Role
	PollInterval time.Duration // Polled backends only
	Logger       *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Polling reports whether the controller needs Start to deliver notifications.
// It returns the Poller when it does.
func Polling(c AudioController) (*Poller, bool) {
	p, ok := c.(*Poller)
	return p, ok
}

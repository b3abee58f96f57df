//go:build windows

package platform

import (
	"fmt"
	"log/slog"
)

// Open returns the controller for the named backend. "auto" and "wca" use
// Core Audio; "malgo" is read-only and polled.
func Open(opts Options) (AudioController, error) {
	logger := opts.logger()

	switch opts.Backend {
	case "", BackendAuto, BackendWCA:
		c, err := newWCAController(opts.Roles, logger)
		if err != nil {
			return nil, err
		}
		logger.Debug("opened audio backend", "backend", BackendWCA, "roles", opts.Roles)
		return c, nil
	case BackendMalgo:
		return openPolled(opts, logger)
	default:
		return nil, fmt.Errorf("unknown audio backend %q", opts.Backend)
	}
}

func openPolled(opts Options, logger *slog.Logger) (AudioController, error) {
	src, err := newMalgoController(logger)
	if err != nil {
		return nil, err
	}
	p := NewPoller(src, logger)
	if opts.PollInterval > 0 {
		p.SetPollInterval(opts.PollInterval)
	}
	logger.Debug("opened audio backend", "backend", BackendMalgo)
	return p, nil
}

//go:build !windows

package platform

import (
	"fmt"
)

// Open returns the controller for the named backend. Only the read-only,
// polled malgo backend exists off Windows.
func Open(opts Options) (AudioController, error) {
	logger := opts.logger()

	switch opts.Backend {
	case "", BackendAuto, BackendMalgo:
	case BackendWCA:
		return nil, fmt.Errorf("backend %q requires Windows: %w", BackendWCA, ErrPlatformUnavailable)
	default:
		return nil, fmt.Errorf("unknown audio backend %q", opts.Backend)
	}

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

// Package store provides the switch history log.
package store

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
)

// History records successful switches to a Persistence, trimming to the
// newest keep events. It is a log only; nothing restores a selection from it.
type History struct {
	mu          sync.Mutex
	persistence Persistence
	logger      *slog.Logger
	keep        int
}

// NewHistory creates a History. keep <= 0 disables trimming.
func NewHistory(p Persistence, keep int, logger *slog.Logger) *History {
	if logger == nil {
		logger = slog.Default()
	}
	return &History{
		persistence: p,
		logger:      logger,
		keep:        keep,
	}
}

// Open is a convenience for NewHistory over a JSONL file.
func Open(path string, keep int, logger *slog.Logger) (*History, error) {
	p, err := NewJSONLPersistence(path)
	if err != nil {
		return nil, err
	}
	return NewHistory(p, keep, logger), nil
}

// SetKeep changes the retention limit. It takes effect on the next Record.
func (h *History) SetKeep(keep int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.keep = keep
}

// Record appends e and trims the log when it exceeds the retention limit.
// The file may have other writers, so the count is re-read each time.
func (h *History) Record(e model.SwitchEvent) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("invalid switch event: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.persistence.Append(e); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}

	if h.keep > 0 {
		return h.trim()
	}
	return nil
}

func (h *History) trim() error {
	events, err := h.persistence.Load()
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(events) <= h.keep {
		return nil
	}
	events = events[len(events)-h.keep:]
	if err := h.persistence.Rewrite(events); err != nil {
		return fmt.Errorf("failed to rewrite history: %w", err)
	}
	h.logger.Debug("trimmed switch history", "kept", len(events))
	return nil
}

// Recent returns up to limit events, newest first. limit <= 0 returns all.
func (h *History) Recent(limit int) ([]model.SwitchEvent, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	events, err := h.persistence.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	out := make([]model.SwitchEvent, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		out = append(out, events[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Clear removes all events.
func (h *History) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.persistence.Clear(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Close closes the underlying persistence.
func (h *History) Close() error {
	return h.persistence.Close()
}

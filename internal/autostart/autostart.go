// Package autostart registers the daemon to launch at login: a Startup
// folder shortcut on Windows and an XDG autostart entry elsewhere.
package autostart

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// ErrUnsupported is returned where no autostart mechanism exists.
var ErrUnsupported = errors.New("autostart is not supported on this platform")

// Name is the file name stem of the autostart entry.
const Name = "audioswitchd"

// Entry launches Exec with Args at login.
type Entry struct {
	Name        string
	Exec        string
	Args        []string
	Description string

	dir    string // Overrides the platform directory in tests
	logger *slog.Logger
}

// New returns an Entry for exec, or for the running executable when empty.
func New(exec string, args []string, logger *slog.Logger) (*Entry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if exec == "" {
		p, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve executable: %w", err)
		}
		exec = p
	}
	return &Entry{
		Name:        Name,
		Exec:        exec,
		Args:        args,
		Description: "Audio output device switcher",
		logger:      logger,
	}, nil
}

// IsEnabled reports whether the entry exists.
func (e *Entry) IsEnabled() (bool, error) {
	path, err := e.Path()
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check autostart entry: %w", err)
	}
	return true, nil
}

// Disable removes the entry. Removing a missing entry is not an error.
func (e *Entry) Disable() error {
	path, err := e.Path()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove autostart entry: %w", err)
	}
	e.logger.Debug("autostart disabled", "path", path)
	return nil
}

// commandLine joins args, quoting those with spaces.
func commandLine(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"") {
			a = `"` + strings.ReplaceAll(a, `"`, `\"`) + `"`
		}
		quoted[i] = a
	}
	return strings.Join(quoted, " ")
}

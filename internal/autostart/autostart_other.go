//go:build !windows

package autostart

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Path returns the XDG autostart desktop entry path.
func (e *Entry) Path() (string, error) {
	dir := e.dir
	if dir == "" {
		if runtime.GOOS == "darwin" {
			return "", ErrUnsupported
		}
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configHome = filepath.Join(home, ".config")
		}
		dir = filepath.Join(configHome, "autostart")
	}
	return filepath.Join(dir, e.Name+".desktop"), nil
}

// Enable writes the desktop entry.
func (e *Entry) Enable() error {
	path, err := e.Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create autostart directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(e.desktopEntry()), 0644); err != nil {
		return fmt.Errorf("failed to write autostart entry: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write autostart entry: %w", err)
	}

	e.logger.Debug("autostart enabled", "path", path)
	return nil
}

func (e *Entry) desktopEntry() string {
	exec := commandLine(append([]string{e.Exec}, e.Args...))

	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	b.WriteString("Name=" + e.Name + "\n")
	b.WriteString("Comment=" + e.Description + "\n")
	b.WriteString("Exec=" + exec + "\n")
	b.WriteString("Terminal=false\n")
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	return b.String()
}

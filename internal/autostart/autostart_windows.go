//go:build windows

package autostart

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// Path returns the Startup folder shortcut path.
func (e *Entry) Path() (string, error) {
	dir := e.dir
	if dir == "" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA is not set: %w", ErrUnsupported)
		}
		dir = filepath.Join(appData, `Microsoft\Windows\Start Menu\Programs\Startup`)
	}
	return filepath.Join(dir, e.Name+".lnk"), nil
}

// Enable writes a Startup folder shortcut through WScript.Shell.
func (e *Entry) Enable() error {
	path, err := e.Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create startup folder: %w", err)
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		if oleErr, ok := err.(*ole.OleError); !ok || oleErr.Code() != 1 { // S_FALSE: already initialized
			return fmt.Errorf("failed to initialize COM: %w", err)
		}
	}
	defer ole.CoUninitialize()

	shellObj, err := oleutil.CreateObject("WScript.Shell")
	if err != nil {
		return fmt.Errorf("failed to create WScript.Shell: %w", err)
	}
	defer shellObj.Release()

	shell, err := shellObj.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return fmt.Errorf("failed to query WScript.Shell: %w", err)
	}
	defer shell.Release()

	v, err := oleutil.CallMethod(shell, "CreateShortcut", path)
	if err != nil {
		return fmt.Errorf("failed to create shortcut: %w", err)
	}
	sc := v.ToIDispatch()
	defer sc.Release()

	props := []struct {
		name  string
		value any
	}{
		{"TargetPath", e.Exec},
		{"Arguments", commandLine(e.Args)},
		{"WorkingDirectory", filepath.Dir(e.Exec)},
		{"Description", e.Description},
		{"IconLocation", e.Exec},
	}
	for _, p := range props {
		if _, err := oleutil.PutProperty(sc, p.name, p.value); err != nil {
			return fmt.Errorf("failed to set shortcut %s: %w", p.name, err)
		}
	}

	if _, err := oleutil.CallMethod(sc, "Save"); err != nil {
		return fmt.Errorf("failed to save shortcut: %w", err)
	}

	e.logger.Debug("autostart enabled", "path", path)
	return nil
}

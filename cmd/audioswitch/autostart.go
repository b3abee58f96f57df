package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/autostart"
)

var autostartCmd = &cobra.Command{
	Use:   "autostart",
	Short: "Manage starting audioswitchd at login",
}

var autostartEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Start audioswitchd at login",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAutostart(true)
	},
}

var autostartDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Stop starting audioswitchd at login",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAutostart(false)
	},
}

var autostartStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether audioswitchd starts at login",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entry, err := autostartEntry()
		if err != nil {
			return err
		}
		enabled, err := entry.IsEnabled()
		if err != nil {
			return err
		}
		path, _ := entry.Path()
		if enabled {
			fmt.Println("enabled: " + path)
		} else {
			fmt.Println("disabled")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(autostartCmd)
	autostartCmd.AddCommand(autostartEnableCmd)
	autostartCmd.AddCommand(autostartDisableCmd)
	autostartCmd.AddCommand(autostartStatusCmd)
}

func setAutostart(enabled bool) error {
	entry, err := autostartEntry()
	if err != nil {
		return err
	}

	if enabled {
		err = entry.Enable()
	} else {
		err = entry.Disable()
	}
	if err != nil {
		return err
	}

	// Keep the daemon's setting in sync so it doesn't undo this on start.
	if cfg.Startup.Autostart != enabled {
		next := *cfg
		next.Startup.Autostart = enabled
		if err := next.Save(globalOpts.configPath); err != nil {
			return err
		}
		cfg = &next
	}

	if enabled {
		fmt.Println("Autostart enabled")
	} else {
		fmt.Println("Autostart disabled")
	}
	return nil
}

// autostartEntry returns the entry for the audioswitchd binary installed
// next to this one.
func autostartEntry() (*autostart.Entry, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable: %w", err)
	}

	name := "audioswitchd"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	daemon := filepath.Join(filepath.Dir(self), name)
	if _, err := os.Stat(daemon); err != nil {
		return nil, fmt.Errorf("audioswitchd not found next to %s: %w", self, err)
	}

	var args []string
	if globalOpts.configPath != "" {
		args = []string{"--config", globalOpts.configPath}
	}
	return autostart.New(daemon, args, logger)
}

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/adapter/output"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/platform"
)

var setOpts struct {
	stdin bool // Read a dmenu line from stdin
	quiet bool
}

var setCmd = &cobra.Command{
	Use:   "set <index|id|name>",
	Short: "Make a specific device the default",
	Long: `Make a specific output device the system default.

The device may be given as a 1-based index from "audioswitch list", as its
platform ID, or as part of its name (case-insensitive). A name that matches
more than one device is rejected.

Examples:
  # By index
  audioswitch set 2

  # By name
  audioswitch set headphones

  # From a launcher
  audioswitch list --format dmenu | fuzzel -d | audioswitch set --stdin`,
	Args: func(cmd *cobra.Command, args []string) error {
		if setOpts.stdin {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runSet,
}

func init() {
	rootCmd.AddCommand(setCmd)

	setCmd.Flags().BoolVar(&setOpts.stdin, "stdin", false,
		"Read a line produced by 'list --format dmenu' from stdin")
	setCmd.Flags().BoolVarP(&setOpts.quiet, "quiet", "q", false,
		"Suppress output")
}

func runSet(cmd *cobra.Command, args []string) error {
	var query string
	if setOpts.stdin {
		line, err := readSelection(os.Stdin)
		if err != nil {
			return err
		}
		idx, err := output.ParseDmenuSelection(line, "")
		if err != nil {
			return err
		}
		query = strconv.Itoa(idx)
	} else {
		query = args[0]
	}

	c, closeFn, err := openController()
	if err != nil {
		return err
	}
	defer closeFn()

	target, err := resolveDevice(c.Devices(), query)
	if err != nil {
		return err
	}

	from, _ := c.Current()
	if err := c.Select(target.ID); err != nil {
		return err
	}

	if target.ID != from.ID {
		recordSwitch(from.ID, target, model.TriggerCLI)
	}
	if !setOpts.quiet {
		fmt.Println("Now playing on " + target.Name)
	}
	return nil
}

// resolveDevice finds a device by 1-based index, exact ID, exact name, or a
// unique case-insensitive name substring, in that order.
func resolveDevice(devices []model.Device, query string) (model.Device, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return model.Device{}, fmt.Errorf("no device given")
	}

	if n, err := strconv.Atoi(query); err == nil {
		if d := model.LookupByIndex(devices, n); d != nil {
			return *d, nil
		}
		return model.Device{}, fmt.Errorf("device index %d out of range (1-%d): %w", n, len(devices), platform.ErrDeviceNotFound)
	}

	if idx := model.IndexOf(devices, query); idx >= 0 {
		return devices[idx], nil
	}

	for _, d := range devices {
		if strings.EqualFold(d.Name, query) {
			return d, nil
		}
	}

	matches := model.SearchByName(devices, query)
	switch len(matches) {
	case 0:
		return model.Device{}, fmt.Errorf("no device matches %q: %w", query, platform.ErrDeviceNotFound)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, d := range matches {
			names[i] = d.Name
		}
		return model.Device{}, fmt.Errorf("%q matches %d devices: %s", query, len(matches), strings.Join(names, ", "))
	}
}

// readSelection returns the first non-empty line of r.
func readSelection(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return "", fmt.Errorf("no selection on stdin")
}

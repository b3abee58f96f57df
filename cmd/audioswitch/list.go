package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/adapter/output"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
)

var listOpts struct {
	format   string
	template string
	showID   bool
	search   string
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List audio output devices",
	Long: `List active audio output devices in rotation order.

The current default device is marked. Indexes are 1-based and can be passed
to "audioswitch set".

Examples:
  # Plain list
  audioswitch list

  # JSON or YAML for scripts
  audioswitch list --format json
  audioswitch list --format yaml

  # Pick with a launcher and switch
  audioswitch list --format dmenu | fuzzel -d | audioswitch set --stdin`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listOpts.format, "format", "f", "plain",
		"Output format ("+strings.Join(output.FormatTypes(), ", ")+")")
	listCmd.Flags().StringVar(&listOpts.template, "template", "",
		"Custom Go template for plain/dmenu lines (fields: .Index .ID .Name .Default)")
	listCmd.Flags().BoolVar(&listOpts.showID, "show-id", false,
		"Include platform device IDs")
	listCmd.Flags().StringVarP(&listOpts.search, "search", "s", "",
		"Only list devices whose name contains this text")
}

func runList(cmd *cobra.Command, args []string) error {
	audio, err := openAudio()
	if err != nil {
		return err
	}
	defer audio.Close()

	devices, err := audio.Enumerate()
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}
	defaultID, err := audio.DefaultDevice()
	if err != nil {
		logger.Warn("failed to read default device", "error", err)
	}

	entries := output.Entries(devices, defaultID)
	if listOpts.search != "" {
		entries = filterEntries(entries, model.SearchByName(devices, listOpts.search))
	}

	opts := output.DefaultFormatterOptions()
	opts.Template = listOpts.template
	opts.ShowID = listOpts.showID

	formatter := output.NewFormatter(output.FormatType(listOpts.format), opts)
	return formatter.FormatDevices(os.Stdout, entries)
}

// filterEntries keeps entries for the given devices, preserving indexes.
func filterEntries(entries []output.DeviceEntry, keep []model.Device) []output.DeviceEntry {
	var out []output.DeviceEntry
	for _, e := range entries {
		if model.IndexOf(keep, e.ID) >= 0 {
			out = append(out, e)
		}
	}
	return out
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/adapter/output"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/store"
)

var historyOpts struct {
	limit  int
	format string
	showID bool
	clear  bool
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent device switches",
	Long: `Show recent default-device switches, newest first.

Switches made by the daemon hotkey, the tray, this CLI and the picker are
logged. The log is informational only; the selected device is always read
from the system at startup.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyOpts.limit, "limit", "n", 20,
		"Maximum number of switches to show (0=all)")
	historyCmd.Flags().StringVarP(&historyOpts.format, "format", "f", "plain",
		"Output format ("+strings.Join(output.FormatTypes(), ", ")+")")
	historyCmd.Flags().BoolVar(&historyOpts.showID, "show-id", false,
		"Include target device IDs")
	historyCmd.Flags().BoolVar(&historyOpts.clear, "clear", false,
		"Delete the switch history")
}

func runHistory(cmd *cobra.Command, args []string) error {
	h, err := store.Open(historyPath(), cfg.History.Keep, logger)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer h.Close()

	if historyOpts.clear {
		if err := h.Clear(); err != nil {
			return err
		}
		fmt.Println("History cleared")
		return nil
	}

	events, err := h.Recent(historyOpts.limit)
	if err != nil {
		return err
	}

	opts := output.DefaultFormatterOptions()
	opts.ShowID = historyOpts.showID

	formatter := output.NewFormatter(output.FormatType(historyOpts.format), opts)
	return formatter.FormatHistory(os.Stdout, events)
}

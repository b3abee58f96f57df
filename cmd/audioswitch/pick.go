package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/tui"
)

var pickOpts struct {
	stay bool
}

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Choose the output device interactively",
	Long: `Open an interactive list of output devices.

Keys: enter switches to the highlighted device, n advances to the next
device, r refreshes the list, / filters by name, c copies the device ID,
? shows help and q quits.`,
	Args: cobra.NoArgs,
	RunE: runPick,
}

func init() {
	rootCmd.AddCommand(pickCmd)

	pickCmd.Flags().BoolVar(&pickOpts.stay, "stay", false,
		"Keep the picker open after switching")
}

func runPick(cmd *cobra.Command, args []string) error {
	c, closeFn, err := openController()
	if err != nil {
		return err
	}
	defer closeFn()

	final, err := tui.Run(c, tui.Options{
		QuitOnSelect: !pickOpts.stay,
		OnSwitch: func(from string, to model.Device) {
			recordSwitch(from, to, model.TriggerPicker)
		},
	})
	if err != nil {
		return fmt.Errorf("picker failed: %w", err)
	}

	if d, ok := final.Snapshot().Current(); ok {
		fmt.Println("Now playing on " + d.Name)
	}
	return nil
}

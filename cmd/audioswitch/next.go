package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/rotation"
)

var nextOpts struct {
	quiet bool
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Switch to the next output device",
	Long: `Make the next device in rotation order the system default.

After the last device the rotation wraps to the first. When the current
default is not an active output device, the first device is chosen.`,
	Args: cobra.NoArgs,
	RunE: runNext,
}

func init() {
	rootCmd.AddCommand(nextCmd)

	nextCmd.Flags().BoolVarP(&nextOpts.quiet, "quiet", "q", false,
		"Suppress output")
}

func runNext(cmd *cobra.Command, args []string) error {
	c, closeFn, err := openController()
	if err != nil {
		return err
	}
	defer closeFn()

	from, _ := c.Current()
	if err := c.AdvanceToNext(); err != nil {
		return err
	}

	to, ok := c.Current()
	if !ok {
		if !nextOpts.quiet {
			fmt.Println(rotation.NoDeviceName)
		}
		return nil
	}
	if to.ID != from.ID {
		recordSwitch(from.ID, to, model.TriggerCLI)
	}
	if !nextOpts.quiet {
		fmt.Println("Now playing on " + to.Name)
	}
	return nil
}

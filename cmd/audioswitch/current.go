package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/rotation"
)

var currentOpts struct {
	showID bool
}

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the current default output device",
	Long: `Show the name of the current default output device.

Prints "No audio device available" when there is none, or when the system
default is not an active output device.`,
	Args: cobra.NoArgs,
	RunE: runCurrent,
}

func init() {
	rootCmd.AddCommand(currentCmd)

	currentCmd.Flags().BoolVar(&currentOpts.showID, "id", false,
		"Print the platform device ID instead of the name")
}

func runCurrent(cmd *cobra.Command, args []string) error {
	c, closeFn, err := openController()
	if err != nil {
		return err
	}
	defer closeFn()

	d, ok := c.Current()
	switch {
	case !ok:
		fmt.Println(rotation.NoDeviceName)
	case currentOpts.showID:
		fmt.Println(d.ID)
	default:
		fmt.Println(d.Name)
	}
	return nil
}

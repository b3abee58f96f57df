package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/config"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/hotkey"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or change the configuration",
	Long: `Inspect or change the audioswitch configuration.

A running audioswitchd picks up changes to the file automatically.`,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configFile()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as TOML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := toml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

var configHotkeyOpts struct {
	list bool
}

var configHotkeyCmd = &cobra.Command{
	Use:   "hotkey [preset|key]",
	Short: "Show or set the rotation hotkey",
	Long: `Show or set the global hotkey that advances to the next device.

The argument is a preset name (` + strings.Join(hotkey.Presets(), ", ") + `)
or a key combination such as "Ctrl+Alt+F12", which selects the custom preset.

Examples:
  audioswitch config hotkey
  audioswitch config hotkey pause_break
  audioswitch config hotkey Ctrl+Shift+F9
  audioswitch config hotkey --list`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigHotkey,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configHotkeyCmd)

	configHotkeyCmd.Flags().BoolVar(&configHotkeyOpts.list, "list", false,
		"List presets and key names")
}

func runConfigHotkey(cmd *cobra.Command, args []string) error {
	if configHotkeyOpts.list {
		fmt.Println("Presets:")
		for _, p := range hotkey.Presets() {
			fmt.Printf("  %-18s %s\n", p, hotkey.PresetLabel(p))
		}
		fmt.Println("Modifiers: Ctrl, Alt, Shift, Win")
		fmt.Println("Keys: " + strings.Join(hotkey.KeyNames(), ", "))
		return nil
	}

	if len(args) == 0 {
		h, err := cfg.ResolveHotkey()
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s)\n", h, hotkey.PresetLabel(cfg.Hotkey.Preset))
		return nil
	}

	next := *cfg
	if err := applyHotkeyArg(&next.Hotkey, args[0]); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	if err := next.Save(globalOpts.configPath); err != nil {
		return err
	}
	cfg = &next

	h, _ := cfg.ResolveHotkey()
	fmt.Printf("Hotkey set to %s\n", h)
	return nil
}

// applyHotkeyArg sets a preset by name, or the custom preset for anything
// that parses as a key combination.
func applyHotkeyArg(hc *config.HotkeyConfig, arg string) error {
	name := strings.ToLower(strings.TrimSpace(arg))
	if _, err := hotkey.Preset(name); err == nil {
		hc.Preset = name
		return nil
	}
	if name == hotkey.PresetCustom {
		hc.Preset = hotkey.PresetCustom
		return nil
	}

	if _, err := hotkey.Parse(arg); err != nil {
		return fmt.Errorf("invalid hotkey %q: %w", arg, err)
	}
	hc.Preset = hotkey.PresetCustom
	hc.Custom = strings.TrimSpace(arg)
	return nil
}

// configFile returns the config file in use.
func configFile() (string, error) {
	if globalOpts.configPath != "" {
		return globalOpts.configPath, nil
	}
	return config.ConfigPath()
}

// Package main provides the CLI entrypoint for audioswitch.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/config"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/platform"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/rotation"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/store"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose     bool
		historyFile string
		configPath  string
		backend     string
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "audioswitch",
	Short: "Switch the default audio output device",
	Long: `audioswitch lists audio output devices and changes which one is the
system default.

Devices rotate in enumeration order: "next" moves the default to the
following device and wraps around at the end. The audioswitchd daemon does
the same from a global hotkey or the tray icon.

Running audioswitch without a subcommand launches the interactive picker.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = config.Load(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if globalOpts.backend != "" {
			cfg.Audio.Backend = globalOpts.backend
		}
		return nil
	},
	// Default to the picker when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPick(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.historyFile, "history-file", "",
		"Path to switch history file (default: <data dir>/audioswitch/history.jsonl)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: <config dir>/audioswitch/config.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.backend, "backend", "",
		"Audio backend (auto, wca, malgo); overrides the config")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// exitCode maps platform failures to distinct exit codes for scripts.
func exitCode(err error) int {
	switch {
	case errors.Is(err, platform.ErrPlatformUnavailable):
		return 3
	case errors.Is(err, platform.ErrDeviceNotFound):
		return 4
	case errors.Is(err, platform.ErrInterfaceUnavailable):
		return 5
	default:
		return 1
	}
}

// openAudio opens the configured platform backend.
func openAudio() (platform.AudioController, error) {
	audio, err := platform.Open(platform.Options{
		Backend: cfg.Audio.Backend,
		Roles:   cfg.Roles(),
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open audio backend: %w", err)
	}
	return audio, nil
}

// openController opens the backend and initializes a controller from the
// current system default. Callers must call the returned close function.
func openController() (*rotation.Controller, func(), error) {
	audio, err := openAudio()
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := audio.Close(); err != nil {
			logger.Debug("failed to close audio backend", "error", err)
		}
	}

	c := rotation.New(audio, logger)
	if err := c.Initialize(); err != nil {
		closeFn()
		return nil, nil, err
	}
	return c, closeFn, nil
}

// historyPath returns the history file in use.
func historyPath() string {
	if globalOpts.historyFile != "" {
		return globalOpts.historyFile
	}
	return config.HistoryPath()
}

// recordSwitch appends a switch to the history log when enabled.
// Failures are logged; the switch itself already happened.
func recordSwitch(from string, to model.Device, trigger model.Trigger) {
	if !cfg.History.Enabled {
		return
	}

	h, err := store.Open(historyPath(), cfg.History.Keep, logger)
	if err != nil {
		logger.Warn("failed to open history", "error", err)
		return
	}
	defer h.Close()

	e, err := model.NewSwitchEvent(from, to, trigger)
	if err == nil {
		err = h.Record(*e)
	}
	if err != nil {
		logger.Warn("failed to record switch", "error", err)
	}
}

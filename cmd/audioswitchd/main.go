// Package main is the entry point for the audioswitchd tray daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/audio"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/autostart"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/config"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/daemon"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/platform"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/store"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/tray"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	// Parse command line flags
	verbose := flag.Bool("verbose", false, "Log at debug level regardless of the config")
	showVersion := flag.Bool("version", false, "Show version and exit")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if *showVersion {
		fmt.Println("audioswitchd version", version)
		os.Exit(0)
	}

	// Set up structured logging; the level follows the config on reload
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := run(*configPath, *verbose, level, logger); err != nil {
		logger.Error("audioswitchd failed", "error", err)
		os.Exit(1)
	}
	logger.Info("audioswitchd stopped")
}

func run(configPath string, verbose bool, level *slog.LevelVar, logger *slog.Logger) error {
	if configPath == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		configPath = p
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// --verbose pins the level; otherwise log.level applies and follows reloads
	reloadLevel := level
	if verbose {
		level.Set(slog.LevelDebug)
		reloadLevel = nil
	} else {
		level.Set(daemon.ParseLogLevel(cfg.Log.Level))
	}

	logger.Info("starting audioswitchd", "version", version, "config", configPath)

	audioCtl, err := platform.Open(platform.Options{
		Backend: cfg.Audio.Backend,
		Roles:   cfg.Roles(),
		Logger:  logger.With("component", "platform"),
	})
	if err != nil {
		return fmt.Errorf("failed to open audio backend: %w", err)
	}
	defer func() {
		if err := audioCtl.Close(); err != nil {
			logger.Warn("error closing audio backend", "error", err)
		}
	}()

	chime := audio.NewChime(audio.ChimeSettings{
		Enabled: cfg.Chime.Enabled,
		Volume:  cfg.Chime.Volume,
		File:    cfg.ChimeFile(),
	}, logger.With("component", "chime"))

	opts := daemon.Options{
		Audio:      audioCtl,
		Config:     cfg,
		ConfigPath: configPath,
		Chime:      chime,
		LogLevel:   reloadLevel,
		Logger:     logger,
	}
	// History is optional; a broken log must not stop the daemon
	if history, err := store.Open(config.HistoryPath(), cfg.History.Keep, logger); err != nil {
		logger.Warn("switch history unavailable", "error", err)
	} else {
		opts.History = history
	}

	var args []string
	if flagSet("config") {
		args = []string{"--config", configPath}
	}
	if entry, err := autostart.New("", args, logger); err != nil {
		logger.Warn("autostart unavailable", "error", err)
	} else {
		opts.Autostart = entry
	}

	d, err := daemon.New(opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := d.Close(); err != nil {
			logger.Warn("error closing daemon", "error", err)
		}
	}()

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	t := tray.New(d, logger.With("component", "tray"))
	d.SetUI(t)
	d.SetExitFunc(stop)

	errCh := make(chan error, 1)
	go func() {
		errCh <- d.Run(ctx)
	}()

	// The tray owns this goroutine until it exits
	trayErr := t.Run(ctx)
	if trayErr != nil {
		logger.Error("tray stopped", "error", trayErr)
	}
	stop()

	if err := <-errCh; err != nil {
		return err
	}
	return trayErr
}

// flagSet reports whether a flag was given on the command line.
func flagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

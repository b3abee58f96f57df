package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/audio"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/config"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/hotkey"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/notify"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/platform"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/rotation"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/store"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/tray"
)

// UI is the visible surface of the daemon, normally the tray.
type UI interface {
	SetTooltip(text string)
	SetMenu(state tray.MenuState)
	RegisterHotkey(hk hotkey.Hotkey) error
}

// Autostarter launches the daemon at login.
type Autostarter interface {
	Enable() error
	Disable() error
	IsEnabled() (bool, error)
}

// NotifierFactory builds a notifier for an announce method.
type NotifierFactory func(method string, logger *slog.Logger) (notify.Notifier, error)

// Options configures a Daemon.
type Options struct {
	Audio      platform.AudioController
	Config     *config.Config
	ConfigPath string // Empty disables hot reload and saving

	History   *store.History // Nil disables the switch log
	Chime     *audio.Chime   // Nil disables the chime
	Autostart Autostarter    // Nil hides autostart

	// NewNotifier defaults to notify.New.
	NewNotifier NotifierFactory

	// LogLevel, when set, follows log.level on reload.
	LogLevel *slog.LevelVar

	Logger *slog.Logger
}

// Daemon coordinates the rotation controller with the tray, notifications,
// the chime, history and configuration.
type Daemon struct {
	logger *slog.Logger

	audio      platform.AudioController
	controller *rotation.Controller
	loop       *Loop
	announcer  *Announcer
	chime      *audio.Chime
	history    *store.History
	autostart  Autostarter
	newNotif   NotifierFactory
	logLevel   *slog.LevelVar

	configPath string
	watcher    *ConfigWatcher

	// Owned by the loop goroutine.
	cfg         *config.Config
	hotkey      hotkey.Hotkey
	ui          UI
	lastID      string
	initialized bool

	exitMu sync.Mutex
	exitFn func()
}

// New creates a Daemon. Nothing touches the platform until Run.
func New(opts Options) (*Daemon, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Audio == nil {
		return nil, errors.New("audio controller is required")
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	newNotif := opts.NewNotifier
	if newNotif == nil {
		newNotif = notify.New
	}
	n, err := newNotif(cfg.Announce.Method, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create notifier: %w", err)
	}

	d := &Daemon{
		logger:     logger,
		audio:      opts.Audio,
		controller: rotation.New(opts.Audio, logger.With("component", "rotation")),
		loop:       NewLoop(DefaultQueueSize, logger),
		announcer:  NewAnnouncer(n, logger),
		chime:      opts.Chime,
		history:    opts.History,
		autostart:  opts.Autostart,
		newNotif:   newNotif,
		logLevel:   opts.LogLevel,
		configPath: opts.ConfigPath,
		cfg:        cfg,
	}

	policy, _ := cfg.Policy()
	d.controller.SetPolicy(policy)
	d.controller.SetChangeCallback(d.onChange)
	d.applyAnnounce(cfg)

	return d, nil
}

// SetUI sets the visible surface. Call before Run.
func (d *Daemon) SetUI(ui UI) {
	d.ui = ui
}

// SetExitFunc sets what Exit calls, typically a context cancel.
func (d *Daemon) SetExitFunc(fn func()) {
	d.exitMu.Lock()
	defer d.exitMu.Unlock()
	d.exitFn = fn
}

// Controller returns the rotation controller. Use it only from the loop.
func (d *Daemon) Controller() *rotation.Controller {
	return d.controller
}

// Loop returns the event loop.
func (d *Daemon) Loop() *Loop {
	return d.loop
}

// Run initializes the controller, subscribes to platform notifications and
// processes events until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	loopCtx, cancelLoop := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelLoop()
	go d.loop.Run(loopCtx)

	// Subscribe first so changes during Initialize queue up behind start.
	unsubscribe, err := d.audio.Subscribe(d.OnNotification)
	if err != nil {
		d.logger.Warn("device notifications unavailable", "error", err)
		unsubscribe = func() {}
	}
	defer unsubscribe()

	if err := d.loop.Do(ctx, d.start); err != nil {
		return err
	}

	if p, ok := platform.Polling(d.audio); ok {
		if err := p.Start(ctx); err != nil {
			d.logger.Warn("failed to start device poller", "error", err)
		} else {
			defer p.Stop()
		}
	}

	if d.configPath != "" {
		if err := d.startWatcher(ctx); err != nil {
			d.logger.Warn("config hot reload disabled", "error", err)
		} else {
			defer d.watcher.Stop()
		}
	}

	d.logger.Info("daemon running")
	<-ctx.Done()
	d.logger.Info("daemon stopping")

	cancelLoop()
	<-d.loop.Done()
	return nil
}

// Close releases the announcer, the chime and the history log.
func (d *Daemon) Close() error {
	var errs []error
	if err := d.announcer.Close(); err != nil {
		errs = append(errs, err)
	}
	if d.chime != nil {
		d.chime.Close()
	}
	if d.history != nil {
		if err := d.history.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *Daemon) startWatcher(ctx context.Context) error {
	w, err := NewConfigWatcher(d.configPath, d.logger)
	if err != nil {
		return err
	}
	w.SetReloadCallback(func(cfg *config.Config) {
		d.loop.Post(func() { d.applyConfig(cfg) })
	})
	w.SetErrorCallback(func(err error) {
		d.loop.Post(func() { d.announcer.NotifyConfigError(err) })
	})
	if err := w.Start(ctx, d.cfg); err != nil {
		return err
	}
	d.watcher = w
	return nil
}

// start runs on the loop.
func (d *Daemon) start() {
	if err := d.controller.Initialize(); err != nil {
		d.announcer.NotifyError("Audio devices unavailable", err)
	}
	if cur, ok := d.controller.Current(); ok {
		d.lastID = cur.ID
	}
	d.initialized = true

	d.registerHotkey(d.cfg)
	d.syncAutostart(d.cfg)
	d.updateUI(d.controller.Snapshot())

	d.logger.Info("device rotation ready",
		"devices", len(d.controller.Devices()),
		"current", d.controller.CurrentDeviceName(),
		"hotkey", d.hotkey.String(),
	)
}

// Next posts a rotation to the next device.
func (d *Daemon) Next(trigger model.Trigger) {
	d.loop.Post(func() { _ = d.advance(trigger) })
}

// Refresh posts a device re-enumeration.
func (d *Daemon) Refresh() {
	d.loop.Post(func() { _ = d.refresh() })
}

// SelectPreset posts a hotkey preset change.
func (d *Daemon) SelectPreset(name string) {
	d.loop.Post(func() { _ = d.selectPreset(name) })
}

// ToggleAutostart posts an autostart toggle.
func (d *Daemon) ToggleAutostart() {
	d.loop.Post(func() { _ = d.toggleAutostart() })
}

// Exit asks the daemon to stop.
func (d *Daemon) Exit() {
	d.exitMu.Lock()
	fn := d.exitFn
	d.exitMu.Unlock()

	if fn != nil {
		fn()
	}
}

// OnNotification posts a platform notification. Safe from any goroutine.
func (d *Daemon) OnNotification(n platform.Notification) {
	if !d.loop.Post(func() { d.handleNotification(n) }) {
		d.logger.Warn("dropped device notification", "kind", n.Kind, "device", n.DeviceID)
	}
}

// ApplyConfig posts a configuration change.
func (d *Daemon) ApplyConfig(cfg *config.Config) {
	d.loop.Post(func() { d.applyConfig(cfg) })
}

func (d *Daemon) advance(trigger model.Trigger) error {
	from, _ := d.controller.Current()

	if err := d.controller.TriggerAdvance(); err != nil {
		d.announcer.NotifyError("Switch failed", err)
		return err
	}

	to, ok := d.controller.Current()
	if !ok || to.ID == from.ID {
		return nil
	}
	d.switched(from.ID, to, trigger)
	return nil
}

func (d *Daemon) refresh() error {
	if err := d.controller.TriggerRefresh(); err != nil {
		d.announcer.NotifyError("Refresh failed", err)
		return err
	}
	return nil
}

func (d *Daemon) handleNotification(n platform.Notification) {
	if err := d.controller.HandleNotification(n); err != nil {
		d.logger.Warn("failed to reconcile device notification", "kind", n.Kind, "error", err)
	}
}

// switched records a daemon-initiated switch and plays the chime.
func (d *Daemon) switched(fromID string, to model.Device, trigger model.Trigger) {
	if d.history != nil && d.cfg.History.Enabled {
		e, err := model.NewSwitchEvent(fromID, to, trigger)
		if err == nil {
			err = d.history.Record(*e)
		}
		if err != nil {
			d.logger.Warn("failed to record switch", "error", err)
		}
	}

	if d.chime != nil {
		// Playback opens the new default; keep it off the loop.
		go func() {
			if err := d.chime.Play(); err != nil {
				d.logger.Warn("failed to play chime", "error", err)
			}
		}()
	}
}

// onChange runs on the loop after every controller change.
func (d *Daemon) onChange(s rotation.Snapshot) {
	d.updateUI(s)

	id := ""
	cur, ok := s.Current()
	if ok {
		id = cur.ID
	}
	prev := d.lastID
	d.lastID = id

	if !d.initialized || id == prev {
		return
	}
	if ok {
		d.announcer.NotifySwitched(cur.Name)
	} else if s.State == rotation.StateEmpty {
		d.announcer.NotifyNoDevices()
	}
}

func (d *Daemon) updateUI(s rotation.Snapshot) {
	if d.ui == nil {
		return
	}
	d.ui.SetTooltip(s.Name())
	d.ui.SetMenu(d.menuState(s))
}

func (d *Daemon) menuState(s rotation.Snapshot) tray.MenuState {
	return tray.MenuState{
		Device:    s.Name(),
		Preset:    d.cfg.Hotkey.Preset,
		Presets:   hotkey.Presets(),
		Autostart: d.cfg.Startup.Autostart,
	}
}

// registerHotkey binds the hotkey cfg selects. The UI drops the old binding
// before trying the new one, so on failure the previous key is re-registered
// and d.hotkey always names what is actually bound.
func (d *Daemon) registerHotkey(cfg *config.Config) error {
	hk, err := cfg.ResolveHotkey()
	if err != nil {
		d.announcer.NotifyError("Invalid hotkey", err)
		return err
	}
	if hk == d.hotkey {
		return nil
	}
	if d.ui == nil {
		d.hotkey = hk
		return nil
	}

	prev := d.hotkey
	if err := d.ui.RegisterHotkey(hk); err != nil {
		if errors.Is(err, tray.ErrUnsupported) {
			d.logger.Debug("global hotkey not supported here", "hotkey", hk.String())
			d.hotkey = hk
			return nil
		}
		d.hotkey = hotkey.Hotkey{}
		d.announcer.NotifyError("Hotkey unavailable", fmt.Errorf("failed to register %s: %w", hk, err))
		d.restoreHotkey(prev)
		return err
	}
	d.hotkey = hk
	d.logger.Info("registered hotkey", "hotkey", hk.String())
	return nil
}

func (d *Daemon) restoreHotkey(prev hotkey.Hotkey) {
	if prev.IsZero() {
		return
	}
	if err := d.ui.RegisterHotkey(prev); err != nil {
		d.logger.Warn("failed to restore previous hotkey", "hotkey", prev.String(), "error", err)
		return
	}
	d.hotkey = prev
	d.logger.Info("restored previous hotkey", "hotkey", prev.String())
}

// selectPreset switches the hotkey preset. The config is saved only when the
// new key could be registered.
func (d *Daemon) selectPreset(name string) error {
	if name == d.cfg.Hotkey.Preset {
		return nil
	}

	next := *d.cfg
	next.Hotkey.Preset = name
	if err := next.Validate(); err != nil {
		d.announcer.NotifyError("Invalid hotkey", err)
		return err
	}

	prev := d.cfg
	d.cfg = &next
	if err := d.registerHotkey(d.cfg); err != nil {
		d.cfg = prev
		d.updateUI(d.controller.Snapshot())
		return err
	}
	d.updateUI(d.controller.Snapshot())
	return d.save()
}

func (d *Daemon) toggleAutostart() error {
	next := *d.cfg
	next.Startup.Autostart = !d.cfg.Startup.Autostart
	d.cfg = &next

	err := d.syncAutostart(d.cfg)
	d.updateUI(d.controller.Snapshot())
	if err != nil {
		return err
	}
	return d.save()
}

// syncAutostart makes the login entry match cfg.
func (d *Daemon) syncAutostart(cfg *config.Config) error {
	if d.autostart == nil {
		return nil
	}

	enabled, err := d.autostart.IsEnabled()
	if err != nil {
		d.logger.Warn("failed to read autostart state", "error", err)
	}
	if err == nil && enabled == cfg.Startup.Autostart {
		return nil
	}

	if cfg.Startup.Autostart {
		err = d.autostart.Enable()
	} else {
		err = d.autostart.Disable()
	}
	if err != nil {
		d.announcer.NotifyError("Autostart failed", err)
		return err
	}
	d.logger.Info("autostart updated", "enabled", cfg.Startup.Autostart)
	return nil
}

func (d *Daemon) save() error {
	if d.configPath == "" {
		return nil
	}
	if err := d.cfg.Save(d.configPath); err != nil {
		d.announcer.NotifyError("Failed to save settings", err)
		return err
	}
	return nil
}

// applyConfig runs on the loop after a reload.
func (d *Daemon) applyConfig(cfg *config.Config) {
	if cfg == nil || reflect.DeepEqual(cfg, d.cfg) {
		return
	}
	old := d.cfg
	d.cfg = cfg

	policy, _ := cfg.Policy()
	d.controller.SetPolicy(policy)

	d.applyAnnounce(cfg)
	if old.Announce.Method != cfg.Announce.Method {
		n, err := d.newNotif(cfg.Announce.Method, d.logger)
		if err != nil {
			d.logger.Warn("failed to switch notifier", "method", cfg.Announce.Method, "error", err)
		} else {
			d.announcer.SetNotifier(n)
		}
	}

	if d.chime != nil {
		d.chime.Apply(audio.ChimeSettings{
			Enabled: cfg.Chime.Enabled,
			Volume:  cfg.Chime.Volume,
			File:    cfg.ChimeFile(),
		})
	}
	if d.history != nil {
		d.history.SetKeep(cfg.History.Keep)
	}
	if d.logLevel != nil {
		d.logLevel.Set(ParseLogLevel(cfg.Log.Level))
	}

	if old.Audio.Backend != cfg.Audio.Backend || !reflect.DeepEqual(old.Audio.Roles, cfg.Audio.Roles) {
		d.logger.Warn("audio backend settings change on next start",
			"backend", cfg.Audio.Backend, "roles", strings.Join(cfg.Audio.Roles, ","))
	}

	d.registerHotkey(cfg)
	d.syncAutostart(cfg)
	d.updateUI(d.controller.Snapshot())
	d.announcer.NotifyConfigReloaded()
}

func (d *Daemon) applyAnnounce(cfg *config.Config) {
	d.announcer.SetEnabled(cfg.Announce.Enabled)
	d.announcer.SetMinInterval(cfg.Announce.MinInterval.Duration())
}

// ParseLogLevel maps a config level name to a slog level. Unknown names are info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

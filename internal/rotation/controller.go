package rotation

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/platform"
)

// Unselected is the selection index when no device is selected.
const Unselected = -1

// NoDeviceName is shown when there is no selected device.
const NoDeviceName = "No audio device available"

// State is the controller lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateEmpty
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateEmpty:
		return "empty"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is a copy of the controller state for display.
type Snapshot struct {
	Devices  []model.Device
	Selected int
	State    State
}

// Current returns the selected device, if any.
func (s Snapshot) Current() (model.Device, bool) {
	if s.Selected < 0 || s.Selected >= len(s.Devices) {
		return model.Device{}, false
	}
	return s.Devices[s.Selected], true
}

// Name returns the selected device name or NoDeviceName.
func (s Snapshot) Name() string {
	if d, ok := s.Current(); ok {
		return d.Name
	}
	return NoDeviceName
}

// Controller tracks the device list and which device is the current default.
type Controller struct {
	audio  platform.AudioController
	logger *slog.Logger
	policy Policy

	devices  []model.Device
	selected int
	state    State

	onChange func(Snapshot)
}

// New creates a Controller in the uninitialized state.
func New(audio platform.AudioController, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		audio:    audio,
		logger:   logger,
		policy:   DefaultPolicy(),
		selected: Unselected,
		state:    StateUninitialized,
	}
}

// SetPolicy sets the hotplug reconciliation policy.
func (c *Controller) SetPolicy(p Policy) {
	if p.OnAdded == "" {
		p.OnAdded = ActionRefresh
	}
	if p.OnRemoved == "" {
		p.OnRemoved = ActionRefresh
	}
	c.policy = p
}

// Policy returns the current reconciliation policy.
func (c *Controller) Policy() Policy {
	return c.policy
}

// SetChangeCallback sets the callback invoked after the list or selection changes.
func (c *Controller) SetChangeCallback(fn func(Snapshot)) {
	c.onChange = fn
}

// Initialize enumerates devices and selects the platform default.
// If the default is not in the list the selection stays Unselected.
func (c *Controller) Initialize() error {
	devices, err := c.audio.Enumerate()
	if err != nil {
		c.clear()
		c.notify()
		return fmt.Errorf("failed to enumerate devices: %w", wrapUnavailable(err))
	}

	c.devices = devices
	c.selected = model.IndexOf(devices, c.defaultID())
	c.settle()

	c.logger.Debug("initialized device rotation", "devices", len(devices), "selected", c.selected)
	c.notify()
	return nil
}

// Refresh re-enumerates and reselects the platform default, falling back to
// the first device when the default is not in the new list.
func (c *Controller) Refresh() error {
	devices, err := c.audio.Enumerate()
	if err != nil {
		c.clear()
		c.notify()
		return fmt.Errorf("failed to refresh devices: %w", wrapUnavailable(err))
	}

	c.devices = devices
	c.selected = model.IndexOf(devices, c.defaultID())
	if c.selected == Unselected && len(devices) > 0 {
		c.selected = 0
	}
	c.settle()

	c.logger.Debug("refreshed devices", "devices", len(devices), "selected", c.selected)
	c.notify()
	return nil
}

// AdvanceToNext makes the next device in the list the default.
// The selection only moves once the platform accepts the change.
func (c *Controller) AdvanceToNext() error {
	n := len(c.devices)
	if n == 0 {
		return nil
	}

	cur := c.selected
	if cur < 0 || cur >= n {
		cur = Unselected
	}
	next := (cur + 1) % n

	return c.apply(next)
}

// Select makes the device with the given ID the default.
func (c *Controller) Select(id string) error {
	idx := model.IndexOf(c.devices, id)
	if idx < 0 {
		return fmt.Errorf("device %q is not in the current list: %w", id, platform.ErrDeviceNotFound)
	}
	return c.apply(idx)
}

func (c *Controller) apply(idx int) error {
	target := c.devices[idx]
	if err := c.audio.SetDefault(target.ID); err != nil {
		c.logger.Debug("set default rejected", "device", target.ID, "error", err)
		return fmt.Errorf("failed to switch to %s: %w", target.Name, err)
	}

	c.selected = idx
	c.logger.Info("switched default device", "device", target.Name, "index", idx)
	c.notify()
	return nil
}

// HandleNotification reconciles state with a platform notification.
func (c *Controller) HandleNotification(n platform.Notification) error {
	c.logger.Debug("device notification", "kind", n.Kind, "device", n.DeviceID, "state", n.State)

	switch n.Kind {
	case platform.DefaultDeviceChanged:
		idx := model.IndexOf(c.devices, n.DeviceID)
		if idx < 0 || idx == c.selected {
			return nil
		}
		c.selected = idx
		c.notify()
		return nil

	case platform.DeviceAdded:
		if c.policy.OnAdded == ActionIgnore {
			return nil
		}
		return c.Refresh()

	case platform.DeviceRemoved:
		if c.policy.OnRemoved == ActionIgnore {
			if c.selected >= 0 && c.selected < len(c.devices) && c.devices[c.selected].ID == n.DeviceID {
				c.selected = Unselected
				c.notify()
			}
			return nil
		}
		return c.Refresh()

	case platform.DeviceStateChanged:
		return c.Refresh()

	default:
		return fmt.Errorf("unknown notification kind %v", n.Kind)
	}
}

// TriggerAdvance is the hotkey and tray entry point for AdvanceToNext.
func (c *Controller) TriggerAdvance() error {
	return c.AdvanceToNext()
}

// TriggerRefresh is the tray entry point for Refresh.
func (c *Controller) TriggerRefresh() error {
	return c.Refresh()
}

// CurrentDeviceName returns the selected device name or NoDeviceName.
func (c *Controller) CurrentDeviceName() string {
	if d, ok := c.Current(); ok {
		return d.Name
	}
	return NoDeviceName
}

// Current returns the selected device, if any.
func (c *Controller) Current() (model.Device, bool) {
	if c.selected < 0 || c.selected >= len(c.devices) {
		return model.Device{}, false
	}
	return c.devices[c.selected], true
}

// Devices returns a copy of the device list.
func (c *Controller) Devices() []model.Device {
	return model.Clone(c.devices)
}

// Selected returns the selection index or Unselected.
func (c *Controller) Selected() int {
	return c.selected
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Devices:  model.Clone(c.devices),
		Selected: c.selected,
		State:    c.state,
	}
}

// defaultID returns "" when the platform cannot report a default.
func (c *Controller) defaultID() string {
	id, err := c.audio.DefaultDevice()
	if err != nil {
		c.logger.Warn("failed to read default device", "error", err)
		return ""
	}
	return id
}

func (c *Controller) clear() {
	c.devices = nil
	c.selected = Unselected
	c.state = StateEmpty
}

func (c *Controller) settle() {
	if len(c.devices) == 0 {
		c.selected = Unselected
		c.state = StateEmpty
		return
	}
	c.state = StateReady
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange(c.Snapshot())
	}
}

func wrapUnavailable(err error) error {
	if errors.Is(err, platform.ErrPlatformUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", platform.ErrPlatformUnavailable, err)
}

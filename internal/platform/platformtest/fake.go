// Package platformtest provides an in-memory platform.AudioController for tests.
package platformtest

import (
	"fmt"
	"sync"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/platform"
)

// Fake is an in-memory AudioController. The zero value is not usable; use New.
type Fake struct {
	mu sync.Mutex

	devices     []model.Device
	defaultID   string
	subscribers map[int]func(platform.Notification)
	nextSub     int
	closed      bool

	// Injected failures.
	enumerateErr  error
	defaultErr    error
	setDefaultErr error

	setDefaultCalls []string
	enumerateCalls  int
}

// New returns a Fake with the given devices and default ID.
func New(defaultID string, devices ...model.Device) *Fake {
	return &Fake{
		devices:     model.Clone(devices),
		defaultID:   defaultID,
		subscribers: make(map[int]func(platform.Notification)),
	}
}

// Devices builds devices named "Device N" with IDs "dev-N" for N in 1..n.
func Devices(n int) []model.Device {
	out := make([]model.Device, n)
	for i := range out {
		out[i] = model.Device{
			ID:   fmt.Sprintf("dev-%d", i+1),
			Name: fmt.Sprintf("Device %d", i+1),
		}
	}
	return out
}

// Enumerate implements platform.AudioController.
func (f *Fake) Enumerate() ([]model.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.enumerateCalls++
	if f.enumerateErr != nil {
		return nil, f.enumerateErr
	}
	return model.Clone(f.devices), nil
}

// DefaultDevice implements platform.AudioController.
func (f *Fake) DefaultDevice() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.defaultErr != nil {
		return "", f.defaultErr
	}
	return f.defaultID, nil
}

// SetDefault implements platform.AudioController.
func (f *Fake) SetDefault(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.setDefaultCalls = append(f.setDefaultCalls, id)
	if f.setDefaultErr != nil {
		return f.setDefaultErr
	}
	if model.IndexOf(f.devices, id) < 0 {
		return fmt.Errorf("set default %q: %w", id, platform.ErrDeviceNotFound)
	}
	f.defaultID = id
	return nil
}

// Subscribe implements platform.AudioController.
func (f *Fake) Subscribe(fn func(platform.Notification)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextSub
	f.nextSub++
	f.subscribers[id] = fn

	return func() {
		f.mu.Lock()
		delete(f.subscribers, id)
		f.mu.Unlock()
	}, nil
}

// Close implements platform.AudioController.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// FailEnumerate makes Enumerate return err (nil clears it).
func (f *Fake) FailEnumerate(err error) {
	f.mu.Lock()
	f.enumerateErr = err
	f.mu.Unlock()
}

// FailDefault makes DefaultDevice return err (nil clears it).
func (f *Fake) FailDefault(err error) {
	f.mu.Lock()
	f.defaultErr = err
	f.mu.Unlock()
}

// FailSetDefault makes SetDefault return err (nil clears it).
func (f *Fake) FailSetDefault(err error) {
	f.mu.Lock()
	f.setDefaultErr = err
	f.mu.Unlock()
}

// SetDevices replaces the device list without notifying subscribers.
func (f *Fake) SetDevices(devices ...model.Device) {
	f.mu.Lock()
	f.devices = model.Clone(devices)
	f.mu.Unlock()
}

// SetDefaultID changes the default without notifying subscribers.
func (f *Fake) SetDefaultID(id string) {
	f.mu.Lock()
	f.defaultID = id
	f.mu.Unlock()
}

// AddDevice appends d and emits DeviceAdded.
func (f *Fake) AddDevice(d model.Device) {
	f.mu.Lock()
	f.devices = append(f.devices, d)
	f.mu.Unlock()
	f.Emit(platform.Notification{Kind: platform.DeviceAdded, DeviceID: d.ID})
}

// RemoveDevice removes the device with id and emits DeviceRemoved.
// If it was the default, the default becomes unset.
func (f *Fake) RemoveDevice(id string) {
	f.mu.Lock()
	if idx := model.IndexOf(f.devices, id); idx >= 0 {
		f.devices = append(f.devices[:idx:idx], f.devices[idx+1:]...)
	}
	if f.defaultID == id {
		f.defaultID = ""
	}
	f.mu.Unlock()
	f.Emit(platform.Notification{Kind: platform.DeviceRemoved, DeviceID: id})
}

// ChangeDefault sets the default externally and emits DefaultDeviceChanged.
func (f *Fake) ChangeDefault(id string) {
	f.SetDefaultID(id)
	f.Emit(platform.Notification{Kind: platform.DefaultDeviceChanged, DeviceID: id})
}

// Emit delivers n synchronously to all subscribers.
func (f *Fake) Emit(n platform.Notification) {
	f.mu.Lock()
	subs := make([]func(platform.Notification), 0, len(f.subscribers))
	for _, fn := range f.subscribers {
		subs = append(subs, fn)
	}
	f.mu.Unlock()

	for _, fn := range subs {
		fn(n)
	}
}

// Subscribers returns the number of registered subscribers.
func (f *Fake) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}

// SetDefaultCalls returns the IDs passed to SetDefault, in order.
func (f *Fake) SetDefaultCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.setDefaultCalls))
	copy(out, f.setDefaultCalls)
	return out
}

// EnumerateCalls returns how many times Enumerate was called.
func (f *Fake) EnumerateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enumerateCalls
}

// CurrentDefault returns the default ID without counting as a call.
func (f *Fake) CurrentDefault() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.defaultID
}

var _ platform.AudioController = (*Fake)(nil)

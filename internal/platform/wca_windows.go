//go:build windows

package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/go-ole/go-ole"
	"github.com/moutend/go-wca/pkg/wca"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
)

// wcaController talks to Windows Core Audio. Every COM call runs on a single
// OS-locked worker goroutine; notification callbacks arrive on COM threads.
type wcaController struct {
	logger *slog.Logger
	roles  []Role

	calls     chan func()
	done      chan struct{}
	closeOnce sync.Once

	mmde *wca.IMMDeviceEnumerator

	mu          sync.Mutex
	subscribers map[int]func(Notification)
	nextSub     int
	client      *wca.IMMNotificationClient
}

// newWCAController starts the COM worker and creates the device enumerator.
func newWCAController(roles []Role, logger *slog.Logger) (*wcaController, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(roles) == 0 {
		roles = DefaultRoles
	}

	c := &wcaController{
		logger:      logger,
		roles:       roles,
		calls:       make(chan func()),
		done:        make(chan struct{}),
		subscribers: make(map[int]func(Notification)),
	}

	ready := make(chan error, 1)
	go c.worker(ready)
	if err := <-ready; err != nil {
		return nil, err
	}
	return c, nil
}

func (c *wcaController) worker(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		// S_FALSE means COM was already initialized on this thread.
		var oleErr *ole.OleError
		if !errors.As(err, &oleErr) || oleErr.Code() != 1 {
			ready <- fmt.Errorf("failed to initialize COM: %w: %v", ErrPlatformUnavailable, err)
			return
		}
	}
	defer ole.CoUninitialize()

	if err := wca.CoCreateInstance(wca.CLSID_MMDeviceEnumerator, 0, wca.CLSCTX_ALL, wca.IID_IMMDeviceEnumerator, &c.mmde); err != nil {
		ready <- fmt.Errorf("failed to create device enumerator: %w: %v", ErrPlatformUnavailable, err)
		return
	}
	ready <- nil

	for {
		select {
		case fn := <-c.calls:
			fn()
		case <-c.done:
			c.shutdown()
			return
		}
	}
}

// do runs fn on the COM worker and waits for it.
func (c *wcaController) do(fn func() error) error {
	errCh := make(chan error, 1)
	select {
	case c.calls <- func() { errCh <- fn() }:
	case <-c.done:
		return fmt.Errorf("audio controller closed: %w", ErrPlatformUnavailable)
	}
	return <-errCh
}

// Enumerate lists active render endpoints with their friendly names.
func (c *wcaController) Enumerate() ([]model.Device, error) {
	var devices []model.Device
	err := c.do(func() error {
		var dc *wca.IMMDeviceCollection
		if err := c.mmde.EnumAudioEndpoints(wca.ERender, wca.DEVICE_STATE_ACTIVE, &dc); err != nil {
			return fmt.Errorf("failed to enumerate endpoints: %w: %v", ErrPlatformUnavailable, err)
		}
		defer dc.Release()

		var count uint32
		if err := dc.GetCount(&count); err != nil {
			return fmt.Errorf("failed to count endpoints: %w: %v", ErrPlatformUnavailable, err)
		}

		devices = make([]model.Device, 0, count)
		for i := uint32(0); i < count; i++ {
			var mmd *wca.IMMDevice
			if err := dc.Item(i, &mmd); err != nil {
				c.logger.Debug("skipping endpoint", "index", i, "error", err)
				continue
			}
			d, err := describe(mmd)
			mmd.Release()
			if err != nil {
				c.logger.Debug("skipping endpoint", "index", i, "error", err)
				continue
			}
			devices = append(devices, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return devices, nil
}

func describe(mmd *wca.IMMDevice) (model.Device, error) {
	var id string
	if err := mmd.GetId(&id); err != nil {
		return model.Device{}, fmt.Errorf("failed to read endpoint id: %w", err)
	}

	var ps *wca.IPropertyStore
	if err := mmd.OpenPropertyStore(wca.STGM_READ, &ps); err != nil {
		return model.Device{ID: id, Name: id}, nil
	}
	defer ps.Release()

	var pv wca.PROPVARIANT
	if err := ps.GetValue(&wca.PKEY_Device_FriendlyName, &pv); err != nil {
		return model.Device{ID: id, Name: id}, nil
	}
	name := pv.String()
	if name == "" {
		name = id
	}
	return model.Device{ID: id, Name: name}, nil
}

// DefaultDevice returns the default multimedia render endpoint, or "".
func (c *wcaController) DefaultDevice() (string, error) {
	var id string
	err := c.do(func() error {
		var mmd *wca.IMMDevice
		if err := c.mmde.GetDefaultAudioEndpoint(wca.ERender, wca.EMultimedia, &mmd); err != nil {
			// E_NOTFOUND: no default endpoint is set.
			if isHRESULT(err, hrNotFound) {
				return nil
			}
			return fmt.Errorf("failed to get default endpoint: %w: %v", ErrPlatformUnavailable, err)
		}
		defer mmd.Release()
		return mmd.GetId(&id)
	})
	return id, err
}

// SetDefault makes id the default for every configured role.
func (c *wcaController) SetDefault(id string) error {
	return c.do(func() error {
		return setDefaultEndpoint(id, c.roles)
	})
}

// Subscribe registers fn. The first subscriber registers the COM
// notification client; the last unsubscribe removes it.
func (c *wcaController) Subscribe(fn func(Notification)) (func(), error) {
	c.mu.Lock()
	needClient := c.client == nil
	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn
	c.mu.Unlock()

	if needClient {
		if err := c.registerClient(); err != nil {
			c.mu.Lock()
			delete(c.subscribers, id)
			c.mu.Unlock()
			return nil, err
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subscribers, id)
			empty := len(c.subscribers) == 0
			c.mu.Unlock()
			if empty {
				c.unregisterClient()
			}
		})
	}, nil
}

func (c *wcaController) registerClient() error {
	client := wca.NewIMMNotificationClient(wca.IMMNotificationClientCallback{
		OnDefaultDeviceChanged: func(flow wca.EDataFlow, role wca.ERole, id string) error {
			if flow != wca.ERender || role != wca.EMultimedia {
				return nil
			}
			c.dispatch(Notification{Kind: DefaultDeviceChanged, DeviceID: id})
			return nil
		},
		OnDeviceAdded: func(id string) error {
			c.dispatch(Notification{Kind: DeviceAdded, DeviceID: id})
			return nil
		},
		OnDeviceRemoved: func(id string) error {
			c.dispatch(Notification{Kind: DeviceRemoved, DeviceID: id})
			return nil
		},
		OnDeviceStateChanged: func(id string, state uint64) error {
			c.dispatch(Notification{Kind: DeviceStateChanged, DeviceID: id, State: DeviceState(state)})
			return nil
		},
		OnPropertyValueChanged: func(string, uint64) error {
			return nil
		},
	})

	err := c.do(func() error {
		if err := c.mmde.RegisterEndpointNotificationCallback(client); err != nil {
			return fmt.Errorf("failed to register notification client: %w: %v", ErrPlatformUnavailable, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.client = client
	c.mu.Unlock()
	c.logger.Debug("registered endpoint notification client")
	return nil
}

func (c *wcaController) unregisterClient() {
	c.mu.Lock()
	client := c.client
	c.client = nil
	c.mu.Unlock()
	if client == nil {
		return
	}

	err := c.do(func() error {
		return c.mmde.UnregisterEndpointNotificationCallback(client)
	})
	if err != nil {
		c.logger.Debug("failed to unregister notification client", "error", err)
	}
}

// dispatch runs on a COM notification thread. Subscribers must not call back
// into the controller synchronously.
func (c *wcaController) dispatch(n Notification) {
	c.mu.Lock()
	subs := make([]func(Notification), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(n)
	}
}

// Close unregisters notifications and releases COM objects.
func (c *wcaController) Close() error {
	c.closeOnce.Do(func() {
		c.unregisterClient()
		close(c.done)
	})
	return nil
}

// shutdown runs on the worker after done is closed.
func (c *wcaController) shutdown() {
	if c.mmde != nil {
		c.mmde.Release()
		c.mmde = nil
	}
}

var _ AudioController = (*wcaController)(nil)

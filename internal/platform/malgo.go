package platform

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
)

// malgoController enumerates playback devices through miniaudio. It cannot
// change the system default and has no push notifications; wrap it in a Poller.
type malgoController struct {
	logger *slog.Logger
	mu     sync.Mutex
	closed bool
}

func newMalgoController(logger *slog.Logger) (*malgoController, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &malgoController{logger: logger}

	// Probe once so a missing audio stack is reported at startup.
	if _, _, err := c.list(); err != nil {
		return nil, err
	}
	return c, nil
}

// list opens a fresh context per call; miniaudio caches the device list
// for the lifetime of a context.
func (c *malgoController) list() ([]model.Device, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, "", fmt.Errorf("audio controller closed: %w", ErrPlatformUnavailable)
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to init audio context: %w: %v", ErrPlatformUnavailable, err)
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	infos, err := ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, "", fmt.Errorf("failed to enumerate devices: %w: %v", ErrPlatformUnavailable, err)
	}

	devices := make([]model.Device, 0, len(infos))
	var defaultID string
	for _, info := range infos {
		d := model.Device{
			ID:   strings.TrimRight(info.ID.String(), "\x00"),
			Name: info.Name(),
		}
		if d.ID == "" {
			d.ID = d.Name
		}
		devices = append(devices, d)
		if info.IsDefault != 0 && defaultID == "" {
			defaultID = d.ID
		}
	}
	return devices, defaultID, nil
}

func (c *malgoController) Enumerate() ([]model.Device, error) {
	devices, _, err := c.list()
	return devices, err
}

func (c *malgoController) DefaultDevice() (string, error) {
	_, id, err := c.list()
	return id, err
}

// SetDefault always fails: miniaudio has no API for the system default.
func (c *malgoController) SetDefault(id string) error {
	return fmt.Errorf("cannot set default device %q with miniaudio backend: %w", id, ErrInterfaceUnavailable)
}

// Subscribe accepts fn but never calls it.
func (c *malgoController) Subscribe(fn func(Notification)) (func(), error) {
	return func() {}, nil
}

func (c *malgoController) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

var _ AudioController = (*malgoController)(nil)

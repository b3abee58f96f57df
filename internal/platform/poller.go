package platform

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
)

// DefaultPollInterval is the enumeration interval used by NewPoller.
const DefaultPollInterval = 2 * time.Second

// Poller wraps an AudioController whose backend has no push notifications.
// It enumerates on an interval and synthesizes notifications from the
// difference between consecutive snapshots. All other calls are delegated.
type Poller struct {
	mu     sync.RWMutex
	logger *slog.Logger
	src    AudioController

	pollInterval time.Duration

	lastDevices []model.Device
	lastDefault string
	primed      bool

	subscribers map[int]func(Notification)
	nextSub     int

	stopCh chan struct{}
	doneCh chan struct{}

	running bool
}

// NewPoller creates a Poller around src.
func NewPoller(src AudioController, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		logger:       logger,
		src:          src,
		pollInterval: DefaultPollInterval,
		subscribers:  make(map[int]func(Notification)),
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// SetPollInterval sets the enumeration interval.
func (p *Poller) SetPollInterval(interval time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pollInterval = interval
}

// Enumerate delegates to the wrapped controller.
func (p *Poller) Enumerate() ([]model.Device, error) {
	return p.src.Enumerate()
}

// DefaultDevice delegates to the wrapped controller.
func (p *Poller) DefaultDevice() (string, error) {
	return p.src.DefaultDevice()
}

// SetDefault delegates to the wrapped controller.
func (p *Poller) SetDefault(id string) error {
	return p.src.SetDefault(id)
}

// Subscribe registers fn for synthesized notifications.
func (p *Poller) Subscribe(fn func(Notification)) (func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSub
	p.nextSub++
	p.subscribers[id] = fn

	return func() {
		p.mu.Lock()
		delete(p.subscribers, id)
		p.mu.Unlock()
	}, nil
}

// Start takes an initial snapshot and begins polling.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	interval := p.pollInterval
	p.mu.Unlock()

	if err := p.prime(); err != nil {
		p.logger.Debug("initial poll failed", "error", err)
	}

	go p.pollLoop(ctx, interval)

	p.logger.Debug("device poller started", "interval", interval)
	return nil
}

// Stop halts polling and waits for the loop to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopCh)
	p.mu.Unlock()

	<-p.doneCh
	p.logger.Debug("device poller stopped")
}

// Close stops polling and closes the wrapped controller.
func (p *Poller) Close() error {
	p.Stop()
	return p.src.Close()
}

func (p *Poller) pollLoop(ctx context.Context, interval time.Duration) {
	defer close(p.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			if err := p.Poll(); err != nil {
				p.logger.Debug("device poll failed", "error", err)
			}
		}
	}
}

func (p *Poller) prime() error {
	devices, def, err := p.snapshot()
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.lastDevices = devices
	p.lastDefault = def
	p.primed = true
	p.mu.Unlock()
	return nil
}

// Poll enumerates once and dispatches notifications for any change since the
// previous poll. The first successful poll only records a baseline.
func (p *Poller) Poll() error {
	devices, def, err := p.snapshot()
	if err != nil {
		return err
	}

	p.mu.Lock()
	if !p.primed {
		p.lastDevices = devices
		p.lastDefault = def
		p.primed = true
		p.mu.Unlock()
		return nil
	}
	changes := Diff(p.lastDevices, devices, p.lastDefault, def)
	p.lastDevices = devices
	p.lastDefault = def
	subs := make([]func(Notification), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, n := range changes {
		p.logger.Debug("device change detected", "kind", n.Kind, "device", n.DeviceID)
		for _, fn := range subs {
			fn(n)
		}
	}
	return nil
}

func (p *Poller) snapshot() ([]model.Device, string, error) {
	devices, err := p.src.Enumerate()
	if err != nil {
		return nil, "", fmt.Errorf("failed to enumerate devices: %w", err)
	}
	def, err := p.src.DefaultDevice()
	if err != nil {
		def = ""
	}
	return devices, def, nil
}

// Diff returns the notifications that turn prev into cur: removals first, then
// additions, then a default change. Order within each group follows the lists.
func Diff(prev, cur []model.Device, prevDefault, curDefault string) []Notification {
	var out []Notification

	for _, d := range prev {
		if model.IndexOf(cur, d.ID) < 0 {
			out = append(out, Notification{Kind: DeviceRemoved, DeviceID: d.ID})
		}
	}
	for _, d := range cur {
		if model.IndexOf(prev, d.ID) < 0 {
			out = append(out, Notification{Kind: DeviceAdded, DeviceID: d.ID})
		}
	}
	if curDefault != prevDefault && curDefault != "" {
		out = append(out, Notification{Kind: DefaultDeviceChanged, DeviceID: curDefault})
	}
	return out
}

var _ AudioController = (*Poller)(nil)

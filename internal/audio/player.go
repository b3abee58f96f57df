package audio

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// DefaultSampleRate is used for the built-in tone and the speaker.
const DefaultSampleRate = beep.SampleRate(44100)

// Built-in tone parameters.
const (
	toneFrequency = 880
	toneDuration  = 120 * time.Millisecond
)

// Player decodes and plays short sounds.
type Player struct {
	mu     sync.Mutex
	logger *slog.Logger

	// Volume control (0.0 to 1.0)
	volume float64

	initialized  bool
	sampleRate   beep.SampleRate
	closeSpeaker func()

	cache      map[string]*beep.Buffer
	cacheMutex sync.RWMutex
}

// NewPlayer creates a new audio player.
func NewPlayer(logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}

	return &Player{
		logger:     logger,
		volume:       1.0,
		sampleRate:   DefaultSampleRate,
		closeSpeaker: speaker.Close,
		cache:        make(map[string]*beep.Buffer),
	}
}

// SetVolume sets the playback volume (0.0 to 1.0).
func (p *Player) SetVolume(volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.volume = math.Max(0, math.Min(1, volume))
}

// Volume returns the current volume.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Play plays a sound file. Supports WAV, OGG, and MP3.
func (p *Player) Play(path string) error {
	if path == "" {
		return nil
	}

	buffer, err := p.Load(path)
	if err != nil {
		return err
	}
	return p.playBuffer(buffer)
}

// PlayTone plays the built-in chime.
func (p *Player) PlayTone() error {
	p.cacheMutex.RLock()
	buffer, ok := p.cache[""]
	p.cacheMutex.RUnlock()

	if !ok {
		var err error
		buffer, err = toneBuffer()
		if err != nil {
			return err
		}
		p.cacheMutex.Lock()
		p.cache[""] = buffer
		p.cacheMutex.Unlock()
	}

	if err := p.ensureInitialized(buffer.Format().SampleRate); err != nil {
		return err
	}
	return p.playBuffer(buffer)
}

// toneBuffer renders a short sine tone with a linear fade-out.
func toneBuffer() (*beep.Buffer, error) {
	sr := DefaultSampleRate
	tone, err := generators.SineTone(sr, toneFrequency)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tone: %w", err)
	}

	total := sr.N(toneDuration)
	pos := 0
	faded := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := tone.Stream(samples)
		for i := 0; i < n; i++ {
			gain := 0.4 * (1 - float64(pos+i)/float64(total))
			samples[i][0] *= gain
			samples[i][1] *= gain
		}
		pos += n
		return n, ok
	})

	buffer := beep.NewBuffer(beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2})
	buffer.Append(beep.Take(total, faded))
	return buffer, nil
}

// Load decodes a sound file into the cache and returns it.
func (p *Player) Load(path string) (*beep.Buffer, error) {
	p.cacheMutex.RLock()
	cached, ok := p.cache[path]
	p.cacheMutex.RUnlock()
	if ok {
		return cached, nil
	}

	buffer, err := p.loadSound(path)
	if err != nil {
		p.logger.Warn("failed to load sound", "path", path, "error", err)
		return nil, err
	}

	p.cacheMutex.Lock()
	p.cache[path] = buffer
	p.cacheMutex.Unlock()

	return buffer, nil
}

func (p *Player) loadSound(path string) (*beep.Buffer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav", ".ogg", ".mp3":
	default:
		return nil, fmt.Errorf("unsupported audio format: %s", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sound file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode sound: %w", err)
	}
	defer func() { _ = streamer.Close() }()

	if err := p.ensureInitialized(format.SampleRate); err != nil {
		return nil, err
	}

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)

	return buffer, nil
}

// Reopen closes the speaker so the next sound opens the current default
// output device.
func (p *Player) Reopen() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	p.closeSpeaker()
	p.initialized = false
	p.logger.Debug("speaker closed for reopen")
}

// Initialized reports whether the speaker is open.
func (p *Player) Initialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

// ensureInitialized initializes the speaker if not already done.
func (p *Player) ensureInitialized(sampleRate beep.SampleRate) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}

	bufferSize := sampleRate.N(time.Millisecond * 100)

	if err := speaker.Init(sampleRate, bufferSize); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}

	p.sampleRate = sampleRate
	p.initialized = true
	p.logger.Debug("speaker initialized", "sample_rate", sampleRate)
	return nil
}

func (p *Player) playBuffer(buffer *beep.Buffer) error {
	if buffer == nil {
		return nil
	}

	p.mu.Lock()
	volume := p.volume
	sampleRate := p.sampleRate
	p.mu.Unlock()

	var streamer beep.Streamer = buffer.Streamer(0, buffer.Len())

	if buffer.Format().SampleRate != sampleRate {
		streamer = beep.Resample(4, buffer.Format().SampleRate, sampleRate, streamer)
	}

	if volume < 1.0 {
		streamer = &effects.Volume{
			Streamer: streamer,
			Base:     10,
			Volume:   volumeToDecibels(volume) / 20,
			Silent:   volume == 0,
		}
	}

	speaker.Play(streamer)
	return nil
}

// ClearCache drops all decoded sounds.
func (p *Player) ClearCache() {
	p.cacheMutex.Lock()
	defer p.cacheMutex.Unlock()
	p.cache = make(map[string]*beep.Buffer)
}

// Close stops all playback and releases resources.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		p.closeSpeaker()
		p.initialized = false
	}

	p.ClearCache()
	p.logger.Debug("audio player closed")
}

// volumeToDecibels converts a linear volume (0-1) to decibels.
func volumeToDecibels(volume float64) float64 {
	if volume <= 0 {
		return -100
	}
	return 20 * math.Log10(volume)
}

package daemon

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/notify"
)

// recordingNotifier captures sent messages.
type recordingNotifier struct {
	mu     sync.Mutex
	sent   []notify.Message
	err    error
	closed bool
}

func (r *recordingNotifier) Send(msg notify.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingNotifier) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *recordingNotifier) Messages() []notify.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Message(nil), r.sent...)
}

func (r *recordingNotifier) Bodies() []string {
	var out []string
	for _, m := range r.Messages() {
		out = append(out, m.Body)
	}
	return out
}

func TestAnnouncer_NotifySwitched(t *testing.T) {
	rec := &recordingNotifier{}
	a := NewAnnouncer(rec, nil)

	require.True(t, a.NotifySwitched("Speakers"))

	msgs := rec.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Now playing on Speakers", msgs[0].Body)
	assert.Equal(t, notify.LevelInfo, msgs[0].Level)
}

func TestAnnouncer_RateLimit(t *testing.T) {
	rec := &recordingNotifier{}
	a := NewAnnouncer(rec, nil)
	a.SetMinInterval(time.Minute)

	now := time.Unix(1000, 0)
	a.now = func() time.Time { return now }

	assert.True(t, a.NotifyError("Refresh failed", errors.New("one")))
	assert.False(t, a.NotifyError("Refresh failed", errors.New("two")), "same key within interval")
	assert.True(t, a.NotifyNoDevices(), "different key")

	now = now.Add(2 * time.Minute)
	assert.True(t, a.NotifyError("Refresh failed", errors.New("three")))

	assert.Equal(t, []string{"one", "No audio device available", "three"}, rec.Bodies())
}

func TestAnnouncer_SwitchNoticesNotRateLimited(t *testing.T) {
	rec := &recordingNotifier{}
	a := NewAnnouncer(rec, nil)
	a.SetMinInterval(time.Minute)

	now := time.Unix(1000, 0)
	a.now = func() time.Time { return now }

	assert.True(t, a.NotifySwitched("A"))
	assert.True(t, a.NotifySwitched("B"))
	assert.True(t, a.NotifySwitched("C"))

	bodies := rec.Bodies()
	require.Len(t, bodies, 3)
	assert.Equal(t, "Now playing on C", bodies[len(bodies)-1])
}

func TestAnnouncer_Disabled(t *testing.T) {
	rec := &recordingNotifier{}
	a := NewAnnouncer(rec, nil)
	a.SetEnabled(false)

	assert.False(t, a.Enabled())
	assert.False(t, a.NotifySwitched("A"))
	assert.False(t, a.NotifyError("Switch failed", errors.New("nope")))
	assert.Empty(t, rec.Messages())
}

func TestAnnouncer_SendError(t *testing.T) {
	rec := &recordingNotifier{err: errors.New("bus gone")}
	a := NewAnnouncer(rec, nil)

	assert.False(t, a.NotifyConfigReloaded())
}

func TestAnnouncer_NilNotifier(t *testing.T) {
	a := NewAnnouncer(nil, nil)
	assert.False(t, a.NotifySwitched("A"))
	assert.NoError(t, a.Close())
}

func TestAnnouncer_ErrorLevels(t *testing.T) {
	rec := &recordingNotifier{}
	a := NewAnnouncer(rec, nil)

	a.NotifyError("Switch failed", errors.New("denied"))
	a.NotifyConfigError(errors.New("bad toml"))

	msgs := rec.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, notify.LevelError, msgs[0].Level)
	assert.Equal(t, "Switch failed", msgs[0].Summary)
	assert.Equal(t, "denied", msgs[0].Body)
	assert.Equal(t, notify.LevelWarning, msgs[1].Level)
	assert.Contains(t, msgs[1].Body, "bad toml")
}

func TestAnnouncer_SetNotifierClosesOld(t *testing.T) {
	first := &recordingNotifier{}
	second := &recordingNotifier{}
	a := NewAnnouncer(first, nil)

	a.SetNotifier(second)
	a.NotifySwitched("A")

	assert.True(t, first.closed)
	assert.Empty(t, first.Messages())
	assert.Len(t, second.Messages(), 1)

	require.NoError(t, a.Close())
	assert.True(t, second.closed)
}

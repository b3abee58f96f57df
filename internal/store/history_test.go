package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
)

func TestHistory_RecordAndRecent(t *testing.T) {
	h, err := Open(filepath.Join(t.TempDir(), "history.jsonl"), 0, nil)
	require.NoError(t, err)
	defer h.Close()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, h.Record(testEvent(t, id)))
	}

	events, err := h.Recent(0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "c", events[0].ToID)
	assert.Equal(t, "a", events[2].ToID)

	events, err = h.Recent(2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "c", events[0].ToID)
	assert.Equal(t, "b", events[1].ToID)
}

func TestHistory_Keep(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	h, err := Open(path, 3, nil)
	require.NoError(t, err)

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, h.Record(testEvent(t, id)))
	}

	events, err := h.Recent(0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "e", events[0].ToID)
	assert.Equal(t, "c", events[2].ToID)
	require.NoError(t, h.Close())

	// Existing entries count toward the limit after reopening.
	h, err = Open(path, 2, nil)
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Record(testEvent(t, "f")))
	events, err = h.Recent(0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "f", events[0].ToID)
	assert.Equal(t, "e", events[1].ToID)
}

func TestHistory_SetKeep(t *testing.T) {
	h, err := Open(filepath.Join(t.TempDir(), "history.jsonl"), 0, nil)
	require.NoError(t, err)
	defer h.Close()

	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, h.Record(testEvent(t, id)))
	}

	h.SetKeep(2)
	require.NoError(t, h.Record(testEvent(t, "e")))

	events, err := h.Recent(0)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestHistory_RejectsInvalidEvent(t *testing.T) {
	h, err := Open(filepath.Join(t.TempDir(), "history.jsonl"), 0, nil)
	require.NoError(t, err)
	defer h.Close()

	err = h.Record(model.SwitchEvent{ID: "x", Timestamp: 1})
	assert.ErrorIs(t, err, model.ErrEmptyTarget)
}

func TestHistory_Clear(t *testing.T) {
	h, err := Open(filepath.Join(t.TempDir(), "history.jsonl"), 0, nil)
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Record(testEvent(t, "a")))
	require.NoError(t, h.Clear())

	events, err := h.Recent(0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestHistory_SharedWithShortLivedWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")

	daemon, err := Open(path, 2, nil)
	require.NoError(t, err)
	defer daemon.Close()
	require.NoError(t, daemon.Record(testEvent(t, "d1")))

	for _, id := range []string{"c1", "c2"} {
		cli, err := Open(path, 2, nil)
		require.NoError(t, err)
		require.NoError(t, cli.Record(testEvent(t, id)))
		require.NoError(t, cli.Close())
	}

	require.NoError(t, daemon.Record(testEvent(t, "d2")))

	events, err := daemon.Recent(0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "d2", events[0].ToID)
	assert.Equal(t, "c2", events[1].ToID)
}

package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
)

func testEvent(t *testing.T, to string) model.SwitchEvent {
	t.Helper()
	e, err := model.NewSwitchEvent("prev", model.Device{ID: to, Name: "Device " + to}, model.TriggerHotkey)
	require.NoError(t, err)
	return *e
}

func TestNewJSONLPersistence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "audioswitch_schema_version")
	assert.Equal(t, path, p.Path())
}

func TestNewJSONLPersistence_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "nested", "test.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()

	_, err = os.Stat(filepath.Dir(path))
	require.NoError(t, err)
}

func TestJSONLPersistence_AppendAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Append(testEvent(t, "a")))
	require.NoError(t, p.Append(testEvent(t, "b")))

	events, err := p.Load()
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].ToID)
	assert.Equal(t, "b", events[1].ToID)

	// Appending after a load still goes to the end.
	require.NoError(t, p.Append(testEvent(t, "c")))
	events, err = p.Load()
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestJSONLPersistence_Reopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	require.NoError(t, p.Append(testEvent(t, "a")))
	require.NoError(t, p.Close())

	p, err = NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()

	events, err := p.Load()
	require.NoError(t, err)
	assert.Len(t, events, 1)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(content), "audioswitch_schema_version"))
}

func TestJSONLPersistence_SkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	require.NoError(t, p.Append(testEvent(t, "a")))
	require.NoError(t, p.Close())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0600)
	require.NoError(t, err)
	_, err = f.WriteString("not json\n{\"id\":\"\"}\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	p, err = NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()

	events, err := p.Load()
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestJSONLPersistence_RejectsNewerSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"audioswitch_schema_version":99,"created_at":1}`+"\n"), 0600))

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Load()
	assert.Error(t, err)
}

func TestJSONLPersistence_Rewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, p.Append(testEvent(t, id)))
	}

	events, err := p.Load()
	require.NoError(t, err)
	require.NoError(t, p.Rewrite(events[1:]))

	events, err = p.Load()
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "b", events[0].ToID)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	// File is still appendable after a rewrite.
	require.NoError(t, p.Append(testEvent(t, "d")))
	events, err = p.Load()
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestJSONLPersistence_Clear(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Append(testEvent(t, "a")))
	require.NoError(t, p.Clear())

	events, err := p.Load()
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestJSONLPersistence_Closed(t *testing.T) {
	dir := t.TempDir()
	p, err := NewJSONLPersistence(filepath.Join(dir, "test.jsonl"))
	require.NoError(t, err)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	_, err = p.Load()
	assert.ErrorIs(t, err, ErrPersistenceClosed)
	assert.ErrorIs(t, p.Append(testEvent(t, "a")), ErrPersistenceClosed)
	assert.ErrorIs(t, p.Rewrite(nil), ErrPersistenceClosed)
	assert.ErrorIs(t, p.Clear(), ErrPersistenceClosed)
}

func TestJSONLPersistence_AppendAfterReplaceByOtherWriter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.jsonl")

	daemon, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer daemon.Close()
	require.NoError(t, daemon.Append(testEvent(t, "a")))

	cli, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	require.NoError(t, cli.Rewrite([]model.SwitchEvent{testEvent(t, "b")}))
	require.NoError(t, cli.Close())

	require.NoError(t, daemon.Append(testEvent(t, "c")))

	events, err := daemon.Load()
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "b", events[0].ToID)
	assert.Equal(t, "c", events[1].ToID)
}

func TestJSONLPersistence_RecreatesRemovedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, os.Remove(path))
	events, err := p.Load()
	require.NoError(t, err)
	assert.Empty(t, events)

	require.NoError(t, p.Append(testEvent(t, "a")))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), `{"audioswitch_schema_version"`))
}

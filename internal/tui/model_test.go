package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/platform"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/platform/platformtest"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/rotation"
)

type switchRecord struct {
	from string
	to   string
}

func newPicker(t *testing.T, fake *platformtest.Fake, opts Options) (Model, *[]switchRecord) {
	t.Helper()
	c := rotation.New(fake, nil)
	require.NoError(t, c.Initialize())

	var switches []switchRecord
	opts.OnSwitch = func(from string, to model.Device) {
		switches = append(switches, switchRecord{from: from, to: to.ID})
	}

	m := New(c, opts)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	return updated.(Model), &switches
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPicker_StartsOnCurrent(t *testing.T) {
	m, _ := newPicker(t, platformtest.New("dev-2", platformtest.Devices(3)...), Options{})

	item, ok := m.list.SelectedItem().(deviceItem)
	require.True(t, ok)
	assert.Equal(t, "dev-2", item.device.ID)
	assert.True(t, item.current)

	view := m.View()
	assert.Contains(t, view, "Device 1")
	assert.Contains(t, view, "Device 3")
}

func TestPicker_EnterSwitches(t *testing.T) {
	fake := platformtest.New("dev-1", platformtest.Devices(3)...)
	m, switches := newPicker(t, fake, Options{})

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	assert.Equal(t, "dev-3", fake.CurrentDefault())
	assert.Equal(t, 2, m.Snapshot().Selected)
	assert.Equal(t, []switchRecord{{from: "dev-1", to: "dev-3"}}, *switches)

	text, isErr := m.Status()
	assert.Equal(t, "Now playing on Device 3", text)
	assert.False(t, isErr)
}

func TestPicker_EnterOnCurrentDoesNotRecord(t *testing.T) {
	fake := platformtest.New("dev-1", platformtest.Devices(2)...)
	m, switches := newPicker(t, fake, Options{})

	_, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, *switches)
	assert.Equal(t, []string{"dev-1"}, fake.SetDefaultCalls())
}

func TestPicker_QuitOnSelect(t *testing.T) {
	fake := platformtest.New("dev-1", platformtest.Devices(2)...)
	m, _ := newPicker(t, fake, Options{QuitOnSelect: true})

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, "dev-2", fake.CurrentDefault())
}

func TestPicker_SwitchFailure(t *testing.T) {
	fake := platformtest.New("dev-1", platformtest.Devices(2)...)
	m, switches := newPicker(t, fake, Options{QuitOnSelect: true})
	fake.FailSetDefault(platform.ErrInterfaceUnavailable)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, statusMsg{}, cmd(), "failure keeps the picker open")

	text, isErr := m.Status()
	assert.True(t, isErr)
	assert.True(t, strings.HasPrefix(text, "Switch failed"))
	assert.Equal(t, 0, m.Snapshot().Selected)
	assert.Empty(t, *switches)
}

func TestPicker_Next(t *testing.T) {
	fake := platformtest.New("dev-2", platformtest.Devices(2)...)
	m, switches := newPicker(t, fake, Options{})

	m, _ = press(t, m, runes("n"))

	assert.Equal(t, "dev-1", fake.CurrentDefault(), "wraps around")
	assert.Equal(t, 0, m.Snapshot().Selected)
	assert.Equal(t, []switchRecord{{from: "dev-2", to: "dev-1"}}, *switches)
}

func TestPicker_Refresh(t *testing.T) {
	fake := platformtest.New("dev-1", platformtest.Devices(1)...)
	m, _ := newPicker(t, fake, Options{})

	fake.SetDevices(platformtest.Devices(3)...)
	m, _ = press(t, m, runes("r"))

	assert.Len(t, m.Snapshot().Devices, 3)
	assert.Len(t, m.list.Items(), 3)
	text, _ := m.Status()
	assert.Equal(t, "3 devices", text)
}

func TestPicker_EmptyView(t *testing.T) {
	m, _ := newPicker(t, platformtest.New(""), Options{})
	assert.Contains(t, m.View(), rotation.NoDeviceName)

	// Enter with nothing selected is a no-op.
	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestPicker_HelpToggle(t *testing.T) {
	m, _ := newPicker(t, platformtest.New("dev-1", platformtest.Devices(1)...), Options{})

	m, _ = press(t, m, runes("?"))
	assert.Equal(t, ModeHelp, m.mode)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeList, m.mode)
}

func TestPicker_Quit(t *testing.T) {
	m, _ := newPicker(t, platformtest.New("dev-1", platformtest.Devices(1)...), Options{})

	_, cmd := press(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestPicker_NotReady(t *testing.T) {
	c := rotation.New(platformtest.New(""), nil)
	m := New(c, Options{})
	assert.Equal(t, "Initializing...", m.View())
}

// Package tui provides the BubbleTea-based interactive device picker.
package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/rotation"
)

// Switcher is the part of the rotation controller the picker drives.
type Switcher interface {
	Snapshot() rotation.Snapshot
	Select(id string) error
	AdvanceToNext() error
	Refresh() error
}

// Mode represents the current UI mode.
type Mode int

const (
	ModeList Mode = iota
	ModeHelp
)

// Options configures the picker.
type Options struct {
	// OnSwitch is called after each successful switch.
	OnSwitch func(from string, to model.Device)
	// QuitOnSelect exits after enter switches the device.
	QuitOnSelect bool
}

// Model is the picker TUI model.
type Model struct {
	switcher Switcher
	opts     Options

	mode Mode

	// Components
	list list.Model
	help help.Model
	keys KeyMap

	// State
	snapshot rotation.Snapshot
	width    int
	height   int
	ready    bool

	// Status message
	statusMsg string
	statusErr bool
}

// deviceItem wraps a device for the list component.
type deviceItem struct {
	device  model.Device
	index   int
	current bool
}

func (i deviceItem) Title() string {
	return i.device.String()
}

func (i deviceItem) Description() string {
	return i.device.ID
}

func (i deviceItem) FilterValue() string {
	return i.device.Name
}

// deviceDelegate renders one line per device, marking the current default.
type deviceDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	current  lipgloss.Style
}

func newDeviceDelegate() deviceDelegate {
	return deviceDelegate{
		normal:   lipgloss.NewStyle().PaddingLeft(2),
		selected: lipgloss.NewStyle().PaddingLeft(1).Foreground(lipgloss.Color("12")).Bold(true),
		current:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

func (d deviceDelegate) Height() int                             { return 1 }
func (d deviceDelegate) Spacing() int                            { return 0 }
func (d deviceDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

// Render renders a list item.
func (d deviceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	di, ok := item.(deviceItem)
	if !ok {
		return
	}

	marker := "  "
	if di.current {
		marker = d.current.Render("● ")
	}
	title := fmt.Sprintf("%d. %s", di.index, di.Title())

	// Truncate if needed
	itemWidth := m.Width() - 4
	if r := []rune(title); itemWidth > 0 && len(r) > itemWidth {
		title = string(r[:itemWidth-1]) + "…"
	}

	if index == m.Index() {
		fmt.Fprint(w, d.selected.Render("> "+marker+title))
		return
	}
	fmt.Fprint(w, d.normal.Render(marker+title))
}

// New creates a new picker model.
func New(s Switcher, opts Options) Model {
	l := list.New(nil, newDeviceDelegate(), 0, 0)
	l.Title = "Audio Output"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()

	m := Model{
		switcher: s,
		opts:     opts,
		mode:     ModeList,
		list:     l,
		help:     help.New(),
		keys:     DefaultKeyMap(),
	}
	m.reload()
	return m
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return nil
}

// Snapshot returns the state the picker last displayed.
func (m Model) Snapshot() rotation.Snapshot {
	return m.snapshot
}

// Status returns the current status line and whether it is an error.
func (m Model) Status() (string, bool) {
	return m.statusMsg, m.statusErr
}

// reload rebuilds the list from the switcher, keeping the cursor on the
// current device.
func (m *Model) reload() {
	m.snapshot = m.switcher.Snapshot()

	items := make([]list.Item, len(m.snapshot.Devices))
	for i, d := range m.snapshot.Devices {
		items[i] = deviceItem{device: d, index: i + 1, current: i == m.snapshot.Selected}
	}
	m.list.SetItems(items)
	if m.snapshot.Selected >= 0 {
		m.list.Select(m.snapshot.Selected)
	}
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type copyResultMsg struct {
	err error
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.list.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			return m, status("Copy failed: "+msg.err.Error(), true)
		}
		return m, status("Copied device id", false)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While typing a filter every key belongs to the list.
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		if m.mode == ModeHelp {
			m.mode = ModeList
		} else {
			m.mode = ModeHelp
		}
		return m, nil
	}

	if m.mode == ModeHelp {
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeList
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Enter):
		item, ok := m.list.SelectedItem().(deviceItem)
		if !ok {
			return m, nil
		}
		cmd := m.switchTo(func() error { return m.switcher.Select(item.device.ID) })
		if m.opts.QuitOnSelect && !m.statusErr {
			return m, tea.Quit
		}
		return m, cmd

	case key.Matches(msg, m.keys.Next):
		return m, m.switchTo(m.switcher.AdvanceToNext)

	case key.Matches(msg, m.keys.Refresh):
		err := m.switcher.Refresh()
		m.reload()
		if err != nil {
			return m, m.setStatus("Refresh failed: "+err.Error(), true)
		}
		return m, m.setStatus(fmt.Sprintf("%d devices", len(m.snapshot.Devices)), false)

	case key.Matches(msg, m.keys.Copy):
		if item, ok := m.list.SelectedItem().(deviceItem); ok {
			id := item.device.ID
			return m, func() tea.Msg {
				return copyResultMsg{err: copyText(id)}
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Back):
		if m.list.FilterState() == list.FilterApplied {
			m.list.ResetFilter()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// switchTo runs fn synchronously and reports the outcome. Controller calls
// stay on the bubbletea goroutine.
func (m *Model) switchTo(fn func() error) tea.Cmd {
	from, _ := m.snapshot.Current()

	if err := fn(); err != nil {
		return m.setStatus("Switch failed: "+err.Error(), true)
	}
	m.reload()

	to, ok := m.snapshot.Current()
	if !ok {
		return nil
	}
	if to.ID != from.ID && m.opts.OnSwitch != nil {
		m.opts.OnSwitch(from.ID, to)
	}
	return m.setStatus("Now playing on "+to.Name, false)
}

// setStatus shows text now and schedules it to clear.
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusMsg = text
	m.statusErr = isErr
	return status(text, isErr)
}

// View renders the picker.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.mode == ModeHelp {
		return m.viewHelp()
	}
	return m.viewList()
}

func (m Model) viewList() string {
	var s string
	if len(m.snapshot.Devices) == 0 {
		s = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(rotation.NoDeviceName) + "\n"
	} else {
		s = m.list.View()
	}

	// Status bar
	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		s += "\n" + statusStyle.Render(m.statusMsg)
	} else {
		m.help.Width = m.width
		s += "\n" + m.help.ShortHelpView(m.keys.ShortHelp())
	}

	return s
}

func (m Model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Keyboard Shortcuts") + "\n\n")

	m.help.Width = m.width
	m.help.ShowAll = true
	b.WriteString(m.help.View(m.keys))

	b.WriteString("\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(
		"Press ? or esc to return"))
	return b.String()
}

// Run starts the picker and returns the final model state.
func Run(s Switcher, opts Options) (Model, error) {
	p := tea.NewProgram(New(s, opts), tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return Model{}, err
	}
	m, _ := final.(Model)
	return m, nil
}

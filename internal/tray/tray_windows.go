//go:build windows

package tray

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/hotkey"
	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
)

const (
	className = "AudioSwitchTray"
	iconID    = 1
	hotkeyID  = 1

	wmTrayIcon       = win.WM_APP + 1
	wmUpdateTooltip  = win.WM_APP + 2
	wmRegisterHotkey = win.WM_APP + 3

	readyTimeout = 5 * time.Second
)

var (
	user32                = windows.NewLazySystemDLL("user32.dll")
	procRegisterHotKey    = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey  = user32.NewProc("UnregisterHotKey")
	procRegisterWindowMsg = user32.NewProc("RegisterWindowMessageW")
)

var (
	wndProcOnce sync.Once
	wndProcPtr  uintptr

	// active receives window messages; one tray per process.
	activeMu sync.RWMutex
	active   *Tray
)

// Tray is a Win32 notification-area icon with a context menu. It owns a
// hidden window on a locked OS thread; the global hotkey is bound to it.
type Tray struct {
	logger  *slog.Logger
	handler Handler

	mu      sync.Mutex
	tooltip string
	menu    MenuState
	hwnd    win.HWND

	taskbarCreated uint32

	hotkeyReq chan hotkey.Hotkey
	hotkeyRes chan error
	current   hotkey.Hotkey

	readyCh chan struct{}
	doneCh  chan struct{}
}

// New creates a Tray that reports commands to h.
func New(h Handler, logger *slog.Logger) *Tray {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tray{
		logger:    logger,
		handler:   h,
		tooltip:   "audioswitch",
		hotkeyReq: make(chan hotkey.Hotkey, 1),
		hotkeyRes: make(chan error, 1),
		readyCh:   make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Ready is closed once the icon has been added.
func (t *Tray) Ready() <-chan struct{} {
	return t.readyCh
}

// Run creates the window and icon and pumps messages until ctx is cancelled
// or the window is destroyed. It must be called once.
func (t *Tray) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(t.doneCh)

	activeMu.Lock()
	active = t
	activeMu.Unlock()
	defer func() {
		activeMu.Lock()
		active = nil
		activeMu.Unlock()
	}()

	if err := t.createWindow(); err != nil {
		return err
	}
	if err := t.addIcon(); err != nil {
		win.DestroyWindow(t.window())
		return err
	}
	close(t.readyCh)
	t.logger.Debug("tray icon added")

	go func() {
		select {
		case <-ctx.Done():
			win.PostMessage(t.window(), win.WM_CLOSE, 0, 0)
		case <-t.doneCh:
		}
	}()

	var msg win.MSG
	for {
		r := win.GetMessage(&msg, 0, 0, 0)
		if r == 0 {
			break
		}
		if r == -1 {
			return fmt.Errorf("failed to read window message: %w", windows.GetLastError())
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}

	t.logger.Debug("tray message loop exited")
	return nil
}

// SetTooltip sets the icon tooltip. Safe from any goroutine.
func (t *Tray) SetTooltip(text string) {
	t.mu.Lock()
	t.tooltip = truncateTooltip(text)
	hwnd := t.hwnd
	t.mu.Unlock()

	if hwnd != 0 {
		win.PostMessage(hwnd, wmUpdateTooltip, 0, 0)
	}
}

// SetMenu sets what the next context menu shows. Safe from any goroutine.
func (t *Tray) SetMenu(state MenuState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.menu = state
}

// RegisterHotkey replaces the global hotkey. The registration runs on the
// tray thread, which receives WM_HOTKEY.
func (t *Tray) RegisterHotkey(hk hotkey.Hotkey) error {
	select {
	case <-t.readyCh:
	case <-t.doneCh:
		return ErrNotRunning
	case <-time.After(readyTimeout):
		return ErrNotRunning
	}

	t.hotkeyReq <- hk
	win.PostMessage(t.window(), wmRegisterHotkey, 0, 0)

	select {
	case err := <-t.hotkeyRes:
		return err
	case <-t.doneCh:
		return ErrNotRunning
	}
}

func (t *Tray) window() win.HWND {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hwnd
}

func (t *Tray) createWindow() error {
	wndProcOnce.Do(func() {
		wndProcPtr = syscall.NewCallback(wndProc)
	})

	instance := win.GetModuleHandle(nil)
	name, err := windows.UTF16PtrFromString(className)
	if err != nil {
		return err
	}

	wc := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		LpfnWndProc:   wndProcPtr,
		HInstance:     instance,
		LpszClassName: name,
	}
	if atom := win.RegisterClassEx(&wc); atom == 0 {
		if err := windows.GetLastError(); err != windows.ERROR_CLASS_ALREADY_EXISTS {
			return fmt.Errorf("failed to register window class: %w", err)
		}
	}

	hwnd := win.CreateWindowEx(0, name, name, win.WS_OVERLAPPEDWINDOW,
		win.CW_USEDEFAULT, win.CW_USEDEFAULT, win.CW_USEDEFAULT, win.CW_USEDEFAULT,
		0, 0, instance, nil)
	if hwnd == 0 {
		return fmt.Errorf("failed to create tray window: %w", windows.GetLastError())
	}

	t.mu.Lock()
	t.hwnd = hwnd
	t.mu.Unlock()

	// Explorer broadcasts this after it restarts; the icon must be re-added.
	msgName, _ := windows.UTF16PtrFromString("TaskbarCreated")
	r, _, _ := procRegisterWindowMsg.Call(uintptr(unsafe.Pointer(msgName)))
	t.taskbarCreated = uint32(r)
	return nil
}

func (t *Tray) iconData() win.NOTIFYICONDATA {
	nid := win.NOTIFYICONDATA{
		CbSize: uint32(unsafe.Sizeof(win.NOTIFYICONDATA{})),
		HWnd:   t.window(),
		UID:    iconID,
	}
	return nid
}

func (t *Tray) addIcon() error {
	nid := t.iconData()
	nid.UFlags = win.NIF_MESSAGE | win.NIF_ICON | win.NIF_TIP
	nid.UCallbackMessage = wmTrayIcon
	nid.HIcon = win.LoadIcon(0, win.MAKEINTRESOURCE(win.IDI_APPLICATION))
	t.copyTooltip(&nid)

	if !win.Shell_NotifyIcon(win.NIM_ADD, &nid) {
		return fmt.Errorf("failed to add tray icon")
	}
	return nil
}

func (t *Tray) removeIcon() {
	nid := t.iconData()
	win.Shell_NotifyIcon(win.NIM_DELETE, &nid)
}

func (t *Tray) updateTooltip() {
	nid := t.iconData()
	nid.UFlags = win.NIF_TIP
	t.copyTooltip(&nid)
	if !win.Shell_NotifyIcon(win.NIM_MODIFY, &nid) {
		t.logger.Debug("failed to update tray tooltip")
	}
}

func (t *Tray) copyTooltip(nid *win.NOTIFYICONDATA) {
	t.mu.Lock()
	tip := t.tooltip
	t.mu.Unlock()

	u, err := windows.UTF16FromString(tip)
	if err != nil {
		return
	}
	copy(nid.SzTip[:len(nid.SzTip)-1], u)
}

func (t *Tray) showMenu() {
	t.mu.Lock()
	state := t.menu
	t.mu.Unlock()

	menu := win.CreatePopupMenu()
	if menu == 0 {
		t.logger.Warn("failed to create tray menu")
		return
	}
	defer win.DestroyMenu(menu)

	for i, item := range buildMenu(state) {
		mii := win.MENUITEMINFO{
			CbSize: uint32(unsafe.Sizeof(win.MENUITEMINFO{})),
			FMask:  win.MIIM_FTYPE | win.MIIM_ID | win.MIIM_STATE | win.MIIM_STRING,
			WID:    uint32(item.id),
		}
		if item.separator {
			mii.FMask = win.MIIM_FTYPE
			mii.FType = win.MFT_SEPARATOR
		} else {
			label, err := windows.UTF16PtrFromString(item.label)
			if err != nil {
				continue
			}
			mii.DwTypeData = label
			if item.radio {
				mii.FType |= win.MFT_RADIOCHECK
			}
			if item.checked {
				mii.FState |= win.MFS_CHECKED
			}
			if item.disabled {
				mii.FState |= win.MFS_DISABLED
			}
		}
		win.InsertMenuItem(menu, uint32(i), true, &mii)
	}

	var pt win.POINT
	win.GetCursorPos(&pt)

	hwnd := t.window()
	// Without this the menu does not close when clicking elsewhere.
	win.SetForegroundWindow(hwnd)
	win.TrackPopupMenuEx(menu, win.TPM_RIGHTBUTTON, pt.X, pt.Y, hwnd, nil)
	win.PostMessage(hwnd, win.WM_NULL, 0, 0)
}

func (t *Tray) registerHotkey() {
	hk := <-t.hotkeyReq
	hwnd := t.window()

	if !t.current.IsZero() {
		procUnregisterHotKey.Call(uintptr(hwnd), hotkeyID)
		t.current = hotkey.Hotkey{}
	}

	r, _, err := procRegisterHotKey.Call(uintptr(hwnd), hotkeyID,
		uintptr(hk.Modifiers|hotkey.ModNoRepeat), uintptr(hk.Key))
	if r == 0 {
		t.hotkeyRes <- fmt.Errorf("failed to register hotkey %s: %w", hk, err)
		return
	}
	t.current = hk
	t.hotkeyRes <- nil
}

func (t *Tray) handleCommand(id int) {
	t.mu.Lock()
	state := t.menu
	t.mu.Unlock()
	dispatch(t.handler, state, id)
}

func (t *Tray) wndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	switch msg {
	case wmTrayIcon:
		switch uint32(lParam) {
		case win.WM_LBUTTONDBLCLK:
			t.handler.Next(model.TriggerTray)
		case win.WM_RBUTTONUP, win.WM_CONTEXTMENU:
			t.showMenu()
		}
		return 0

	case wmUpdateTooltip:
		t.updateTooltip()
		return 0

	case wmRegisterHotkey:
		t.registerHotkey()
		return 0

	case win.WM_HOTKEY:
		if wParam == hotkeyID {
			t.handler.Next(model.TriggerHotkey)
		}
		return 0

	case win.WM_COMMAND:
		t.handleCommand(int(win.LOWORD(uint32(wParam))))
		return 0

	case win.WM_CLOSE:
		win.DestroyWindow(hwnd)
		return 0

	case win.WM_DESTROY:
		if !t.current.IsZero() {
			procUnregisterHotKey.Call(uintptr(hwnd), hotkeyID)
		}
		t.removeIcon()
		win.PostQuitMessage(0)
		return 0
	}

	if t.taskbarCreated != 0 && msg == t.taskbarCreated {
		if err := t.addIcon(); err != nil {
			t.logger.Warn("failed to restore tray icon", "error", err)
		}
		return 0
	}

	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

func wndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	activeMu.RLock()
	t := active
	activeMu.RUnlock()

	if t == nil {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}
	return t.wndProc(hwnd, msg, wParam, lParam)
}

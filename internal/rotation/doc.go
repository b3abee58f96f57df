// Package rotation implements the device-rotation state machine.
//
// A Controller owns the active playback device list and the selection index.
// It is driven by three kinds of input: explicit refreshes, rotation requests
// from the hotkey or tray, and device-change notifications from the platform.
//
// The Controller is not safe for concurrent use. The daemon serializes every
// call through a single event loop goroutine; CLI commands use it from main.
package rotation

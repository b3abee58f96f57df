// Package daemon provides the main orchestration for audioswitchd.
// It coordinates the rotation controller, platform notifications, the tray,
// the announcer, the chime, switch history, and configuration hot-reload.
//
// Every controller call happens on the Loop goroutine. Hotkey presses, tray
// commands, platform callbacks, and config reloads are posted to the Loop
// from whatever goroutine they arrive on.
package daemon

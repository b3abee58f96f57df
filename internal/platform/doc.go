// Package platform abstracts the operating system's audio endpoint API.
//
// An AudioController enumerates active playback devices, reads and sets the
// default device, and delivers device-change notifications. Notifications may
// arrive on any goroutine; consumers are expected to hand them to a single
// owner rather than mutate shared state from the callback.
//
// On Windows the controller is backed by Core Audio (IMMDeviceEnumerator for
// enumeration and notifications, IPolicyConfig for setting the default).
// Elsewhere a read-only miniaudio backend is used together with a Poller that
// synthesizes notifications by diffing enumerations.
package platform

// Package audio plays the optional confirmation chime after a device switch.
//
// The chime is either a user-supplied WAV, OGG, or MP3 file or a short
// built-in tone. Decoded sounds are cached until the configuration changes.
// Playback goes through the shared speaker, which is opened once on first use
// and renders to whatever the system default output is at that moment.
package audio

// Package decoder ingests the LTC hardware decoder's serial line protocol.
//
// It owns the textual frame parser, the pump that folds parsed frames into
// the shared timecode state, raw serial port setup, and the udev hotplug
// monitor that wakes the ingest loop when the decoder's tty reappears.
// Malformed lines are counted and dropped here so they never reach the
// engine's statistics.
package decoder

// Package control runs the automatic clock-correction loop. It watches the
// shared timecode aggregate on a fixed tick, debounces transient drift before
// touching the system clock, and exposes the manual sync and nudge operations
// used by the HTTP API and CLI.
package control

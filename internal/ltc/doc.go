// Package ltc implements the timecode synchronization engine: the shared
// frame state with its bounded jitter window and smoothed clock-delta
// estimate, the sync/jitter classifiers, and the target-time arithmetic used
// when the system clock is corrected to the incoming LTC source.
//
// The engine itself never touches the wall clock. It consumes decoded frames,
// derives drift and jitter, and exposes read-side queries for the control
// loop, the CLI, and the HTTP API.
package ltc

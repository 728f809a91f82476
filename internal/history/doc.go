// Package history persists the clock-correction audit trail in SQLite. Every
// automatic correction, manual sync, and nudge lands here with the drift and
// jitter figures observed at decision time, so operators can reconstruct what
// the daemon did to the system clock and why.
package history
